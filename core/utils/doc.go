// Package utils provides small helpers shared by the reporting and
// configuration layers: size and percentage conversion, list parsing.
package utils
