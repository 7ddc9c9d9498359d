// Package report turns scan statistics into something people read.
//
// Summarize is pure: it converts byte counts to megabytes and computes the
// removed share, reporting "N/A" when nothing was scanned. The Render
// functions draw go-pretty tables for the terminal, Document is the JSON form
// served over HTTP, and Archive uploads a Document to object storage.
package report
