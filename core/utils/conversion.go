package utils

import (
	"math"
	"strings"
)

const bytesPerMegabyte = 1024 * 1024

// ToMegabytes converts a byte count to megabytes rounded to two decimals.
func ToMegabytes(bytes int64) float64 {
	return Round2(float64(bytes) / bytesPerMegabyte)
}

// Percentage returns part as a share of total rounded to two decimals.
// The second return value is false when total is zero and no share exists.
func Percentage(part, total int64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return Round2(float64(part) / float64(total) * 100), true
}

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SplitList flattens comma separated values, trimming blanks.
// It accepts both repeated values ("a", "b") and joined ones ("a,b").
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
