package util

import (
	"fmt"
	"math"
	"strconv"
)

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * 1024
	bytesInGB = bytesInMB * 1024

	// Units switch at 1000 rather than 1024 so "0.99 MB" shows instead of "1016 KB".
	maxBytesSize = 1000
	maxKBSize    = 1000 * bytesInKB
	maxMBSize    = 1000 * bytesInMB

	sizeDecimals = 2
	timeDecimals = 2
)

// FormatDecimals prints integers as-is and everything else with exactly
// decimals fraction digits.
func FormatDecimals(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func FormatSize(bytes int64) string {
	switch {
	case bytes < maxBytesSize:
		return fmt.Sprintf("%d B", bytes)
	case bytes < maxKBSize:
		return FormatDecimals(float64(bytes)/bytesInKB, sizeDecimals) + " KB"
	case bytes < maxMBSize:
		return FormatDecimals(float64(bytes)/bytesInMB, sizeDecimals) + " MB"
	default:
		return FormatDecimals(float64(bytes)/bytesInGB, sizeDecimals) + " GB"
	}
}

// FormatDivision labels a waterfall header tick at millis from the first request.
func FormatDivision(millis float64) string {
	switch {
	case millis > 60000:
		return FormatDecimals(millis/60000, timeDecimals) + " min"
	case millis > 1000:
		return FormatDecimals(millis/1000, timeDecimals) + " s"
	default:
		return strconv.Itoa(int(millis)) + " ms"
	}
}

func FormatTotalMillis(millis float64) string {
	return FormatDecimals(millis, 0) + " ms"
}

// SummaryLabel renders the status line of the request list.
func SummaryLabel(count int, bytes int64, millis float64) string {
	if count == 0 {
		return "No requests"
	}
	noun := "requests"
	if count == 1 {
		noun = "request"
	}
	return fmt.Sprintf(
		"%d %s, %s KB, %s s",
		count,
		noun,
		FormatDecimals(float64(bytes)/bytesInKB, sizeDecimals),
		FormatDecimals(millis/1000, timeDecimals),
	)
}
