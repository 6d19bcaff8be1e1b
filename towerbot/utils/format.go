package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatNumber renders n with thousands separators: 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if n < 0 {
		str = str[1:]
	}

	var result []byte
	for i := len(str) - 1; i >= 0; i-- {
		if (len(str)-i-1)%3 == 0 && i != len(str)-1 {
			result = append([]byte{','}, result...)
		}
		result = append([]byte{str[i]}, result...)
	}

	if n < 0 {
		return "-" + string(result)
	}
	return string(result)
}

// FormatPower compacts large power values: 12400 -> "12.4K", 3200000 -> "3.2M".
func FormatPower(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return trimZero(fmt.Sprintf("%.1fB", float64(n)/1_000_000_000))
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1_000_000))
	case n >= 10_000:
		return trimZero(fmt.Sprintf("%.1fK", float64(n)/1_000))
	default:
		return FormatNumber(n)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

// FormatDuration renders a duration in the largest two useful units:
// "1h 05m", "4m 30s", "12s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatHours renders fractional idle hours: "3.5h".
func FormatHours(hours float64) string {
	return trimZero(fmt.Sprintf("%.1fh", hours))
}

// ProgressBar renders a fixed-width text bar for a 0..1 ratio.
func ProgressBar(ratio float64, width int) string {
	if width <= 0 {
		width = 10
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatPercent renders a 0..1 ratio as "42%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
