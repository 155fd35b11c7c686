// Package bytesize formats and parses byte counts using base-1024 units
// labelled B, KB, MB and GB.
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	KB int64 = 1 << 10
	MB int64 = 1 << 20
	GB int64 = 1 << 30
)

var units = []string{"B", "KB", "MB", "GB"}

// Format renders n with one decimal place, trailing zeros trimmed:
// 1536 -> "1.5 KB", 1024 -> "1 KB", 0 -> "0 B".
func Format(n int64) string {
	return FormatDecimals(n, 1)
}

// FormatDecimals is Format with a caller-chosen number of decimals.
// Negative decimals are treated as zero.
func FormatDecimals(n int64, decimals int) string {
	if n == 0 {
		return "0 B"
	}
	sign := ""
	v := float64(n)
	if n < 0 {
		// Negate as float64; -math.MinInt64 overflows int64.
		sign, v = "-", -v
	}
	if decimals < 0 {
		decimals = 0
	}

	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}

	// Round to the requested precision, then drop trailing zeros.
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return sign + strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units[i]
}

var multipliers = map[string]int64{
	"":    1,
	"B":   1,
	"K":   KB,
	"KB":  KB,
	"KIB": KB,
	"M":   MB,
	"MB":  MB,
	"MIB": MB,
	"G":   GB,
	"GB":  GB,
	"GIB": GB,
}

// Parse reads sizes such as "500KB", "1.5 MB", "2048" or "3gb".
// Units are base-1024 and case-insensitive; a bare number is bytes.
// Fractional results are rounded to the nearest byte.
func Parse(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("parse size: empty input")
	}

	split := strings.IndexFunc(raw, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+')
	})
	num, unit := raw, ""
	if split >= 0 {
		num, unit = raw[:split], raw[split:]
	}
	unit = strings.ToUpper(strings.TrimSpace(unit))

	mult, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("parse size %q: unknown unit %q", s, unit)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("parse size %q: must be a non-negative number", s)
	}
	bytes := v * float64(mult)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.Round(bytes) >= math.MaxInt64 {
		return 0, fmt.Errorf("parse size %q: too large", s)
	}
	return int64(math.Round(bytes)), nil
}
