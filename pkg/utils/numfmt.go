// Package utils provides common utility functions for PlateSense.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRatio parses a ratio string in any of the three wire encodings used
// by the analysis backend: plain decimal ("1.03"), percent ("50.6%"), or
// multiplier ("15.6x"). Commas are tolerated. Malformed or empty input
// yields 0 — never an error, never NaN.
func ParseRatio(s string) float64 {
	val, _ := ParseRatioOK(s)
	return val
}

// ParseRatioOK is ParseRatio with an ok flag so callers can tell a genuine
// zero from a silently degraded malformed value.
func ParseRatioOK(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "x")
	s = strings.TrimSuffix(s, "X")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// FormatPercent renders a percentage value, e.g. 65.0 → "65.0%".
func FormatPercent(n float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, n)
}

// FormatMultiplier renders a multiplier value, e.g. 8.0 → "8.0x".
func FormatMultiplier(n float64, decimals int) string {
	return fmt.Sprintf("%.*fx", decimals, n)
}

// FormatCurrency renders a whole-unit currency amount with thousands
// separators, e.g. 1234567.8 → "$1,234,568".
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	n := int64(amount + 0.5)
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	if negative {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteString(",")
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteString(",")
		}
	}
	return b.String()
}
