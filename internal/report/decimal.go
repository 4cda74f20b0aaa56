package report

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converts a display string to a number, accepting a decimal
// comma. Empty or unparsable input yields nil; it never fails.
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatDecimal renders a stored number back into a display string. Nil
// becomes the empty string.
func FormatDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// CalculateCoefficient returns theoretical/measured rounded to three
// decimals. When either input does not parse or measured is zero the current
// value is returned unchanged, so a bad reading never erases a manual entry.
func CalculateCoefficient(theoretical, measured, current string) string {
	t := ParseDecimal(theoretical)
	m := ParseDecimal(measured)
	if t == nil || m == nil || *m == 0 {
		return current
	}
	q := *t / *m
	return FormatCoefficient(&q)
}

// FormatCoefficient renders a sensitivity coefficient with three decimals,
// the precision it is computed with. Nil becomes the empty string.
func FormatCoefficient(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}
