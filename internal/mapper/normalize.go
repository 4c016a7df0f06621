package mapper

import "strings"

// NormalizeDigits strips everything but digits and truncates to max when
// max is positive.
func NormalizeDigits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if max > 0 && len(digits) > max {
		return digits[:max]
	}
	return digits
}

// NormalizePESEL keeps at most 11 digits.
func NormalizePESEL(s string) string { return NormalizeDigits(s, 11) }

// NormalizePhone keeps at most 15 digits.
func NormalizePhone(s string) string { return NormalizeDigits(s, 15) }

// NormalizePostalCode formats digits as NN-NNN while typing.
func NormalizePostalCode(s string) string {
	digits := NormalizeDigits(s, 5)
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "-" + digits[2:]
}
