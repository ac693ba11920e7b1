package whatsapp

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhone converts a Brazilian phone number into the full
// international form the Cloud API expects (55 + DDD + number).
//
// Rules: non-digits are stripped; 10 and 11 digit numbers (landline or
// mobile without country code) get the 55 prefix; 12 and 13 digit
// numbers already starting with 55 pass through; anything under 10
// digits is an error.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) < 10:
		return "", fmt.Errorf("phone number %q too short after stripping non-digits", raw)
	case len(digits) == 10 || len(digits) == 11:
		return "55" + digits, nil
	case (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, "55"):
		return digits, nil
	default:
		return "", fmt.Errorf("phone number %q has unexpected length %d", raw, len(digits))
	}
}
