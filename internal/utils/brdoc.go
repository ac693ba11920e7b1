package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ formats a CNPJ as XX.XXX.XXX/XXXX-XX. The formatting is
// purely positional over the digits, so feeding an already formatted
// string through again yields the same string. Inputs without exactly
// 14 digits are returned unchanged.
func FormatCNPJ(cnpj string) string {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s",
		digits[0:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

// ValidCNPJ reports whether cnpj carries 14 digits with correct
// verification digits (mod-11 scheme).
func ValidCNPJ(cnpj string) bool {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return false
	}
	allSame := true
	for i := 1; i < 14; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}
	return cnpjCheckDigit(digits, 12) == int(digits[12]-'0') &&
		cnpjCheckDigit(digits, 13) == int(digits[13]-'0')
}

func cnpjCheckDigit(digits string, length int) int {
	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	offset := 13 - length
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * weights[offset+i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// ParseBRDate converts a date entered as DD/MM/AAAA to ISO AAAA-MM-DD.
// It rejects day > 31, month > 12, years outside [1900, 2100] and
// non-existent calendar dates such as 31/02/2024.
func ParseBRDate(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid date %q: expected DD/MM/AAAA", s)
	}
	var day, month, year int
	if _, err := fmt.Sscanf(s, "%d/%d/%d", &day, &month, &year); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	if day < 1 || day > 31 {
		return "", fmt.Errorf("invalid date %q: day out of range", s)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("invalid date %q: month out of range", s)
	}
	if year < 1900 || year > 2100 {
		return "", fmt.Errorf("invalid date %q: year out of range", s)
	}
	// time.Date normalizes overflows (31/02 becomes 02/03 or 03/03), so a
	// round trip detects non-existent calendar dates.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return "", fmt.Errorf("invalid date %q: no such calendar date", s)
	}
	return t.Format("2006-01-02"), nil
}

// FormatBRDate converts an ISO AAAA-MM-DD date to DD/MM/AAAA display form.
func FormatBRDate(iso string) (string, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("invalid ISO date %q: %w", iso, err)
	}
	return t.Format("02/01/2006"), nil
}
