package utils

import (
	"regexp"
	"strings"
)

const maxPhoneDigits = 15

var e164Pattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// FormatPhoneNumber keeps only digits and a single leading '+', capped at 15 digits.
func FormatPhoneNumber(value string) string {
	digits := DigitsOnly(value)
	if len(digits) > maxPhoneDigits {
		digits = digits[:maxPhoneDigits]
	}
	if strings.Contains(value, "+") {
		return "+" + digits
	}
	return digits
}

// ValidatePhone returns an error message, or "" when the number is acceptable.
// Empty input is accepted since the phone field is optional.
func ValidatePhone(phone string) string {
	if phone == "" {
		return ""
	}

	digits := DigitsOnly(phone)
	switch {
	case len(digits) < 10:
		return "Phone number must have at least 10 digits"
	case len(digits) > maxPhoneDigits:
		return "Phone number cannot exceed 15 digits"
	case strings.Trim(digits, "0") == "":
		return "Phone number cannot be all zeros"
	case strings.Trim(digits, "1") == "":
		return "Phone number cannot be all ones"
	case isAscendingRun(digits):
		return "Phone number cannot be sequential numbers"
	}
	return ""
}

// IsValidE164 reports whether phone (spaces ignored) looks like an E.164 number.
func IsValidE164(phone string) bool {
	return e164Pattern.MatchString(strings.ReplaceAll(phone, " ", ""))
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isAscendingRun is true when every digit is exactly one more than the previous.
func isAscendingRun(digits string) bool {
	if len(digits) < 5 {
		return false
	}
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			return false
		}
	}
	return true
}
