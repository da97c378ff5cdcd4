package utils

import "testing"

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567890", "1234567890"},
		{"+1234567890", "+1234567890"},
		{"123-456-7890", "1234567890"},
		{"(123) 456-7890", "1234567890"},
		{"++1234567890", "+1234567890"},
		{"+1+2+34567890", "+1234567890"},
		{"++1++2++3++4++5++6++7++8++9++0++", "+1234567890"},
		{"+1-234-567-8901", "+12345678901"},
		{"12345678901234567890", "123456789012345"},
		{"+12345678901234567890", "+123456789012345"},
		{"", ""},
		{"   ", ""},
		{" 123 456 7890 ", "1234567890"},
		{"abc123def456ghi789jkl", "123456789"},
		{"+abc123def456ghi789jkl", "+123456789"},
	}
	for _, tt := range tests {
		if got := FormatPhoneNumber(tt.in); got != tt.want {
			t.Errorf("FormatPhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPhoneNumberIdempotent(t *testing.T) {
	inputs := []string{"+1 (555) 123-4567", "++44++7911", "abc", "+", "12345678901234567890"}
	for _, in := range inputs {
		once := FormatPhoneNumber(in)
		if twice := FormatPhoneNumber(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"5551234567", ""},
		{"+15551234567", ""},
		{"+447911123456", ""},
		{"+8613800138000", ""},
		{"1234567890", ""},
		{"+1234567890", ""},
		{"12345", "Phone number must have at least 10 digits"},
		{"1234567890123456", "Phone number cannot exceed 15 digits"},
		{"0000000000", "Phone number cannot be all zeros"},
		{"1111111111", "Phone number cannot be all ones"},
		{"0123456789", "Phone number cannot be sequential numbers"},
		{"9876543210", ""},
	}
	for _, tt := range tests {
		if got := ValidatePhone(tt.in); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidE164(t *testing.T) {
	valid := []string{"+14155552671", "14155552671", "+44 7911 123456"}
	for _, p := range valid {
		if !IsValidE164(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}
	invalid := []string{"", "+0123", "abc", "+1234567890123456"}
	for _, p := range invalid {
		if IsValidE164(p) {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}
