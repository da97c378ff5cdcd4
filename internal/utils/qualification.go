package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minQualifyingAge = 23

// currentYear is swapped in tests.
var currentYear = func() int { return time.Now().Year() }

// Qualification is one degree entry on a doctor profile.
type Qualification struct {
	Degree      string `json:"degree" bson:"degree"`
	Institution string `json:"institution,omitempty" bson:"institution,omitempty"`
	Year        string `json:"year" bson:"year"`
}

// ValidateQualificationYear checks the doctor was at least 23 in the qualification year.
// Empty or non-numeric input is not an error here.
func ValidateQualificationYear(qualYear, age string) string {
	if qualYear == "" || age == "" {
		return ""
	}
	year, ok1 := leadingInt(qualYear)
	ageNum, ok2 := leadingInt(age)
	if !ok1 || !ok2 {
		return ""
	}

	minYear := currentYear() - ageNum + minQualifyingAge
	if year < minYear {
		return fmt.Sprintf("Qualification year must be at least %d (doctor must be at least %d when qualifying)", minYear, minQualifyingAge)
	}
	return ""
}

// ValidateQualificationYearConsistency rejects duplicate years among qualifications that have one.
func ValidateQualificationYearConsistency(quals []Qualification) string {
	seen := make(map[string]bool, len(quals))
	withYear := 0
	duplicate := false
	for _, q := range quals {
		if strings.TrimSpace(q.Year) == "" {
			continue
		}
		withYear++
		if seen[q.Year] {
			duplicate = true
		}
		seen[q.Year] = true
	}
	if withYear < 2 || !duplicate {
		return ""
	}
	return "Qualification years must be different for each qualification"
}

// ValidateRegistrationYear checks the registration year is not in the future
// and not before the qualification year.
func ValidateRegistrationYear(regYear, qualYear string) string {
	if regYear == "" || qualYear == "" {
		return ""
	}
	reg, ok1 := leadingInt(regYear)
	qual, ok2 := leadingInt(qualYear)
	if !ok1 || !ok2 {
		return ""
	}

	if reg > currentYear() {
		return "Registration year cannot be in the future"
	}
	if reg < qual {
		return "Registration year must be after or equal to qualification year"
	}
	return ""
}

// leadingInt parses the integer prefix of s, so "2005 (MBBS)" reads as 2005.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// EarliestQualificationYear returns the numerically smallest year among qs, or "" if none parses.
func EarliestQualificationYear(qs []Qualification) string {
	earliest, found := 0, false
	for _, q := range qs {
		y, ok := leadingInt(q.Year)
		if !ok {
			continue
		}
		if !found || y < earliest {
			earliest, found = y, true
		}
	}
	if !found {
		return ""
	}
	return strconv.Itoa(earliest)
}
