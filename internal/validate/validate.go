// Package validate checks principal and certificate input before anything is
// hashed or written.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/evidenceledger/credstore/internal/errl"
)

// DOBLayout is the only accepted date-of-birth format (DD-MM-YYYY).
const DOBLayout = "02-01-2006"

const (
	MinYear = 1900
	MaxYear = 2100
)

var dobPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Email validates email format
func Email(email string) error {
	if email == "" {
		return errl.Validation("email is required")
	}

	if strings.TrimSpace(email) != email {
		return errl.Validation("invalid email format")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return errl.Validation("invalid email format")
	}

	if parts[0] == "" || parts[1] == "" {
		return errl.Validation("invalid email format")
	}

	if !strings.Contains(parts[1], ".") || strings.HasSuffix(parts[1], ".") {
		return errl.Validation("invalid email format")
	}

	return nil
}

// DOB parses a DD-MM-YYYY date of birth. The date must exist on the calendar
// (31-02-2020 is rejected) and the year must lie in [MinYear, MaxYear].
func DOB(dob string) (time.Time, error) {
	if !dobPattern.MatchString(dob) {
		return time.Time{}, errl.Validation("invalid date of birth %q, use DD-MM-YYYY", dob)
	}
	t, err := time.Parse(DOBLayout, dob)
	if err != nil {
		return time.Time{}, errl.Validation("invalid date of birth %q: not a calendar date", dob)
	}
	if t.Year() < MinYear || t.Year() > MaxYear {
		return time.Time{}, errl.Validation("date of birth year %d outside %d-%d", t.Year(), MinYear, MaxYear)
	}
	return t, nil
}

// Year checks a graduation or batch year.
func Year(field string, year int) error {
	if year < MinYear || year > MaxYear {
		return errl.Validation("%s %d outside %d-%d", field, year, MinYear, MaxYear)
	}
	return nil
}

// Required rejects empty or whitespace-only values.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errl.Validation("%s is required", field)
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
