package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/evidenceledger/credstore/internal/errl"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "test@example.com", false},
		{"valid email with subdomain", "test@sub.example.com", false},
		{"empty email", "", true},
		{"missing @", "testexample.com", true},
		{"two @", "a@b@example.com", true},
		{"missing domain", "test@", true},
		{"missing local part", "@example.com", true},
		{"missing TLD", "test@example", true},
		{"trailing dot", "test@example.", true},
		{"surrounding space", " test@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errl.ErrValidation) {
				t.Errorf("Email() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDOB(t *testing.T) {
	tests := []struct {
		dob     string
		want    time.Time
		wantErr bool
	}{
		{"15-06-1999", time.Date(1999, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"29-02-2020", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"01-01-1900", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"31-12-2100", time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"31-02-2020", time.Time{}, true},
		{"29-02-2019", time.Time{}, true},
		{"31-04-2001", time.Time{}, true},
		{"00-01-2000", time.Time{}, true},
		{"32-01-2000", time.Time{}, true},
		{"15-13-1999", time.Time{}, true},
		{"31-12-1899", time.Time{}, true},
		{"01-01-2101", time.Time{}, true},
		{"1999-06-15", time.Time{}, true},
		{"5-6-1999", time.Time{}, true},
		{"15/06/1999", time.Time{}, true},
		{"", time.Time{}, true},
		{"15-06-1999 ", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.dob, func(t *testing.T) {
			got, err := DOB(tt.dob)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DOB(%q) error = %v, wantErr %v", tt.dob, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errl.ErrValidation) {
					t.Errorf("DOB(%q) error = %v, want ErrValidation", tt.dob, err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("DOB(%q) = %v, want %v", tt.dob, got, tt.want)
			}
		})
	}
}

func TestYearAndRequired(t *testing.T) {
	if err := Year("passed_out_year", 2024); err != nil {
		t.Errorf("Year(2024) error = %v", err)
	}
	if err := Year("passed_out_year", 1899); !errors.Is(err, errl.ErrValidation) {
		t.Errorf("Year(1899) error = %v", err)
	}
	if err := Required("name", "  "); !errors.Is(err, errl.ErrValidation) {
		t.Errorf("Required(blank) error = %v", err)
	}
	if err := First(nil, Required("role", ""), Required("name", "")); err == nil {
		t.Error("First() returned nil")
	}
}
