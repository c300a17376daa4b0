package errl

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"validation", Validation("bad dob %q", "31-02-2020"), ErrValidation},
		{"not found", NotFound("admin", "a@b.com"), ErrNotFound},
		{"duplicate", Duplicate("email", "a@b.com"), ErrDuplicateIdentity},
		{"connection", Connection("ping", context.DeadlineExceeded), ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if !Is(tt.err) {
				t.Errorf("Is(%v) = false", tt.err)
			}
		})
	}
}

func TestConnectionKeepsCause(t *testing.T) {
	err := Connection("query", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestErrorfWrapsAndPrintsStack(t *testing.T) {
	base := errors.New("boom")
	err := Errorf("failed to do thing: %w", base)
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error lost")
	}
	if err.Error() != "failed to do thing: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(fmt.Sprintf("%+v", err)) <= len(err.Error()) {
		t.Errorf("expected stack trace in %%+v output")
	}
	if Is(err) {
		t.Errorf("untyped error reported as typed")
	}
}
