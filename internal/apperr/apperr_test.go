package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("email", "bad email"), Validation},
		{"quota", Quota("limit reached"), QuotaExceeded},
		{"conflict", Conflictf("email_taken", "taken"), Conflict},
		{"wrapped infra", Wrap(errors.New("pg down"), "cannot save"), Infrastructure},
		{"plain error", errors.New("anything"), Infrastructure},
		{"fmt-wrapped typed", fmt.Errorf("outer: %w", NotFoundf("x", "gone")), NotFound},
		{"nil-ish wrapped", Forbiddenf("no"), Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessageHidesNothingFromLogs(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap(inner, "could not save booking")

	if !errors.Is(err, inner) {
		t.Error("wrapped cause lost")
	}
	if err.Error() != "could not save booking: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAs(t *testing.T) {
	typed := Validationf("name", "required")
	wrapped := fmt.Errorf("handler: %w", typed)

	got := As(wrapped)
	if got == nil || got.Field != "name" {
		t.Errorf("As() = %+v, want field name", got)
	}
	if As(errors.New("plain")) != nil {
		t.Error("As() on plain error should be nil")
	}
}
