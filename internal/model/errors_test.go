package model

import (
	"errors"
	"strings"
	"testing"
)

// APIErrorがerrorインターフェースを満たし、コードとメッセージを含むことを検証
func TestAPIError_Error(t *testing.T) {
	err := NewAuthFailedError()
	msg := err.Error()
	if !strings.Contains(msg, ErrCodeAuthFailed) {
		t.Errorf("Error() = %q, want to contain %q", msg, ErrCodeAuthFailed)
	}
}

// CompositeErrorが作成済みスクラムと失敗原因の両方を報告することを検証
func TestCompositeError_ReportsBothHalves(t *testing.T) {
	cause := NewUserNotFoundError("nonexistent")
	composite := &CompositeError{
		Scrum: &Scrum{ID: "scrum-1", Name: "Team A"},
		Err:   cause,
	}

	msg := composite.Error()
	if !strings.Contains(msg, "scrum-1") {
		t.Errorf("Error() = %q, want to contain created scrum id", msg)
	}
	if !strings.Contains(msg, "Team A") {
		t.Errorf("Error() = %q, want to contain created scrum name", msg)
	}
	if !strings.Contains(msg, ErrCodePartialCreate) {
		t.Errorf("Error() = %q, want to contain %q", msg, ErrCodePartialCreate)
	}
}

// CompositeErrorのUnwrapで失敗原因に到達できることを検証
func TestCompositeError_Unwrap(t *testing.T) {
	cause := NewUserNotFoundError("u-1")
	composite := &CompositeError{
		Scrum: &Scrum{ID: "s-1", Name: "Sprint 1"},
		Err:   cause,
	}

	var apiErr *APIError
	if !errors.As(composite, &apiErr) {
		t.Fatal("errors.As should reach the wrapped APIError")
	}
	if apiErr.Code != ErrCodeUserNotFound {
		t.Errorf("unwrapped code = %q, want %q", apiErr.Code, ErrCodeUserNotFound)
	}
}
