package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "paisatrack/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertClose fails the test unless got is within a small relative tolerance
// of want. Used for the float arithmetic in valuation and sell math.
func AssertClose(t *testing.T, want, got float64, label string) {
	t.Helper()

	tolerance := 1e-9 * math.Max(1, math.Abs(want))
	if math.Abs(want-got) > tolerance {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}
