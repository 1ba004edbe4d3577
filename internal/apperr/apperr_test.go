package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsSetExpectedStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *Error
		status int
	}{
		{"unauthorized", Unauthorized(), http.StatusUnauthorized},
		{"rate limited", RateLimited(), http.StatusTooManyRequests},
		{"payload too large", PayloadTooLarge(), http.StatusRequestEntityTooLarge},
		{"parse", Parse(4, fmt.Errorf("bad json")), http.StatusUnprocessableEntity},
		{"database", Database(fmt.Errorf("conn reset")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, tc.err.Status)
			}
		})
	}
}

func TestParseErrorCarriesLineNumber(t *testing.T) {
	err := Parse(7, fmt.Errorf("unexpected token"))
	if err.Line != 7 {
		t.Fatalf("expected line 7, got %d", err.Line)
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := fmt.Errorf("context: %w", Database(cause))

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find the wrapped *Error")
	}
	if appErr.Code != CodeDatabase {
		t.Fatalf("expected CodeDatabase, got %s", appErr.Code)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("expected errors.Is to see through Unwrap to the original cause")
	}
}

func TestAsReturnsFalseForPlainErrors(t *testing.T) {
	if _, ok := As(fmt.Errorf("plain error")); ok {
		t.Fatal("expected As to report false for an error with no coded *Error in its chain")
	}
}
