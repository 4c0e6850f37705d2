package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true)

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_WrappedLookup(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrUserNotFound, "user u1 not found")
	wrapped := fmt.Errorf("load stats: %w", inner)

	if !IsErrorCode(wrapped, ErrUserNotFound) {
		t.Fatalf("expected wrapped code lookup to succeed")
	}
	if IsRetryable(wrapped) {
		t.Fatalf("expected non-retryable")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}

func TestHTTPStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{NewError(ErrInvalidRequest, "bad"), http.StatusBadRequest},
		{NewError(ErrUnknownActivity, "bad"), http.StatusBadRequest},
		{NewError(ErrUnauthorized, "no"), http.StatusUnauthorized},
		{NewError(ErrSessionNotFound, "gone"), http.StatusNotFound},
		{NewError(ErrRateLimited, "slow"), http.StatusTooManyRequests},
		{NewError(ErrServiceUnavailable, "down"), http.StatusServiceUnavailable},
		{NewError(ErrInternalError, "x").WithHTTPStatus(http.StatusTeapot), http.StatusTeapot},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusOf(tc.err); got != tc.want {
			t.Errorf("HTTPStatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
