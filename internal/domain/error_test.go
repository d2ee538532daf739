package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "invalid input"},
			expected: "invalid input",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "cart.add", Message: "invalid input"},
			expected: "cart.add: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "order.get",
				Message: "failed to load",
				Err:     errors.New("database connection failed"),
			},
			expected: "order.get: failed to load: database connection failed",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to load",
				Err:     errors.New("database connection failed"),
			},
			expected: "failed to load: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(cause, EINTERNAL, "op", "msg")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "bad"), EINVALID},
		{"wrapped domain error", fmt.Errorf("outer: %w", NotFound("op", "order", "x")), ENOTFOUND},
		{"plain error", errors.New("boom"), EINTERNAL},
		{"unavailable", Unavailable(errors.New("dial tcp"), "op", "gateway down"), EUNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid shows message", Invalid("op", "quantity must be positive"), "quantity must be positive"},
		{"internal hides detail", Internal(errors.New("pq: secret"), "op", "failed"), "An internal error occurred. Please try again later."},
		{"plain error hides detail", errors.New("stack trace"), "An internal error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	if got := ErrorOp(Conflict("checkout.start", "x")); got != "checkout.start" {
		t.Errorf("ErrorOp() = %q", got)
	}
	if got := ErrorOp(errors.New("x")); got != "" {
		t.Errorf("ErrorOp() on plain error = %q", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "cart.add", "invalid quantity: %d", -1)

	if ErrorCode(err) != EINVALID {
		t.Errorf("code = %q", ErrorCode(err))
	}
	if ErrorMessage(err) != "invalid quantity: -1" {
		t.Errorf("message = %q", ErrorMessage(err))
	}
}

func TestWrapError_Nil(t *testing.T) {
	if WrapError(nil, EINTERNAL, "op", "msg") != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Unavailable(errors.New("timeout"), "op", "try again")) {
		t.Error("unavailable errors should be retryable")
	}
	if IsRetryable(Invalid("op", "bad")) {
		t.Error("invalid errors should not be retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
}

func TestConvenienceFunctions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"NotFound", NotFound("op", "order", "123"), ENOTFOUND},
		{"Unauthorized", Unauthorized("op", "sign in"), EUNAUTHORIZED},
		{"Forbidden", Forbidden("op", "no"), EFORBIDDEN},
		{"Invalid", Invalid("op", "bad"), EINVALID},
		{"Conflict", Conflict("op", "dup"), ECONFLICT},
		{"Internal", Internal(errors.New("x"), "op", "failed"), EINTERNAL},
		{"Unavailable", Unavailable(errors.New("x"), "op", "down"), EUNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsCode(tt.err, tt.code) {
				t.Errorf("IsCode(%v, %q) = false", tt.err, tt.code)
			}
		})
	}
}
