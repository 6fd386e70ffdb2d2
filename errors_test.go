package auth_test

import (
	"errors"
	"testing"

	"github.com/brightcart/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured token expired error",
			err:      auth.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "Legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name: "Wrapped expired token (text code match)",
			err: goerrors.Wrap(errors.New("rejected"), goerrors.CategoryAuth, "rejected").
				WithTextCode(auth.TextCodeTokenExpired),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured malformed error",
			err:      auth.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "Legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			// The rendered message of a rich wrap is masked; the text
			// code is what must carry the discriminator.
			name: "Wrapped forged token (text code match)",
			err: goerrors.Wrap(errors.New("signature is invalid"), goerrors.CategoryAuth, "rejected").
				WithTextCode(auth.TextCodeTokenMalformed),
			expected: true,
		},
		{
			name:     "Legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrTokenExpired,
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsMalformedError(tt.err))
		})
	}
}

func TestIsConflictError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Email taken error",
			err:      auth.ErrEmailTaken,
			expected: true,
		},
		{
			name:     "Wrapped conflict",
			err:      goerrors.Wrap(auth.ErrEmailTaken, goerrors.CategoryConflict, "store rejected insert"),
			expected: true,
		},
		{
			name:     "Auth category error",
			err:      auth.ErrMismatchedHashAndPassword,
			expected: false,
		},
		{
			name:     "Plain error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsConflictError(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "SQLite unique violation",
			err:      errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"),
			expected: true,
		},
		{
			name:     "Postgres unique violation",
			err:      errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`),
			expected: true,
		},
		{
			// The store wraps driver errors and masks the rendered
			// message; the violation text only survives down the chain.
			name: "Violation buried in a rich wrap",
			err: goerrors.Wrap(
				errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"),
				goerrors.CategoryInternal, "store insert failed",
			),
			expected: true,
		},
		{
			name:     "Unrelated driver error",
			err:      errors.New("database is locked"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsUniqueViolation(tt.err))
		})
	}
}

func TestErrorCategoriesAndCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category any
		code     any
		textCode string
	}{
		{
			name:     "Invalid credentials",
			err:      auth.ErrMismatchedHashAndPassword,
			category: goerrors.CategoryAuth,
			code:     goerrors.CodeUnauthorized,
			textCode: auth.TextCodeInvalidCreds,
		},
		{
			name:     "Email taken",
			err:      auth.ErrEmailTaken,
			category: goerrors.CategoryConflict,
			code:     goerrors.CodeConflict,
			textCode: auth.TextCodeEmailTaken,
		},
		{
			name:     "Token expired",
			err:      auth.ErrTokenExpired,
			category: goerrors.CategoryAuth,
			code:     goerrors.CodeUnauthorized,
			textCode: auth.TextCodeTokenExpired,
		},
		{
			name:     "Identity missing",
			err:      auth.ErrIdentityNotFound,
			category: goerrors.CategoryAuth,
			code:     goerrors.CodeUnauthorized,
			textCode: auth.TextCodeIdentityMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var richErr *goerrors.Error
			assert.True(t, goerrors.As(tt.err, &richErr))
			assert.Equal(t, tt.category, richErr.Category)
			assert.Equal(t, tt.code, richErr.Code)
			assert.Equal(t, tt.textCode, richErr.TextCode)
		})
	}
}
