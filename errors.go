package auth

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Machine readable discriminators attached to rich errors. Callers get the
// same HTTP outcome for most of these; the text code is for diagnostics.
const (
	TextCodeInvalidCreds    = "auth_invalid_credentials"
	TextCodeEmailTaken      = "auth_email_taken"
	TextCodeTokenExpired    = "auth_token_expired"
	TextCodeTokenMalformed  = "auth_token_malformed"
	TextCodeEmptyPassword   = "auth_empty_password"
	TextCodeIdentityMissing = "auth_identity_not_found"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeIdentityMissing)

// ErrMismatchedHashAndPassword covers both unknown email and wrong password,
// deliberately undifferentiated so login failures leak nothing.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrEmailTaken is the signup conflict outcome
var ErrEmailTaken = goerrors.New("a user with this email already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrTokenExpired rejects tokens whose exp has passed
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed rejects tokens with a bad signature, shape, issuer, or audience
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrNoEmptyString guards the hasher against empty plaintext
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) || hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError reports tokens rejected for shape, signature, issuer, or
// audience. The text code is the discriminator; rendered messages are masked
// by the error package and cannot be matched. The string checks remain for
// plain errors from the jwt parser and the extractors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

func hasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == textCode
}

// IsConflictError reports whether err carries the conflict category, either
// our own ErrEmailTaken or a wrapped store violation.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// IsUniqueViolation detects the driver-level unique constraint rejection.
// The store wraps driver errors in rich errors whose rendered message is
// masked, so the match walks the unwrap chain down to the raw driver error.
func IsUniqueViolation(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value violates unique constraint") {
			return true
		}
	}
	return false
}
