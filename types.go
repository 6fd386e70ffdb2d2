package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the minimal view of an authenticated principal that the
// token layer needs.
type Identity interface {
	ID() string
	Email() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Signup(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	RefreshToken(ctx context.Context, userID string) (string, error)
}

// TokenService mints and validates signed tokens
type TokenService interface {
	IssueFor(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// CredentialStore is the store contract the Auther and the guard resolve
// identities against.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
}

// Config carries the token and transport settings validated at startup.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
