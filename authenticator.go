package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
)

// Auther orchestrates signup, login, and token refresh against a
// CredentialStore. It owns no HTTP concerns; controllers and the guard sit
// on top of it.
type Auther struct {
	store            CredentialStore
	tokenService     TokenService
	logger           Logger
	deterministicIDs bool
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service, e.g. one sharing keys with
// an external issuer.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithDeterministicIDs derives user ids from the signup email instead of
// random uuids. Useful for fixtures and idempotent imports.
func (s *Auther) WithDeterministicIDs() *Auther {
	s.deterministicIDs = true
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Signup creates a new identity. The GetByEmail pre-check gives a friendly
// conflict without burning a bcrypt round, but it is advisory only: the
// store's unique constraint is what holds under concurrent signups, and its
// violation maps to the same ErrEmailTaken.
func (s *Auther) Signup(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)

	if existing, err := s.store.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !repository.IsRecordNotFound(err) {
		s.logger.Error("Signup store lookup failed", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing user")
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return nil, err
		}
		s.logger.Error("Signup hashing failed", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
	}

	if s.deterministicIDs {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	created, err := s.store.Register(ctx, user)
	if err != nil {
		if IsUniqueViolation(err) || IsConflictError(err) {
			// Lost the race against a concurrent signup for the same email.
			return nil, ErrEmailTaken
		}
		s.logger.Error("Signup create failed", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}

	s.logger.Info("Signup created user", "user_id", created.ID.String())

	return created, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the identical error.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.TrimSpace(email)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil, ErrMismatchedHashAndPassword
		}
		s.logger.Error("Login store lookup failed", "error", err)
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return "", nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return "", nil, ErrMismatchedHashAndPassword
	}

	token, err := s.tokenService.IssueFor(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token issuance failed", "error", err)
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}

	return token, user, nil
}

// RefreshToken re-issues a token for a known identity. A missing identity is
// an auth failure, not a not-found: the caller presented a token for an
// account that no longer exists.
func (s *Auther) RefreshToken(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrIdentityNotFound
		}
		s.logger.Error("RefreshToken store lookup failed", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during refresh")
	}

	if user == nil {
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.IssueFor(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("RefreshToken issuance failed", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}

	return token, nil
}

var _ Authenticator = (*Auther)(nil)
