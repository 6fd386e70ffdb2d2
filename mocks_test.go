package auth_test

import (
	"context"
	"time"

	"github.com/brightcart/auth"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*auth.User)
	return created, args.Error(1)
}

// testConfig is a plain auth.Config for wiring authenticators in tests.
type testConfig struct {
	signingKey string
	ttl        time.Duration
	issuer     string
	audience   []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		ttl:        time.Hour,
		issuer:     "test-issuer",
		audience:   []string{"test:audience"},
	}
}

func (c testConfig) GetSigningKey() string      { return c.signingKey }
func (c testConfig) GetSigningMethod() string   { return "HS256" }
func (c testConfig) GetTokenTTL() time.Duration { return c.ttl }
func (c testConfig) GetIssuer() string          { return c.issuer }
func (c testConfig) GetAudience() []string      { return c.audience }
func (c testConfig) GetContextKey() string      { return "claims" }
func (c testConfig) GetTokenLookup() string     { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string      { return "Bearer" }
