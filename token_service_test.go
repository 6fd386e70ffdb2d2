package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/brightcart/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenTestIdentity struct {
	id    string
	email string
}

func (t tokenTestIdentity) ID() string    { return t.id }
func (t tokenTestIdentity) Email() string { return t.email }

func newTestTokenService() auth.TokenService {
	return auth.NewTokenService(
		[]byte("test-signing-key"),
		time.Hour,
		"test-issuer",
		jwt.ClaimStrings{"test:audience"},
		nil,
	)
}

func TestIssueFor(t *testing.T) {
	ts := newTestTokenService()

	identity := tokenTestIdentity{
		id:    uuid.New().String(),
		email: "test@example.com",
	}

	token, err := ts.IssueFor(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse with the raw library to inspect everything we minted.
	parsed, err := jwt.ParseWithClaims(token, &auth.JWTClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*auth.JWTClaims)
	require.True(t, ok)

	assert.Equal(t, identity.id, claims.Subject())
	assert.Equal(t, identity.id, claims.UserID())
	assert.Equal(t, identity.email, claims.Email())
	assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
	assert.Contains(t, claims.RegisteredClaims.Audience, "test:audience")
	assert.NotEmpty(t, claims.RegisteredClaims.ID, "tokens should carry a jti")

	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), 5*time.Second)
}

func TestIssueForNilIdentity(t *testing.T) {
	ts := newTestTokenService()

	token, err := ts.IssueFor(nil)
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestValidate(t *testing.T) {
	ts := newTestTokenService()

	identity := tokenTestIdentity{
		id:    uuid.New().String(),
		email: "test@example.com",
	}

	t.Run("Round trip", func(t *testing.T) {
		token, err := ts.IssueFor(identity)
		require.NoError(t, err)

		claims, err := ts.Validate(token)
		require.NoError(t, err)

		assert.Equal(t, identity.id, claims.Subject())
		assert.Equal(t, identity.email, claims.Email())
	})

	t.Run("Expired token", func(t *testing.T) {
		expired := auth.NewTokenService(
			[]byte("test-signing-key"),
			-time.Minute,
			"test-issuer",
			jwt.ClaimStrings{"test:audience"},
			nil,
		)

		token, err := expired.IssueFor(identity)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrTokenExpired))
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("Wrong signing key", func(t *testing.T) {
		forged := auth.NewTokenService(
			[]byte("some-other-key"),
			time.Hour,
			"test-issuer",
			jwt.ClaimStrings{"test:audience"},
			nil,
		)

		token, err := forged.IssueFor(identity)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService(
			[]byte("test-signing-key"),
			time.Hour,
			"another-issuer",
			jwt.ClaimStrings{"test:audience"},
			nil,
		)

		token, err := other.IssueFor(identity)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		assert.Error(t, err)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		other := auth.NewTokenService(
			[]byte("test-signing-key"),
			time.Hour,
			"test-issuer",
			jwt.ClaimStrings{"other:audience"},
			nil,
		)

		token, err := other.IssueFor(identity)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		assert.Error(t, err)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := ts.Validate("not.a.token")
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("Unexpected signing method", func(t *testing.T) {
		// alg=none tokens must never validate.
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   identity.id,
				Issuer:    "test-issuer",
				Audience:  jwt.ClaimStrings{"test:audience"},
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		assert.Error(t, err)
	})
}

func TestRefreshedTokensDiffer(t *testing.T) {
	ts := newTestTokenService()

	identity := tokenTestIdentity{
		id:    uuid.New().String(),
		email: "test@example.com",
	}

	first, err := ts.IssueFor(identity)
	require.NoError(t, err)

	second, err := ts.IssueFor(identity)
	require.NoError(t, err)

	// Fresh jti on every mint keeps same-second tokens distinct.
	assert.NotEqual(t, first, second)
}
