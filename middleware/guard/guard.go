// Package guard is the request authenticator: it extracts a bearer token,
// validates it, re-resolves the subject against the credential store, and
// attaches the verified claims plus the live identity to the request.
//
// The store re-check on every request is deliberate. Tokens are stateless
// and cannot be revoked, so an identity deleted after issuance is caught
// here, not at the token layer.
package guard

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization

	// ErrMissingToken is returned when no extractor finds a credential.
	// Intentionally generic: it names neither the header nor the scheme.
	ErrMissingToken = errors.New("missing or malformed JWT")

	// ErrIdentityGone rejects tokens whose subject no longer resolves to a
	// live identity.
	ErrIdentityGone = errors.New("identity no longer exists")
)

// TokenValidator mirrors the auth package's TokenService.Validate without
// importing it, avoiding an import cycle.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the claim surface the guard and its consumers need.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
}

// IdentityResolver maps verified claims to a live identity. Returning an
// error rejects the request as unauthorized; the resolved value is stored
// under Config.IdentityContextKey.
type IdentityResolver func(ctx context.Context, claims AuthClaims) (any, error)

type Config struct {
	// Filter skips the guard entirely when it returns true
	Filter func(router.Context) bool

	// SuccessHandler runs after the request is authenticated (default: Next)
	SuccessHandler router.HandlerFunc

	// ErrorHandler converts any pipeline failure into a response. The
	// default is a generic 401 regardless of which step failed.
	ErrorHandler router.ErrorHandler

	// TokenValidator validates locally issued tokens. Required unless a key
	// source below is configured for externally issued tokens.
	TokenValidator TokenValidator

	// IdentityResolver re-checks claim subjects against the store. Optional;
	// without it the guard attaches claims only.
	IdentityResolver IdentityResolver

	// SigningKey, SigningKeys, and JWKSetURLs configure direct JWT parsing
	// for tokens minted by an external issuer. Used only when
	// TokenValidator is nil.
	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc

	// ContextKey is the locals key for verified claims (default: "claims")
	ContextKey string

	// IdentityContextKey is the locals key for the resolved identity
	// (default: "auth_user")
	IdentityContextKey string

	// TokenLookup is a comma separated list of "<source>:<name>" entries,
	// e.g. "header:Authorization,cookie:token" (default: header:Authorization)
	TokenLookup string

	// AuthScheme expected in the credential header (default: "Bearer")
	AuthScheme string

	// ContextEnricher propagates claims into the standard context after
	// validation, so non-router code can read them.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the guard middleware.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.IdentityResolver != nil {
				identity, err := cfg.IdentityResolver(ctx.Context(), claims)
				if err != nil {
					return cfg.ErrorHandler(ctx, ErrIdentityGone)
				}
				ctx.Locals(cfg.IdentityContextKey, identity)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg *Config) validate(raw string) (AuthClaims, error) {
	if cfg.TokenValidator != nil {
		return cfg.TokenValidator.Validate(raw)
	}

	token, err := jwt.Parse(raw, cfg.KeyFunc)
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrMissingToken
	}

	return mapClaims{mc}, nil
}

// mapClaims adapts externally issued tokens onto the AuthClaims surface.
type mapClaims struct {
	claims jwt.MapClaims
}

func (m mapClaims) Subject() string {
	sub, _ := m.claims.GetSubject()
	return sub
}

func (m mapClaims) UserID() string {
	if uid, ok := m.claims["uid"].(string); ok && uid != "" {
		return uid
	}
	return m.Subject()
}

func (m mapClaims) Email() string {
	if email, ok := m.claims["email"].(string); ok {
		return email
	}
	return ""
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Access denied - invalid or missing credentials",
				"code":  "unauthorized",
			})
		}
	}

	if cfg.TokenValidator == nil &&
		cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 &&
		len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
		panic("GUARD: middleware configuration requires a TokenValidator or a signing key source")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "claims"
	}

	if cfg.IdentityContextKey == "" {
		cfg.IdentityContextKey = "auth_user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.TokenValidator == nil && cfg.KeyFunc == nil {
		cfg.KeyFunc = buildKeyFunc(cfg)
	}

	return cfg
}

func buildKeyFunc(cfg Config) jwt.Keyfunc {
	if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
		var givenKeys map[string]keyfunc.GivenKey
		if cfg.SigningKeys != nil {
			givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
			for kid, key := range cfg.SigningKeys {
				givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
					Algorithm: key.JWTAlg,
				})
			}
		}

		if len(cfg.JWKSetURLs) > 0 {
			kf, err := multiKeyfunc(givenKeys, cfg.JWKSetURLs)
			if err != nil {
				panic("GUARD: failed to create keyfunc from JWK Set URL: " + err.Error())
			}
			return kf
		}

		return keyfunc.NewGiven(givenKeys).Keyfunc
	}

	return signingKeyFunc(cfg.SigningKey)
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}
	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, err
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok || alg != key.JWTAlg {
				return nil, errors.New("unexpected JWT signing method")
			}
		}
		return key.Key, nil
	}
}
