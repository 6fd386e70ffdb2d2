// Package config loads application settings from the environment and
// validates the values the token layer cannot run without.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// App holds every runtime setting for the service. Values come from the
// environment; defaults cover local development except for the JWT block,
// which has no safe default and is validated at startup.
type App struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":7680"`
	DBDSN         string `env:"DB_DSN" envDefault:"file::memory:?cache=shared"`

	// The signing secret never serializes; startup dumps the config as JSON.
	JWTSecret    string        `env:"JWT_SECRET" json:"-"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN"`
	JWTIssuer    string        `env:"JWT_ISSUER"`
	JWTAudience  []string      `env:"JWT_AUDIENCE" envSeparator:","`

	TokenLookup string `env:"TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme  string `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ContextKey  string `env:"CONTEXT_KEY" envDefault:"claims"`

	DeterministicIDs bool `env:"DETERMINISTIC_IDS" envDefault:"false"`
}

// Load parses the environment into an App. It does not validate; call
// Validate before handing the config to the auth layer.
func Load() (*App, error) {
	app := &App{}
	if err := env.Parse(app); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment")
	}
	return app, nil
}

// Validate fails fast on the settings token issuance and verification
// depend on. A service with a guessable or empty secret must not boot.
func (a *App) Validate() error {
	var missing []string

	if a.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if a.JWTExpiresIn <= 0 {
		missing = append(missing, "JWT_EXPIRES_IN")
	}

	if a.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}

	if len(a.JWTAudience) == 0 {
		missing = append(missing, "JWT_AUDIENCE")
	}

	if len(missing) > 0 {
		// Rendered messages are masked, so the offending names travel in
		// metadata where callers and tests can read them.
		return goerrors.New(
			fmt.Sprintf("missing or invalid required settings: %v", missing),
			goerrors.CategoryValidation,
		).WithTextCode("config_invalid").
			WithMetadata(map[string]any{"settings": missing})
	}

	return nil
}

// GetSigningKey implements auth.Config.
func (a *App) GetSigningKey() string { return a.JWTSecret }

// GetSigningMethod implements auth.Config.
func (a *App) GetSigningMethod() string { return "HS256" }

// GetTokenTTL implements auth.Config.
func (a *App) GetTokenTTL() time.Duration { return a.JWTExpiresIn }

// GetIssuer implements auth.Config.
func (a *App) GetIssuer() string { return a.JWTIssuer }

// GetAudience implements auth.Config.
func (a *App) GetAudience() []string { return a.JWTAudience }

// GetContextKey implements auth.Config.
func (a *App) GetContextKey() string { return a.ContextKey }

// GetTokenLookup implements auth.Config.
func (a *App) GetTokenLookup() string { return a.TokenLookup }

// GetAuthScheme implements auth.Config.
func (a *App) GetAuthScheme() string { return a.AuthScheme }
