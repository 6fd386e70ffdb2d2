package guard

import (
	"strings"

	"github.com/goliatone/go-router"
)

// TokenExtractor pulls a raw credential out of the request.
type TokenExtractor func(c router.Context) (string, error)

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// ExtractRawTokenFromContext tries each extractor in order and returns the
// first hit.
func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a lookup expression such as
// "header:Authorization,cookie:token,query:auth_token" into extractors.
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) < 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts the token from the
// request header, enforcing the auth scheme prefix.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		scheme := strings.TrimSpace(authScheme)
		l := len(scheme)
		if l == 0 {
			return "", ErrMissingToken
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], scheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrMissingToken
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

func tokenFromParam(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}
