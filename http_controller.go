package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the auth HTTP controller.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/auth")
	PathPrefix string

	// UserContextKey is the router locals key the guard stores the resolved
	// user under (default: "auth_user")
	UserContextKey string

	// ClaimsContextKey is the router locals key the guard stores verified
	// claims under (default: "claims")
	ClaimsContextKey string

	// Debug dumps request payloads to stdout
	Debug bool

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController exposes the credential endpoints as JSON routes.
type HTTPController struct {
	auther Authenticator
	store  CredentialStore
	config HTTPConfig
	logger Logger
}

// NewHTTPController creates the auth HTTP controller.
func NewHTTPController(auther Authenticator, cfg HTTPConfig) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/auth"
	}
	if cfg.UserContextKey == "" {
		cfg.UserContextKey = "auth_user"
	}
	if cfg.ClaimsContextKey == "" {
		cfg.ClaimsContextKey = "claims"
	}

	c := &HTTPController{
		auther: auther,
		config: cfg,
		logger: defLogger{},
	}

	if c.config.ErrorHandler == nil {
		c.config.ErrorHandler = c.defaultErrorHandler
	}

	return c
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithUserLookup enables the public /users/:id route.
func (c *HTTPController) WithUserLookup(store CredentialStore) *HTTPController {
	c.store = store
	return c
}

// RegisterRoutes registers the auth routes. Guarded routes take the
// middleware produced by the guard package; the controller itself never
// parses tokens.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/signup", c.Signup)
	group.Post("/login", c.Login)
	group.Get("/me", c.Me, protected)
	group.Post("/refreshtoken", c.RefreshToken, protected)
}

// SignupRequest payload
type SignupRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 100),
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// Signup creates a new account and returns its public view.
func (c *HTTPController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	if c.config.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	user, err := c.auther.Signup(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	c.logger.Info("User signed up", "user_id", user.ID.String())

	return ctx.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

// Login verifies credentials and returns a token plus the public user view.
func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		// Validation failures on login are indistinguishable from bad
		// credentials, same as an unknown email would be.
		return c.config.ErrorHandler(ctx, ErrMismatchedHashAndPassword)
	}

	token, user, err := c.auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Public(),
	})
}

// Me returns the profile of the authenticated caller. The guard has already
// resolved the identity; this handler just serializes the snapshot.
func (c *HTTPController) Me(ctx router.Context) error {
	if user, ok := GetRouterUser(ctx, c.config.UserContextKey); ok {
		return ctx.JSON(http.StatusOK, user.Public())
	}

	// Claims fallback when the guard runs without an identity resolver.
	if claims, ok := GetRouterClaims(ctx, c.config.ClaimsContextKey); ok {
		return ctx.JSON(http.StatusOK, map[string]any{
			"id":    claims.UserID(),
			"email": claims.Email(),
		})
	}

	return c.config.ErrorHandler(ctx, ErrIdentityNotFound)
}

// RefreshToken issues a fresh token for the authenticated caller.
func (c *HTTPController) RefreshToken(ctx router.Context) error {
	userID := ""
	if user, ok := GetRouterUser(ctx, c.config.UserContextKey); ok {
		userID = user.ID.String()
	} else if claims, ok := GetRouterClaims(ctx, c.config.ClaimsContextKey); ok {
		userID = claims.UserID()
	}

	if userID == "" {
		return c.config.ErrorHandler(ctx, ErrIdentityNotFound)
	}

	token, err := c.auther.RefreshToken(ctx.Context(), userID)
	if err != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}

// RegisterUserRoutes wires the public user lookup. Separate from the auth
// prefix so callers can mount it under /users.
func (c *HTTPController) RegisterUserRoutes(group RouteRegistrar) {
	group.Get("/:id", c.UserShow)
}

// UserShow returns the public view of a user by id, 404 when absent.
func (c *HTTPController) UserShow(ctx router.Context) error {
	if c.store == nil {
		return c.config.ErrorHandler(ctx, goerrors.New("user lookup is not configured", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal))
	}

	user, err := c.store.GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil || user == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": "user not found",
			"code":  "user_not_found",
		})
	}

	return ctx.JSON(http.StatusOK, user.Public())
}

func (c *HTTPController) validationError(ctx router.Context, detail string) error {
	return ctx.JSON(http.StatusBadRequest, map[string]string{
		"error": detail,
		"code":  "validation_error",
	})
}

// defaultErrorHandler maps rich error categories onto the JSON error body.
// Internal detail stays in the server log; callers get the category outcome.
func (c *HTTPController) defaultErrorHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := richErr.Message
	if richErr.Category == goerrors.CategoryInternal {
		c.logger.Error("Auth controller internal error", "error", err)
		message = "An unexpected server error occurred"
	}

	return ctx.JSON(status, map[string]string{
		"error": message,
		"code":  richErr.TextCode,
	})
}
