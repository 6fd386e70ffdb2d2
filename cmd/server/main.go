package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/brightcart/auth"
	"github.com/brightcart/auth/catalog"
	"github.com/brightcart/auth/config"
	"github.com/brightcart/auth/middleware/guard"
)

type App struct {
	config   *config.App
	bunDB    *bun.DB
	auther   auth.Authenticator
	repo     auth.RepositoryManager
	products catalog.Products
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		lgr.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.config.ServerAddress)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DBDSN)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []any{
		(*auth.User)(nil),
		(*catalog.Product)(nil),
	} {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create schema")
		}
	}

	app.bunDB = db
	app.repo = auth.NewRepositoryManager(db)
	app.products = catalog.NewProductsRepository(db)

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	users := app.repo.Users()

	auther := auth.NewAuthenticator(users, app.config).
		WithLogger(app.GetLogger("auth"))

	if app.config.DeterministicIDs {
		auther.WithDeterministicIDs()
	}

	app.auther = auther

	protected := guard.New(guard.Config{
		TokenValidator:     tokenValidatorAdapter{ts: auther.TokenService()},
		IdentityResolver:   liveIdentity(users),
		ContextKey:         app.config.GetContextKey(),
		IdentityContextKey: "auth_user",
		TokenLookup:        app.config.GetTokenLookup(),
		AuthScheme:         app.config.GetAuthScheme(),
		ContextEnricher: func(c context.Context, claims guard.AuthClaims) context.Context {
			if ac, ok := claims.(auth.AuthClaims); ok {
				return auth.WithClaimsContext(c, ac)
			}
			return c
		},
	})

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	authCtrl := auth.NewHTTPController(auther, auth.HTTPConfig{
		ClaimsContextKey: app.config.GetContextKey(),
	}).
		WithLogger(app.GetLogger("http")).
		WithUserLookup(users)

	authCtrl.RegisterRoutes(srv.Router().Group("/auth"), protected)
	authCtrl.RegisterUserRoutes(srv.Router().Group("/users"))

	catalogCtrl := catalog.NewHTTPController(app.products)
	catalogCtrl.RegisterRoutes(srv.Router().Group("/products"), protected)

	app.srv = srv

	return nil
}

// tokenValidatorAdapter narrows the token service's claim type to the
// surface the guard consumes.
type tokenValidatorAdapter struct {
	ts auth.TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (guard.AuthClaims, error) {
	claims, err := a.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// liveIdentity re-checks the token subject against the store on every
// request, so deleted users lose access before their token expires.
func liveIdentity(users auth.Users) guard.IdentityResolver {
	return func(ctx context.Context, claims guard.AuthClaims) (any, error) {
		user, err := users.GetByID(ctx, claims.Subject())
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, auth.ErrIdentityNotFound
		}
		return user, nil
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
