package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/devlink/devlink"
	"github.com/devlink/devlink/config"
	"github.com/devlink/devlink/github"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("devlink"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	bunDB, err := openStore(ctx, cfg.Store.DSN)
	if err != nil {
		lgr.Error("store error", "error", err)
		os.Exit(1)
	}
	defer bunDB.Close()

	repos := devlink.NewRepositoryManager(bunDB)
	repos.MustValidate()

	auther := devlink.NewAuthenticator(repos.Users(), cfg).
		WithLogger(lgr.GetLogger("auth"))

	protected := devlink.ProtectedRoute(cfg, auther.TokenService())

	gh := github.New(github.Config{
		Token: cfg.Github.Token,
	})

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       "devlink",
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	devlink.RegisterUsersRoutes(srv.Router(),
		devlink.WithUsersAuthenticator(auther),
		devlink.WithUsersLogger(lgr.GetLogger("users")),
	)

	devlink.RegisterAuthRoutes(srv.Router(), protected,
		devlink.WithAuthAuthenticator(auther),
		devlink.WithAuthContextKey(cfg.GetContextKey()),
		devlink.WithAuthLogger(lgr.GetLogger("auth")),
	)

	devlink.RegisterProfileRoutes(srv.Router(), protected,
		devlink.WithProfileRepo(repos),
		devlink.WithProfileGithub(gh),
		devlink.WithProfileContextKey(cfg.GetContextKey()),
		devlink.WithProfileLogger(lgr.GetLogger("profile")),
	)

	devlink.RegisterPostsRoutes(srv.Router(), protected,
		devlink.WithPostsRepo(repos),
		devlink.WithPostsContextKey(cfg.GetContextKey()),
		devlink.WithPostsLogger(lgr.GetLogger("posts")),
	)

	lgr.Info("serving", "addr", cfg.Server.Addr)
	srv.Serve(cfg.Server.Addr)

	waitExitSignal()
}

// openStore opens the sqlite database and ensures the schema exists. The
// tables are created from the models, there is no migration pipeline.
func openStore(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	models := []any{
		(*devlink.User)(nil),
		(*devlink.Profile)(nil),
		(*devlink.Post)(nil),
	}

	for _, model := range models {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			bunDB.Close()
			return nil, err
		}
	}

	return bunDB, nil
}

func waitExitSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
