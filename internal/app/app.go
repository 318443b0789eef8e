// Package app initializes and runs the accounts service: it opens the
// database, runs schema migrations, and hands control to the admin
// console. Shutdown is driven by OS signals.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodbrews/accounts/internal/cli"
	"github.com/goodbrews/accounts/internal/config"
	"github.com/goodbrews/accounts/internal/logging"
	"github.com/goodbrews/accounts/internal/repositories/repomanager"
	"github.com/goodbrews/accounts/internal/service"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	repos   repomanager.RepositoryManager
	service *service.AccountService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	svc := service.NewAccountService(db, repos, cfg)

	return &App{config: cfg, logger: logger, db: db, repos: repos, service: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting accounts service")
	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	console := cli.NewApp(app.service, app.logger)
	console.Run(ctx)

	return app.db.Close()
}
