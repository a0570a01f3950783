package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-kinfolk/internal/app"
	"backend-kinfolk/internal/config"
	"backend-kinfolk/internal/db"
	"backend-kinfolk/internal/server"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	migrate         func(context.Context, config.Config, *pgxpool.Pool, *zap.Logger) error
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, *zap.Logger, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		migrate:         applyMigrations,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	log := app.NewLogger(cfg.Environment)
	defer func() { _ = log.Sync() }()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Error("postgres connection failed", zap.Error(err))
	}

	if pg != nil {
		if err := deps.migrate(context.Background(), cfg, pg, log); err != nil {
			log.Error("migrations failed", zap.Error(err))
		}
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, log, signals, nil); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}
}

func applyMigrations(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, log *zap.Logger) error {
	migrator, err := app.NewMigrator(pg, cfg.MigrationsPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()
	return migrator.Run(ctx)
}

type ListenFunc func(srv *server.Server, ctx context.Context) error

var defaultListen ListenFunc = func(srv *server.Server, ctx context.Context) error {
	return srv.Listen(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, log *zap.Logger, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.New(cfg, pg, rdb, log)

	if listen == nil {
		listen = defaultListen
	}

	listenCtx, cancelListen := context.WithCancel(ctx)
	defer cancelListen()

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv, listenCtx)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
