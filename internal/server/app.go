// Package server initializes and runs the authentication server: it opens the
// database, runs migrations, loads the signing keys, wires the services into
// the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/auth"
	"github.com/jrafaels/test-fauth/internal/server/config"
	"github.com/jrafaels/test-fauth/internal/server/httpapi"
	"github.com/jrafaels/test-fauth/internal/server/notifications"
	"github.com/jrafaels/test-fauth/internal/server/repositories/repomanager"
	"github.com/jrafaels/test-fauth/internal/server/repositories/revokedtokens"
	"github.com/jrafaels/test-fauth/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// ledgerSweepInterval is how often expired revocation entries are purged.
// A revoked token past its own expiry is rejected by validation anyway, so
// the sweep only has to keep the table from growing without bound.
const ledgerSweepInterval = time.Hour

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	ledger        revokedtokens.Repository
	sweepInterval time.Duration
	httpServer    *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	accessKeys, err := auth.LoadKeyPair(cfg.AccessPrivateKeyPath, cfg.AccessPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("access key pair: %w", err)
	}
	refreshKeys, err := auth.LoadKeyPair(cfg.RefreshPrivateKeyPath, cfg.RefreshPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("refresh key pair: %w", err)
	}

	var ledger revokedtokens.Repository
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ledger = revokedtokens.NewRedisRepository(client)
	} else {
		ledger = m.RevokedTokens(db)
	}

	authority := auth.NewAuthority(accessKeys, refreshKeys,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration, ledger)

	passwords := services.NewPasswordService(db, m, cfg.TemporaryPasswordValidityDuration)
	authService := services.NewAuthService(db, m, passwords, authority, logger)
	userService := services.NewUserService(db, m, passwords, logger)

	var dispatcher notifications.Dispatcher = notifications.NopDispatcher{}
	if cfg.NotificationEndpoint != "" {
		dispatcher = notifications.NewHTTPDispatcher(cfg.NotificationEndpoint, notifications.Paths{
			Welcome: cfg.NotificationWelcomePath,
			Recover: cfg.NotificationRecoverPath,
			Reset:   cfg.NotificationResetPath,
		}, logger)
	}

	api := httpapi.NewServer(authService, authority, userService, dispatcher, logger)

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		repomanager:   m,
		ledger:        ledger,
		sweepInterval: ledgerSweepInterval,
		httpServer: &http.Server{
			Addr:    cfg.EndpointAddrHTTP,
			Handler: api.Handler(),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepExpiredTokens periodically purges revocation entries whose tokens have
// expired on their own. The Redis ledger handles this with per-entry TTLs, so
// its DeleteExpired is a no-op.
func (app *App) sweepExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(app.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.ledger.DeleteExpired(ctx, time.Now())
			if err != nil {
				app.logger.Error(ctx, "revoked token sweep", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "revoked token sweep", "deleted", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweepExpiredTokens(ctx)
	}()

	<-ctx.Done()
	app.logger.Info(context.Background(), "Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http server shutdown", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err.Error())
	}
	return nil
}
