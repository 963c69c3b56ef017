// Package server wires the CredHex backend together: PostgreSQL for accounts,
// S3 for certificate objects, the token denylist, the gRPC API and the
// operational HTTP endpoints. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/credhex/internal/logging"
	"github.com/dmitrijs2005/credhex/internal/server/config"
	"github.com/dmitrijs2005/credhex/internal/server/httpapi"
	"github.com/dmitrijs2005/credhex/internal/server/metrics"
	"github.com/dmitrijs2005/credhex/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credhex/internal/server/revocation"
	"github.com/dmitrijs2005/credhex/internal/server/services"
	"github.com/dmitrijs2005/credhex/internal/server/storage"

	gs "github.com/dmitrijs2005/credhex/internal/server/grpc"
)

// purgeInterval is how often expired refresh tokens are deleted.
const purgeInterval = time.Hour

var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	revoked      revocation.Store
	metrics      *metrics.Metrics
	userService  *services.UserService
	vaultService *services.VaultService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	revoked, err := newRevocationStore(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	store, err := storage.NewS3Store(ctx, c)
	if err != nil {
		db.Close()
		revoked.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Warn(ctx, "bucket check failed, continuing", "bucket", c.S3Bucket, "error", err)
	}

	m := metrics.New()

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		revoked:      revoked,
		metrics:      m,
		userService:  services.NewUserService(db, rm, revoked, c, logger),
		vaultService: services.NewVaultService(store, m, logger, c.DownloadURLTTL),
	}, nil
}

func newRevocationStore(ctx context.Context, c *config.Config, logger logging.Logger) (revocation.Store, error) {
	if c.RedisURL == "" {
		logger.Warn(ctx, "redis is not configured, revoked tokens are kept in memory")
		return revocation.NewMemoryStore(), nil
	}
	s, err := revocation.NewRedisStore(ctx, c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	return s, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.vaultService,
		app.revoked, app.metrics, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	checks := map[string]httpapi.Check{
		"database": app.db.PingContext,
	}
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(app.metrics.Registry(), checks), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeExpiredTokens runs purge every interval until ctx is done.
func purgeExpiredTokens(ctx context.Context, interval time.Duration, logger logging.Logger,
	purge func(context.Context) (int64, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Error(ctx, "refresh token purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		purgeExpiredTokens(ctx, purgeInterval, app.logger, app.userService.PurgeExpiredTokens)
	}()

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	if err := app.revoked.Close(); err != nil {
		app.logger.Error(ctx, "revocation store close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
