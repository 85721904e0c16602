// Package server wires configuration, storage, the auth service and the
// network listeners together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/rest"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/sessionkeeper/internal/server/grpc"
)

const healthCheckInterval = 15 * time.Second

// App owns the server's store, services and listeners for one run.
type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	codec   *auth.Codec
	service *services.AuthService
}

// NewApp validates c, opens the configured store and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, c.Env, c.LogLevel)

	repos, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	codec := auth.NewCodec(
		[]byte(c.AccessSecret), []byte(c.RefreshSecret),
		c.AccessTokenTTL.Duration, c.RefreshTokenTTL.Duration,
	)
	svc := services.NewAuthService(repos, codec, logger, services.WithBcryptCost(c.BcryptCost))

	return &App{config: c, logger: logger, repos: repos, codec: codec, service: svc}, nil
}

func openStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageDriver {
	case repomanager.DriverMemory, "":
		return repomanager.NewMemoryRepositoryManager(), nil
	case repomanager.DriverPostgres:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	case repomanager.DriverMongo:
		return repomanager.OpenMongo(ctx, c.MongoURI, c.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
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

func (app *App) routerConfig() rest.RouterConfig {
	return rest.RouterConfig{
		Service: app.service,
		Codec:   app.codec,
		Logger:  app.logger,
		Cookie: rest.CookiePolicy{
			Secure: app.config.IsProduction(),
			MaxAge: app.config.RefreshTokenTTL.Duration,
		},
		CORSOrigin: app.config.CORSOrigin,
		Store:      app.repos,
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, rest.NewRouter(app.routerConfig()), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.repos, healthCheckInterval, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env, "storage", app.config.StorageDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.service.RunPurger(ctx, app.config.PurgeInterval.Duration)
	}()

	wg.Wait()

	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
