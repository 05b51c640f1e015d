// Package server wires the backend together: configuration, PostgreSQL,
// Redis, NATS, tracing and the gRPC endpoint, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server/config"
	"github.com/dmitrijs2005/devfeed/internal/server/events"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devfeed/internal/server/services"
	"github.com/dmitrijs2005/devfeed/internal/server/telemetry"
	"github.com/dmitrijs2005/devfeed/internal/server/tokens"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/devfeed/internal/server/grpc"
)

const serviceName = "devfeed-server"

var (
	openDB         = openPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
	natsConnect    = nats.Connect
)

// openPostgres returns a pool whose queries are traced through otelpgx.
func openPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.Tracer = otelpgx.NewTracer()
	return stdlib.OpenDB(*cfg), nil
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	rdb            *redis.Client
	nc             *nats.Conn
	server         *gs.GRPCServer
	shutdownTracer telemetry.ShutdownFunc
}

// NewApp connects every backing service. Redis, NATS and the trace
// collector are optional: an empty address selects the in-process
// fallback. Whatever was opened before a failure is closed again.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (_ *App, err error) {
	a := &App{config: c, logger: l}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.shutdownTracer, err = telemetry.InitTracer(ctx, c.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	a.db, err = openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := newRepoManager()
	if err = rm.RunMigrations(ctx, a.db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var store tokens.Store
	if c.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err = redisotel.InstrumentTracing(a.rdb); err != nil {
			return nil, fmt.Errorf("redis instrumentation error: %w", err)
		}
		if err = a.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect error: %w", err)
		}
		store = tokens.NewRedisStore(a.rdb)
	} else {
		l.Warn(ctx, "no redis address, refresh tokens are kept in memory")
		store = tokens.NewMemoryStore()
	}

	var bus events.Bus
	if c.NatsURL != "" {
		a.nc, err = natsConnect(c.NatsURL, nats.Name(serviceName))
		if err != nil {
			return nil, fmt.Errorf("nats connect error: %w", err)
		}
		bus = events.NewNATSBus(a.nc, l)
	} else {
		l.Warn(ctx, "no NATS url, document changes stay in this process")
		bus = events.NewMemoryBus(l)
	}

	us := services.NewUserService(a.db, rm, store, nil, services.NewLogMailer(l), c, l)
	ds := services.NewDocumentService(a.db, rm, bus, l)
	ss := services.NewStorageService(c)

	a.server = gs.NewGRPCServer(c.EndpointAddrGRPC, l, us, ds, ss)
	return a, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx ends or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
}

// Close releases the connections in reverse order of opening.
func (app *App) Close() error {
	var errs []error
	if app.nc != nil {
		app.nc.Close()
	}
	if app.rdb != nil {
		errs = append(errs, app.rdb.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, app.shutdownTracer(ctx))
	}
	return errors.Join(errs...)
}
