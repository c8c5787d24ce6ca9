package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mygeone2/quotes-fake-api/internal/adapters/cache"
	"github.com/mygeone2/quotes-fake-api/internal/adapters/events"
	v1 "github.com/mygeone2/quotes-fake-api/internal/adapters/handler/http/v1"
	"github.com/mygeone2/quotes-fake-api/internal/adapters/repository/sqlstore"
	"github.com/mygeone2/quotes-fake-api/internal/config"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/health"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/orders"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/quotes"
	"github.com/mygeone2/quotes-fake-api/internal/utils"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg         *config.Config
	router      *http.ServeMux
	store       *sqlstore.Store
	redisClient *redis.Client
	httpServer  *http.Server

	// Optional backends, nil when not configured
	issuedCache port.IssuedQuoteCache
	events      port.OrderEventPublisher

	// Services
	quoteService  port.QuoteService
	orderService  port.OrderService
	healthService port.HealthService

	// For graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (app *App) Initialize() error {
	slog.Info("Initializing application...")
	app.router = http.NewServeMux()

	// Database connection
	store, err := sqlstore.Open(&app.cfg.Repository)
	if err != nil {
		slog.Error("Connection to database failed", "error", err)
		return err
	}
	app.store = store
	slog.Info("Database connected successfully", "driver", store.Driver())

	if err := app.prepareSchema(); err != nil {
		return err
	}

	app.connectRedis()
	app.connectEvents()

	// Services
	app.quoteService = quotes.NewQuoteService(app.store.Quotes(), app.issuedCache, app.cfg.App.QuoteMode)
	app.orderService = orders.NewOrderService(app.store.Orders(), app.store.Quotes(), app.events)
	app.healthService = health.NewHealthService(app.store.DB(), app.issuedCache, health.Details{
		DBDriver:      app.store.Driver(),
		QuoteMode:     app.quoteService.Mode(),
		EventsEnabled: app.events != nil,
	})

	// Handlers
	quoteHandler := v1.NewQuoteHandler(app.quoteService)
	orderHandler := v1.NewOrderHandler(app.orderService)
	streamHandler := v1.NewStreamHandler(app.quoteService, utils.MustParsePeriod(app.cfg.Stream.Interval))
	healthHandler := v1.NewHealthHandler(app.healthService)

	v1.SetQuoteRoutes(app.router, quoteHandler, orderHandler, streamHandler, healthHandler)
	v1.SetDebugRoutes(app.router, v1.NewDebugHandler(app.issuedCache))

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.App.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the app context is cancelled
		BaseContext: func(net.Listener) context.Context { return app.ctx },
	}

	slog.Info("Application initialized successfully", "quote_mode", app.quoteService.Mode())
	return nil
}

// prepareSchema creates the tables and inserts the starter quote on an empty store
func (app *App) prepareSchema() error {
	ctx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	if err := app.store.Migrate(ctx); err != nil {
		slog.Error("Schema migration failed", "error", err)
		return err
	}

	seeded, id, err := app.store.Quotes().SeedIfEmpty(ctx, time.Now())
	if err != nil {
		slog.Error("Seeding quotes failed", "error", err)
		return err
	}
	if seeded {
		slog.Info("Seeded initial quote", "id", id)
	}
	return nil
}

// connectRedis enables the issued quote log. A failed ping is not fatal.
func (app *App) connectRedis() {
	if app.cfg.Cache.RedisHost == "" {
		slog.Info("Redis not configured, issued quote log disabled")
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", app.cfg.Cache.RedisHost, app.cfg.Cache.RedisPort),
		Password:     app.cfg.Cache.RedisPassword,
		DB:           app.cfg.Cache.RedisDB,
		PoolSize:     app.cfg.Cache.PoolSize,
		MinIdleConns: app.cfg.Cache.MinIdleConns,
		DialTimeout:  utils.MustParsePeriod(app.cfg.Cache.DialTimeout),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(app.ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, continuing without cache", "error", err)
		redisClient.Close()
		return
	}

	app.redisClient = redisClient
	app.issuedCache = cache.NewRedisAdapter(redisClient, utils.MustParsePeriod(app.cfg.Cache.IssuedTTL))
	slog.Info("Redis connected successfully")
}

func (app *App) connectEvents() {
	if len(app.cfg.Events.Brokers) == 0 {
		slog.Info("Kafka not configured, order events disabled")
		return
	}
	app.events = events.NewKafkaPublisher(app.cfg.Events.Brokers, app.cfg.Events.Topic)
	slog.Info("Order events enabled", "brokers", app.cfg.Events.Brokers, "topic", app.cfg.Events.Topic)
}

// Handler exposes the routed mux, mainly for tests
func (app *App) Handler() http.Handler {
	return app.router
}

// Run serves HTTP until Shutdown is called. Initialize must have succeeded.
func (app *App) Run() error {
	if app.httpServer == nil {
		return errors.New("server is not initialized")
	}

	slog.Info("Starting server", "port", app.cfg.App.Port)

	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	slog.Info("Shutting down application...")

	// Cancel context to stop open quote streams
	app.cancel()

	var errs []error
	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(ctx); err != nil {
			slog.Error("Failed to stop HTTP server", "error", err)
			errs = append(errs, err)
		}
	}

	if app.events != nil {
		if err := app.events.Close(); err != nil {
			slog.Error("Failed to close event publisher", "error", err)
			errs = append(errs, err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis", "error", err)
			errs = append(errs, err)
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
			errs = append(errs, err)
		}
	}

	slog.Info("Application shutdown complete")
	return errors.Join(errs...)
}
