// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/voltgear/internal/account"
	"github.com/angelamos/voltgear/internal/activity"
	"github.com/angelamos/voltgear/internal/admin"
	"github.com/angelamos/voltgear/internal/cart"
	"github.com/angelamos/voltgear/internal/catalog"
	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/contact"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/health"
	"github.com/angelamos/voltgear/internal/kvstore"
	"github.com/angelamos/voltgear/internal/middleware"
	"github.com/angelamos/voltgear/internal/order"
	"github.com/angelamos/voltgear/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	backend, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	store := kvstore.New(backend, logger)
	logger.Info("document store opened", "driver", cfg.Store.Driver)

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, redisErr := redis.ParseURL(cfg.Redis.URL)
		if redisErr != nil {
			return redisErr
		}
		opts.PoolSize = cfg.Redis.PoolSize
		opts.MinIdleConns = cfg.Redis.MinIdleConns
		redisClient = redis.NewClient(opts)
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	if cfg.App.Environment != "production" {
		if _, statErr := os.Stat(cfg.Session.PrivateKeyPath); statErr != nil {
			if genErr := account.GenerateKeyPair(cfg.Session.PrivateKeyPath); genErr != nil {
				return genErr
			}
			logger.Info("generated development signing key",
				"path", cfg.Session.PrivateKeyPath,
			)
		}
	}

	tokens, err := account.NewTokenManager(cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session token manager initialized",
		"algorithm", "ES256",
		"key_id", tokens.KeyID(),
	)

	bus := event.NewBus()
	stream := event.NewStream(bus, logger)
	defer stream.Close()

	accounts, err := account.NewService(store, bus, cfg.Admin)
	if err != nil {
		return err
	}

	products, err := catalog.NewService()
	if err != nil {
		return err
	}

	carts := cart.NewManager(store, accounts, bus, cfg.Storefront.TaxRate, logger)
	defer carts.Close()

	activityLog := activity.NewLogger(store, accounts, accounts, bus, logger)
	contacts := contact.NewService(store, accounts)
	orders := order.NewService(store, carts, accounts, activityLog, bus, logger)

	accountHandler := account.NewHandler(accounts, tokens, activityLog)
	catalogHandler := catalog.NewHandler(products, accounts, activityLog)
	cartHandler := cart.NewHandler(carts, products)
	orderHandler := order.NewHandler(orders)
	contactHandler := contact.NewHandler(contacts)
	adminHandler := admin.NewHandler(store, accounts, orders, contacts, activityLog)

	checkers := []health.NamedChecker{
		{Name: "store", Checker: backend},
	}
	if redisClient != nil {
		checkers = append(checkers, health.NamedChecker{
			Name:    "redis",
			Checker: redisPinger{redisClient},
		})
	}
	healthHandler := health.NewHandler(checkers...)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", tokens.JWKSHandler())

	authenticator := middleware.Authenticator(tokens, accounts)
	optionalAuth := middleware.OptionalAuth(tokens, accounts)
	adminOnly := middleware.RequireAdmin

	// Checkout gets its own tighter bucket, keyed per account once the
	// optional auth middleware has resolved one.
	checkoutLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Limit:    middleware.PerSecond(1, 3),
		KeyFunc:  middleware.KeyByAccount,
		FailOpen: true,
	})

	router.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r, authenticator)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			catalogHandler.RegisterRoutes(r)
			cartHandler.RegisterRoutes(r)
			contactHandler.RegisterRoutes(r)
		})

		orderHandler.RegisterRoutes(
			r, authenticator, optionalAuth, checkoutLimiter.Handler)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		r.Get("/events", stream.ServeHTTP)
	})

	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if err := backend.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
