package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vendora/vendora/internal/admins"
	"github.com/vendora/vendora/internal/app"
	"github.com/vendora/vendora/internal/auth"
	"github.com/vendora/vendora/internal/news"
	"github.com/vendora/vendora/internal/observability"
	"github.com/vendora/vendora/internal/platform/cache"
	"github.com/vendora/vendora/internal/platform/db"
	"github.com/vendora/vendora/internal/policy"
	"github.com/vendora/vendora/internal/products"
	"github.com/vendora/vendora/internal/shared"
	"github.com/vendora/vendora/internal/stores"
	"github.com/vendora/vendora/internal/users"
	"github.com/vendora/vendora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "vendora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	directory := policy.NewDirectoryCache(usersService, redisClient, cfg.DirectoryCacheTTL)

	adminRegistry := admins.NewRegistry(dbpool)

	storesRepo := stores.NewRepository(dbpool)
	storesService := stores.NewService(storesRepo, directory)

	checker := policy.NewChecker(adminRegistry, directory, storesRepo, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	guard := policy.Guard{
		Checker:  checker,
		Logger:   logger,
		Denials:  jobClient,
		Observer: metrics,
	}

	newsRepo := news.NewRepository(dbpool)
	newsService := news.NewService(newsRepo)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo)

	loaders := policy.NewLoaderRegistry()
	loaders.Register(stores.EntityKind, storesService)
	loaders.Register(news.EntityKind, newsService)
	loaders.Register(products.EntityKind, productsService)

	usersHandler := users.NewHandler(logger, usersService, guard)
	storesHandler := stores.NewHandler(logger, storesService, guard, loaders)
	newsHandler := news.NewHandler(logger, newsService, guard, loaders)
	productsHandler := products.NewHandler(logger, productsService, guard, loaders)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		Principals:      usersService,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		StoresHandler:   storesHandler,
		ProductsHandler: productsHandler,
		NewsHandler:     newsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
