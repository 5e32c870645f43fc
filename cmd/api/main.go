package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/faya/preorder-api/internal/api/http"
	"github.com/faya/preorder-api/internal/api/http/handlers"
	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/cache"
	"github.com/faya/preorder-api/internal/config"
	"github.com/faya/preorder-api/internal/events"
	"github.com/faya/preorder-api/internal/observability"
	"github.com/faya/preorder-api/internal/persistence"
	"github.com/faya/preorder-api/internal/repository"
	"github.com/faya/preorder-api/internal/service"
	"github.com/faya/preorder-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(zap.String("service", cfg.App.Name))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	policy, err := auth.LoadPolicy(cfg.HTTP.AccessPolicyFile)
	if err != nil {
		logger.Fatal("failed to load access policy", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	userRepo := repository.NewUserRepository(pg.Pool)
	foodRepo := repository.NewFoodItemRepository(pg.Pool)
	orderRepo := repository.NewOrderRepository(pg.Pool)

	authService := service.NewAuthService(service.AuthDependencies{
		Users:      userRepo,
		Codec:      codec,
		Hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Dispatcher: dispatcher,
		Logger:     logger,
		AccessTTL:  cfg.Auth.AccessTokenTTL(),
		RefreshTTL: cfg.Auth.RefreshTokenTTL(),
	})
	menuCache := cache.NewMenuCache(redis.Client, cfg.Cache.MenuTTL())
	// Listings cached by a previous process may predate migrations or menu edits.
	if err := menuCache.Invalidate(ctx); err != nil {
		logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
	menuService := service.NewMenuService(foodRepo, menuCache, logger)
	orderService := service.NewOrderService(orderRepo, foodRepo, dispatcher, logger)

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	app := httptransport.NewApp(httptransport.AppConfig{
		Name: cfg.App.Name,
		Middleware: httptransport.MiddlewareConfig{
			Logger:      logger,
			Metrics:     metrics,
			Translator:  httptransport.NewTranslator(logger, metrics, cfg.Auth.SensitiveFields),
			Auth:        auth.NewMiddleware(codec, auth.NewUserIdentityStore(userRepo), logger, metrics, cfg.Auth.IdentityLookupTimeout()),
			Policy:      policy,
			EntryPoint:  auth.NewEntryPoint(logger, metrics),
			TraceHeader: cfg.HTTP.TraceHeader,
			Timeout:     cfg.App.RequestTimeout(),
			CORS: httptransport.CORSConfig{
				AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
				MaxAgeSeconds:  cfg.HTTP.CORSMaxAgeSeconds,
			},
		},
		Routes: httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Env, logger, pg, redis),
			Auth:    handlers.NewAuthHandler(authService),
			Menu:    handlers.NewMenuHandler(menuService),
			Orders:  handlers.NewOrdersHandler(orderService),
			Metrics: metrics.Handler(),
		},
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
