package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"storefront/internal/app"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/mail"
	"storefront/internal/metrics"
	"storefront/internal/repositories"
	"storefront/internal/storage"
	"storefront/pkg/rabbitmq"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Store ---
	store, err := repositories.OpenStore(ctx, repositories.StoreConfig{
		Driver:        cfg.StoreDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	shutdownOps := map[string]gfshutdown.Operation{
		"store": store.Close,
	}

	// --- Product list cache ---
	var productCache cache.ProductListCache
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		redisCache := cache.NewRedisProductCache(rdb, "storefront:", cfg.CacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, product list cache disabled", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			productCache = redisCache
			shutdownOps["redis"] = func(context.Context) error { return rdb.Close() }
		}
	}

	// --- Order events ---
	deps := app.Deps{
		Logger:    logger,
		AccessLog: os.Stdout,
		Store:     store,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Hasher:    auth.NewPasswordHasher(cfg.BcryptCost),
		Cache:     productCache,
		Mailer:    mail.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.MailFrom, logger),
		Metrics:   metrics.New(),
	}
	if cfg.BrokerEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		if err := mqClient.ConsumeOrderEvents(ctx, rabbitmq.LogOrderEvent(logger)); err != nil {
			logger.Error("failed to start order event consumer", "error", err)
			os.Exit(1)
		}
		deps.Publisher = mqClient
		shutdownOps["rabbitmq"] = func(context.Context) error {
			cancel()
			return mqClient.Close()
		}
	}

	// --- Uploads ---
	images, err := storage.NewDiskImageStore(cfg.UploadDir, app.UploadsPath)
	if err != nil {
		logger.Error("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	deps.Images = images

	// --- HTTP ---
	server, err := app.NewApp(deps)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	shutdownOps["http"] = server.ShutdownWithContext

	go func() {
		logger.Info("starting server", "addr", cfg.AppPort, "env", cfg.Env)
		if err := server.Listen(cfg.AppPort); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, shutdownOps)
	exitCode := <-wait
	logger.Info("application exited", "code", exitCode)
	os.Exit(exitCode)
}
