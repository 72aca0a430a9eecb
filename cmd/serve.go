package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gamewish/internal/database"
	"gamewish/internal/repositories"
	"gamewish/internal/server"
	"gamewish/internal/services"
	"gamewish/pkg/cache"
	"gamewish/pkg/rabbitmq"
	"gamewish/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	memory        bool
	consumeEvents bool
}

func newServeCmd(rt *runtime) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), rt, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "keep all data in memory instead of the database")
	cmd.Flags().BoolVar(&opts.consumeEvents, "consume-events", false, "log events read back from the event queue")
	return cmd
}

// closers run in reverse order on shutdown.
type closers []func()

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// buildApp wires the stores, optional backends and services into the app.
func buildApp(ctx context.Context, rt *runtime, opts serveOptions) (*fiber.App, closers, error) {
	var (
		cleanup  closers
		checks   = map[string]server.HealthCheck{}
		users    repositories.UserRepository
		games    repositories.GameRepository
		wishlist repositories.WishlistRepository
	)

	if opts.memory {
		mem := repositories.NewMemoryGameRepository()
		users = repositories.NewMemoryUserRepository()
		games = mem
		wishlist = repositories.NewMemoryWishlistRepository(mem)
		rt.log.Warn("using in-memory stores; data is lost on exit")
	} else {
		db, err := database.Open(rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN, rt.log)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = append(cleanup, func() { _ = database.Close(db) })
		if err := database.Migrate(db); err != nil {
			cleanup.run()
			return nil, nil, err
		}
		users = repositories.NewGORMUserRepository(db)
		games = repositories.NewGORMGameRepository(db)
		wishlist = repositories.NewGORMWishlistRepository(db)
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	catalog, closeCache, err := openCatalogCache(ctx, rt)
	if err != nil {
		cleanup.run()
		return nil, nil, err
	}
	cleanup = append(cleanup, closeCache)
	if rc, ok := catalog.(*cache.CatalogCache); ok {
		checks["redis"] = rc.Ping
	}

	var events services.EventPublisher
	if rt.cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: rt.cfg.RabbitMQURL}, rt.log)
		if err != nil {
			cleanup.run()
			return nil, nil, err
		}
		cleanup = append(cleanup, func() {
			if err := mq.Close(); err != nil {
				rt.log.Warn("error closing RabbitMQ client", zap.Error(err))
			}
		})
		events = mq
		checks["rabbitmq"] = mq.Ping

		if opts.consumeEvents {
			if err := mq.ConsumeEvents(rabbitmq.LogEvents(rt.log)); err != nil {
				rt.log.Error("failed to start RabbitMQ consumer", zap.Error(err))
			}
		}
	}

	var avatars services.AvatarStore
	if rt.cfg.MinioEndpoint != "" {
		store, err := storage.NewAvatarStore(ctx, storage.Config{
			Endpoint:  rt.cfg.MinioEndpoint,
			AccessKey: rt.cfg.MinioAccessKey,
			SecretKey: rt.cfg.MinioSecretKey,
			Bucket:    rt.cfg.MinioBucket,
			UseSSL:    rt.cfg.MinioUseSSL,
			PublicURL: rt.cfg.MinioPublicURL,
		}, rt.log)
		if err != nil {
			cleanup.run()
			return nil, nil, err
		}
		avatars = store
		checks["minio"] = store.Ping
	}

	tokens := services.NewTokenIssuer(rt.cfg.JWTSecret, rt.cfg.TokenTTL)
	app := server.NewApp(server.Deps{
		Auth:       services.NewAuthService(users, services.NewBcryptHasher(rt.cfg.BcryptCost), tokens, events, rt.log),
		Profiles:   services.NewProfileService(users, avatars, rt.log),
		Games:      services.NewGameService(games, wishlist, users, catalog, events, rt.log),
		Log:        rt.log,
		Checks:     checks,
		RequestLog: true,
	})
	return app, cleanup, nil
}

// openCatalogCache connects to Redis when configured. The returned cache is
// nil when caching is disabled.
func openCatalogCache(ctx context.Context, rt *runtime) (services.CatalogCache, func(), error) {
	if rt.cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client, err := cache.Connect(ctx, cache.Config{
		Addr:     rt.cfg.RedisAddr,
		Password: rt.cfg.RedisPassword,
		DB:       rt.cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	rt.log.Info("catalog cache enabled", zap.String("addr", rt.cfg.RedisAddr), zap.Duration("ttl", rt.cfg.CatalogCacheTTL))
	return cache.NewCatalogCache(client, rt.cfg.CatalogCacheTTL), func() { _ = client.Close() }, nil
}

func serve(ctx context.Context, rt *runtime, opts serveOptions) error {
	app, cleanup, err := buildApp(ctx, rt, opts)
	if err != nil {
		return err
	}
	defer cleanup.run()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		rt.log.Info("starting server", zap.String("addr", rt.cfg.AppPort))
		listenErr <- app.Listen(rt.cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}

	rt.log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		rt.log.Error("error during Fiber shutdown", zap.Error(err))
	}
	rt.log.Info("server gracefully stopped")
	return nil
}
