package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"bizhub/config"
	"bizhub/internal/delivery"
	"bizhub/internal/delivery/worker"
	"bizhub/internal/delivery/worker/handler"
	"bizhub/internal/domain/service"
	"bizhub/internal/infra/cache"
	"bizhub/internal/infra/changefeed"
	logs "bizhub/internal/infra/log"
	"bizhub/internal/infra/notification"
	"bizhub/internal/infra/persistence/postgres"
	"bizhub/internal/infra/pubsub"
	"bizhub/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startCacheSweeper,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			changefeed.NewAMQPPublisher,
			pubsub.NewEventPublisher,
			newQueryCache,
			newPushSender,
		),
	)
}

// newQueryCache provides a plain in-memory cache. The worker has no HTTP
// readers, so there is nothing to mirror.
func newQueryCache(logger *slog.Logger) (*cache.MemoryCache, service.QueryCache) {
	memory := cache.NewMemoryCache(logger)

	return memory, memory
}

// startCacheSweeper runs the background GC loop that evicts expired entries
// per tier, on the configured interval.
func startCacheSweeper(lc fx.Lifecycle, cfg *config.Config, memory *cache.MemoryCache) {
	var interval time.Duration
	if cfg.Cache != nil {
		interval = cfg.Cache.SweepInterval
	}

	sweepCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go memory.Run(sweepCtx, interval)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}

// newPushSender creates the Firebase sender the dispatch path fans out with.
func newPushSender(ctx context.Context, cfg *config.Config) (service.PushSender, error) {
	if cfg.Firebase == nil {
		return nil, errors.New("firebase configuration is required for the push worker")
	}

	return notification.NewFirebaseSender(ctx, cfg.Firebase.CredentialsPath)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewNotificationService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
