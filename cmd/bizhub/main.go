package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"bizhub/config"
	"bizhub/internal/delivery"
	"bizhub/internal/delivery/http"
	"bizhub/internal/delivery/http/middleware"
	"bizhub/internal/delivery/http/router/handler"
	"bizhub/internal/domain/service"
	"bizhub/internal/infra/auth"
	"bizhub/internal/infra/cache"
	"bizhub/internal/infra/changefeed"
	"bizhub/internal/infra/events"
	logs "bizhub/internal/infra/log"
	"bizhub/internal/infra/persistence/postgres"
	"bizhub/internal/infra/pubsub"
	"bizhub/internal/infra/qrcode"
	"bizhub/internal/infra/storage"
	"bizhub/internal/usecase/impl"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			rehydrateSessionCache,
			startCacheSweeper,
			bindCacheInvalidation,
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
		cache.NewRedisClient,
		storage.New,
	)
}

func injectRepo() fx.Option {
	// Every service reaches the repositories through the transaction
	// manager's factory, so only the manager itself is provided.
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			events.NewSessionBus,
			changefeed.NewAMQPPublisher,
			changefeed.NewAMQPConsumer,
			pubsub.NewEventPublisher,
			newQueryCache,
			cache.NewInvalidator,
			newQRCodeService,
			newPushSender,
		),
	)
}

// newQueryCache builds the mirrored query cache: a process-local TTL cache
// whose SESSION tier is copied into Redis so restarts keep signed-in state.
func newQueryCache(client *redis.Client, logger *slog.Logger) (*cache.MirroredCache, service.QueryCache) {
	mirror := cache.NewSessionMirror(client, logger)
	mirrored := cache.NewMirroredCache(cache.NewMemoryCache(logger), mirror)

	return mirrored, mirrored
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// newPushSender returns no sender for the API process. Push delivery runs in
// the worker; here Notify only queues dispatch events.
func newPushSender() service.PushSender {
	return nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewBusinessService,
			impl.NewInvitationService,
			impl.NewNotificationService,
			impl.NewBillingService,
			impl.NewCatalogService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewBusinessHandler,
			handler.NewInvitationHandler,
			handler.NewNotificationHandler,
			handler.NewBillingHandler,
			handler.NewCatalogHandler,
			handler.NewCacheHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// rehydrateSessionCache restores mirrored SESSION entries before the server
// accepts requests. A cold mirror is not an error.
func rehydrateSessionCache(lc fx.Lifecycle, mirrored *cache.MirroredCache, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			restored, err := mirrored.Rehydrate(ctx)
			if err != nil {
				logger.Warn("session cache rehydration failed", slog.Any("error", err))

				return nil
			}
			logger.Info("session cache rehydrated", slog.Int("entries", restored))

			return nil
		},
	})
}

// startCacheSweeper runs the background GC loop that evicts expired entries
// per tier, on the configured interval.
func startCacheSweeper(lc fx.Lifecycle, cfg *config.Config, mirrored *cache.MirroredCache) {
	var interval time.Duration
	if cfg.Cache != nil {
		interval = cfg.Cache.SweepInterval
	}

	sweepCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go mirrored.Run(sweepCtx, interval)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}

// bindCacheInvalidation subscribes the invalidator to the session bus and
// starts the change-feed consumer loop.
func bindCacheInvalidation(
	lc fx.Lifecycle,
	inv *cache.Invalidator,
	bus service.SessionEventBus,
	consumer service.ChangeFeedConsumer,
	logger *slog.Logger,
) {
	inv.BindSessionBus(bus)

	consumeCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := consumer.Consume(consumeCtx, func(event *service.ChangeEvent) {
					inv.OnChangeEvent(consumeCtx, event)
				})
				if err != nil && consumeCtx.Err() == nil {
					logger.Error("change feed consumer stopped", slog.Any("error", err))
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return consumer.Close()
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
