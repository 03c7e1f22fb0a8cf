package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/mymmrac/telego"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"gem_market/internal/config"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/infrastructure/notifier"
	"gem_market/internal/infrastructure/persistence"
	"gem_market/internal/infrastructure/queue"
	"gem_market/internal/infrastructure/telemetry"
	"gem_market/internal/server"
	"gem_market/internal/transport/bot"
	"gem_market/internal/transport/bot/handler"
	"gem_market/internal/worker"
	"gem_market/pkg/application/connectors"
	"gem_market/pkg/application/modules"
	"gem_market/pkg/httpx"
	"gem_market/pkg/logx"
	"gem_market/pkg/middlewarex"
	"gem_market/pkg/probe"
)

func Run(ctx context.Context, cfg config.Config) error { //nolint:funlen
	log := logger(ctx)
	g, ctx := errgroup.WithContext(ctx)

	// База
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	checks := map[string]probe.Check{"postgres": pg.Ping}

	svc := deal.NewService(
		persistence.NewDealRepository(db),
		persistence.NewUnitRepository(db),
		persistence.NewExclusionRepository(db),
		persistence.NewSequenceRepository(db),
		persistence.NewCompanyRepository(db),
		persistence.NewCartRepository(db),
	).
		WithSettings(cfg.Market.Settings()).
		WithRecorder(telemetry.NewRecorder(prometheus.DefaultRegisterer))

	masker := logx.NewSensitiveDataMasker()

	// Уведомления
	var tgBot *notifier.TelegramBot

	if cfg.Bot.Enabled() {
		var (
			opts []telego.BotOption
			err  error
		)

		if cfg.App.Debug {
			opts = append(opts, telego.WithHTTPClient(&http.Client{
				Transport: httpx.NewLoggingRoundTripper(
					http.DefaultTransport,
					httpx.WithSensitiveDataMasker(masker),
					httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
					httpx.WithLevel(slog.LevelDebug),
				),
			}))
		}

		tgBot, err = notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID, opts...)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}
	}

	switch {
	case cfg.Redis.Enabled():
		rc := &connectors.Redis{
			Address:        cfg.Redis.Address,
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			DatabaseNumber: cfg.Redis.DB,
			PoolSize:       cfg.Redis.PoolSize,
		}
		defer rc.Close(ctx)

		checks["redis"] = rc.Ping

		client := asynq.NewClientFromRedisClient(rc.Client(ctx))
		svc.WithNotifier(queue.NewPublisher(client, cfg.Redis.Queue))

		if tgBot != nil {
			modules.AsynqServer{
				RedisUsername: cfg.Redis.Username,
				RedisPassword: cfg.Redis.Password,
				RedisAddress:  cfg.Redis.Address,
				RedisDB:       cfg.Redis.DB,
				Concurrency:   cfg.Redis.Concurrency,
			}.Run(ctx, g, modules.AsynqQueues{cfg.Redis.Queue: 1}, modules.AsynqHandler{
				Pattern: queue.TypeDealEvent,
				Handle:  worker.NewNotificationHandler(tgBot).Handle,
			})
		} else {
			log.Warn("deal events are queued but nobody delivers them", slog.String("queue", cfg.Redis.Queue))
		}
	case tgBot != nil:
		svc.WithNotifier(tgBot)
	default:
		log.Info("notifications disabled")
	}

	// Сверка связок
	reconciler := worker.NewPairingReconciler(svc).
		WithInterval(cfg.Reconciler.Interval).
		WithRateControl(cfg.Reconciler.RequestInterval)

	if cfg.Reconciler.Enabled {
		if err := reconciler.Start(ctx); err != nil {
			return fmt.Errorf("reconciler.Start: %w", err)
		}
		defer reconciler.Stop()
	}

	// Админ-бот
	if tgBot != nil && cfg.Bot.AdminID != 0 {
		operator, err := operatorIdentity(cfg.Bot.OperatorID)
		if err != nil {
			return err
		}

		adminBot, err := bot.New(ctx, tgBot.Bot(), cfg.Bot.AdminID, handler.New(svc, reconciler, operator))
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		g.Go(func() error {
			return adminBot.Run(ctx)
		})
	}

	// HTTP
	router := chi.NewRouter()
	router.Use(middlewarex.TraceID, middlewarex.Logger, middlewarex.Recovery)

	if cfg.App.Debug {
		router.Use(
			middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
			middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		)
	}

	server.NewServer(server.NewDealServer(svc)).RegisterRoutes(router)

	modules.HTTPServer{
		ListenAddress:     cfg.HTTP.ListenAddress,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, router)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		Checks:        checks,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricsListenAddress,
		Gatherer:      prometheus.DefaultGatherer,
	}.Run(ctx, g)

	log.Info("application started", slog.String("name", cfg.App.Name), slog.String("version", cfg.App.Version))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}

func operatorIdentity(raw string) (entity.Identity, error) {
	operator := entity.Identity{Privileged: true}

	if raw == "" {
		return operator, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("BOT_OPERATOR_ID: %w", err)
	}

	operator.UserID = id

	return operator, nil
}
