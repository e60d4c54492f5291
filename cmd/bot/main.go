package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/lib/pq"

	"github.com/avrorra/storebot/internal/bot"
	"github.com/avrorra/storebot/internal/catalog"
	"github.com/avrorra/storebot/internal/database"
	"github.com/avrorra/storebot/internal/health"
	"github.com/avrorra/storebot/internal/i18n"
	"github.com/avrorra/storebot/internal/idempotency"
	"github.com/avrorra/storebot/internal/imagestore"
	"github.com/avrorra/storebot/internal/jobs"
	"github.com/avrorra/storebot/internal/lifecycle"
	"github.com/avrorra/storebot/internal/middleware"
	"github.com/avrorra/storebot/internal/ratelimit"
	"github.com/avrorra/storebot/internal/session"
	"github.com/avrorra/storebot/pkg/config"
	"github.com/avrorra/storebot/pkg/graceful"
	"github.com/avrorra/storebot/pkg/logger"
	"github.com/avrorra/storebot/pkg/metrics"
	redispkg "github.com/avrorra/storebot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			return
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	log.Info("starting storefront bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
	)

	db, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		return
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Catalog.MigrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		return
	}

	redisClient, err := redispkg.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		return
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("error closing redis", slog.Any("error", cerr))
			}
		}()
	}

	var cache *catalog.Cache
	if redisClient != nil {
		cache = catalog.NewCache(redisClient, cfg.Catalog.CacheTTL)
	}
	catalogSvc := catalog.NewService(catalog.NewStore(db, log), cache, log)

	i18nManager, err := i18n.Load(cfg.Bot.Language)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		return
	}
	translator := i18nManager.Translator(cfg.Bot.Language)

	images, err := imagestore.New(cfg.Catalog.ImageDir, log)
	if err != nil {
		log.Error("failed to init image store", slog.Any("error", err))
		return
	}

	registry := session.NewMemoryRegistry()

	watcher := config.NewWatcher(v, cfg.Limits, func(limits config.LimitsConfig) {
		log.Info("rate limits reloaded",
			slog.Bool("enabled", limits.Enabled),
			slog.Int("requests", limits.Requests),
			slog.Duration("window", limits.Window),
		)
	})
	rules := ratelimit.NewRules(watcher.Limits)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(redisClient, log),
			ratelimit.NewMemoryLimiter(log),
			log,
		)
	} else {
		limiter = ratelimit.NewMemoryLimiter(log)
	}
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, translator, log)

	var idempotencyManager idempotency.Manager
	if redisClient != nil {
		idempotencyManager = idempotency.NewManager(idempotency.NewRedisStore(redisClient, log), log)
	}

	b, err := bot.New(*cfg, log, registry, catalogSvc, translator, images, idempotencyManager, rateLimitMw)
	if err != nil {
		log.Error("failed to build bot", slog.Any("error", err))
		return
	}

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	probes := lifecycle.NewProbes(checker, log)

	opsServer := graceful.NewServer(cfg.Server.Port, opsHandler(log, probes), cfg.Server.ShutdownTimeout, log)
	go func() {
		if err := opsServer.ListenAndServe(ctx); err != nil {
			log.Error("ops server failed", slog.Any("error", err))
		}
	}()

	runner := jobs.NewRunner(log)
	runner.Register(jobs.SessionSweep(registry, cfg.Sessions.IdleTTL, cfg.Sessions.SweepInterval, log))
	runner.Register(jobs.CacheWarm(catalogSvc, cacheWarmInterval(cfg.Catalog.CacheTTL), log))
	go runner.Run(ctx)

	if redisClient != nil {
		go ratelimit.NewCleaner(redisClient, log, time.Hour).Run(ctx)
		go idempotency.NewCleaner(redisClient, log, time.Hour).Run(ctx)
	}

	go metrics.NewSessionCollector(registry).Run(ctx)

	go b.Start()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram_bot", func(context.Context) error {
		b.Stop()
		return nil
	})

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("storefront bot stopped")
}

// opsHandler assembles the operational HTTP surface: metrics plus the
// liveness and readiness probes.
func opsHandler(log *slog.Logger, probes *lifecycle.Probes) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", probeEndpoint(probes.Liveness))
	mux.HandleFunc("/readyz", probeEndpoint(probes.Readiness))

	return logger.Middleware(middleware.New(log)(mux))
}

func probeEndpoint(probe func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// cacheWarmInterval keeps the warmer a step ahead of cache expiry.
func cacheWarmInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}

	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}
