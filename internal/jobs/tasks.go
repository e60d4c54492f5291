package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/avrorra/storebot/internal/catalog"
	"github.com/avrorra/storebot/internal/session"
)

// SessionSweep evicts sessions idle past ttl. Users mid-checkout are
// never swept.
func SessionSweep(registry *session.MemoryRegistry, ttl, interval time.Duration, log *slog.Logger) Job {
	if log == nil {
		log = slog.Default()
	}

	return Job{
		Name:     "session_sweep",
		Interval: interval,
		Fn: func(ctx context.Context) error {
			if evicted := registry.Sweep(ttl); evicted > 0 {
				log.Info("idle sessions evicted", slog.Int("count", evicted))
			}
			return nil
		},
	}
}

// CacheWarm reloads the full product list through the catalog service,
// refreshing the Redis cache so user-facing reads stay hot.
func CacheWarm(service *catalog.Service, interval time.Duration, log *slog.Logger) Job {
	if log == nil {
		log = slog.Default()
	}

	return Job{
		Name:     "catalog_cache_warm",
		Interval: interval,
		Fn: func(ctx context.Context) error {
			products, err := service.AllProducts(ctx)
			if err != nil {
				return err
			}

			for _, product := range products {
				service.WarmProduct(ctx, product)
			}

			log.Debug("catalog cache warmed", slog.Int("products", len(products)))
			return nil
		},
	}
}
