package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avrorra/storebot/internal/domain"
	apperrors "github.com/avrorra/storebot/internal/errors"
)

// Service is the catalog facade the handlers use. Reads go through the
// cache when one is configured; every store call runs under the circuit
// breaker so a struggling database does not take the whole bot down
// with it.
type Service struct {
	store   Store
	cache   *Cache
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewService wires the store, optional cache and breaker together.
func NewService(store Store, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		cache:   cache,
		breaker: apperrors.NewCircuitBreaker(apperrors.BreakerConfig{}),
		log:     log,
	}
}

func (s *Service) call(fn func() error) error {
	err := s.breaker.Call(fn)
	if err == nil {
		return nil
	}
	if apperrors.IsCircuitOpen(err) {
		return apperrors.NewDatabaseError(err)
	}
	return err
}

// Categories lists all categories.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.call(func() error {
		var err error
		categories, err = s.store.Categories(ctx)
		return err
	})
	return categories, err
}

// CategoryByKey fetches one category.
func (s *Service) CategoryByKey(ctx context.Context, key string) (*domain.Category, error) {
	var category *domain.Category
	err := s.call(func() error {
		var err error
		category, err = s.store.CategoryByKey(ctx, key)
		return err
	})
	return category, err
}

// Products lists the products of a category.
func (s *Service) Products(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	var products []domain.Product
	err := s.call(func() error {
		var err error
		products, err = s.store.Products(ctx, categoryKey)
		return err
	})
	return products, err
}

// AllProducts lists every product, used by the admin panel and the
// cache warmer.
func (s *Service) AllProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.call(func() error {
		var err error
		products, err = s.store.AllProducts(ctx)
		return err
	})
	return products, err
}

// ProductByID fetches one product, cache first.
func (s *Service) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); err != nil {
		s.log.Warn("product cache read failed", slog.Int64("product_id", id), slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	var product *domain.Product
	err := s.call(func() error {
		var err error
		product, err = s.store.ProductByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.log.Warn("product cache write failed", slog.Int64("product_id", id), slog.Any("error", err))
	}

	return product, nil
}

// WarmProduct pushes a product into the cache. Used by the background
// cache warmer; failures only log.
func (s *Service) WarmProduct(ctx context.Context, product domain.Product) {
	if err := s.cache.SetProduct(ctx, &product); err != nil {
		s.log.Warn("product cache warm failed", slog.Int64("product_id", product.ID), slog.Any("error", err))
	}
}

// PriceLookup returns a cart price resolver bound to ctx. Unresolvable
// products report not-ok and are skipped by the cart total.
func (s *Service) PriceLookup(ctx context.Context) func(productID int64) (int64, bool) {
	return func(productID int64) (int64, bool) {
		product, err := s.ProductByID(ctx, productID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.log.Warn("price lookup failed", slog.Int64("product_id", productID), slog.Any("error", err))
			}
			return 0, false
		}
		return product.Price, true
	}
}

// AddCategory creates or renames a category under the same key.
func (s *Service) AddCategory(ctx context.Context, category domain.Category) error {
	return s.call(func() error { return s.store.AddCategory(ctx, category) })
}

// RenameCategory changes the display name of a category.
func (s *Service) RenameCategory(ctx context.Context, key, name string) error {
	return s.call(func() error { return s.store.RenameCategory(ctx, key, name) })
}

// DeleteCategory removes a category together with its products.
func (s *Service) DeleteCategory(ctx context.Context, key string) error {
	products, err := s.Products(ctx, key)
	if err != nil {
		return err
	}

	if err := s.call(func() error { return s.store.DeleteCategory(ctx, key) }); err != nil {
		return err
	}

	for _, p := range products {
		if err := s.cache.InvalidateProduct(ctx, p.ID); err != nil {
			s.log.Warn("cache invalidation failed", slog.Int64("product_id", p.ID), slog.Any("error", err))
		}
	}

	return nil
}

// AddProduct creates a product and returns its assigned ID.
func (s *Service) AddProduct(ctx context.Context, product domain.Product) (int64, error) {
	var id int64
	err := s.call(func() error {
		var err error
		id, err = s.store.AddProduct(ctx, product)
		return err
	})
	return id, err
}

// UpdateProduct saves changed product fields and drops the stale cache
// entry.
func (s *Service) UpdateProduct(ctx context.Context, product domain.Product) error {
	if err := s.call(func() error { return s.store.UpdateProduct(ctx, product) }); err != nil {
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, product.ID); err != nil {
		s.log.Warn("cache invalidation failed", slog.Int64("product_id", product.ID), slog.Any("error", err))
	}

	return nil
}

// DeleteProduct removes a product and its cache entry.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.call(func() error { return s.store.DeleteProduct(ctx, id) }); err != nil {
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.log.Warn("cache invalidation failed", slog.Int64("product_id", id), slog.Any("error", err))
	}

	return nil
}
