package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/domain"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if categories, ok := args.Get(0).([]domain.Category); ok {
		return categories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CategoryByKey(ctx context.Context, key string) (*domain.Category, error) {
	args := m.Called(ctx, key)
	if category, ok := args.Get(0).(*domain.Category); ok {
		return category, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) AddCategory(ctx context.Context, category domain.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockStore) RenameCategory(ctx context.Context, key, name string) error {
	return m.Called(ctx, key, name).Error(0)
}

func (m *mockStore) DeleteCategory(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Products(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	args := m.Called(ctx, categoryKey)
	if products, ok := args.Get(0).([]domain.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) AllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]domain.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*domain.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) AddProduct(ctx context.Context, product domain.Product) (int64, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpdateProduct(ctx context.Context, product domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockStore) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestServiceProductByIDWithoutCache(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, nil)

	want := &domain.Product{ID: 3, Name: "Эклер", Price: 150}
	store.On("ProductByID", mock.Anything, int64(3)).Return(want, nil).Once()

	got, err := svc.ProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestServiceProductByIDUsesCache(t *testing.T) {
	store := new(mockStore)
	cache, _ := newTestCache(t)
	svc := NewService(store, cache, nil)

	want := &domain.Product{ID: 3, Name: "Эклер", Price: 150}
	store.On("ProductByID", mock.Anything, int64(3)).Return(want, nil).Once()

	// First call hits the store and warms the cache.
	got, err := svc.ProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Second call is served from the cache, the store mock would fail
	// on an unexpected second call.
	got, err = svc.ProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestServiceUpdateProductInvalidatesCache(t *testing.T) {
	store := new(mockStore)
	cache, _ := newTestCache(t)
	svc := NewService(store, cache, nil)

	stale := &domain.Product{ID: 5, Name: "Старое имя", Price: 100}
	require.NoError(t, cache.SetProduct(context.Background(), stale))

	updated := domain.Product{ID: 5, Name: "Новое имя", Price: 120}
	store.On("UpdateProduct", mock.Anything, updated).Return(nil).Once()
	store.On("ProductByID", mock.Anything, int64(5)).Return(&updated, nil).Once()

	require.NoError(t, svc.UpdateProduct(context.Background(), updated))

	got, err := svc.ProductByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", got.Name)
	store.AssertExpectations(t)
}

func TestServicePriceLookupSkipsMissingProducts(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, nil)

	store.On("ProductByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1, Price: 100}, nil)
	store.On("ProductByID", mock.Anything, int64(2)).Return(nil, ErrNotFound)

	lookup := svc.PriceLookup(context.Background())

	price, ok := lookup(1)
	assert.True(t, ok)
	assert.Equal(t, int64(100), price)

	_, ok = lookup(2)
	assert.False(t, ok)
}
