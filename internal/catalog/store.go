// Package catalog provides access to categories and products: a
// Postgres store, an optional Redis cache in front of it, and the
// Service the handlers talk to.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avrorra/storebot/internal/domain"
)

// ErrNotFound is returned when a category or product does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Store defines persistence operations for the catalog.
type Store interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryByKey(ctx context.Context, key string) (*domain.Category, error)
	AddCategory(ctx context.Context, category domain.Category) error
	RenameCategory(ctx context.Context, key, name string) error
	DeleteCategory(ctx context.Context, key string) error

	Products(ctx context.Context, categoryKey string) ([]domain.Product, error)
	AllProducts(ctx context.Context) ([]domain.Product, error)
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	AddProduct(ctx context.Context, product domain.Product) (int64, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type sqlStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore creates the SQL-backed catalog store.
func NewStore(db *sql.DB, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	return &sqlStore{db: db, log: log}
}

func (s *sqlStore) Categories(ctx context.Context) ([]domain.Category, error) {
	const query = `
		SELECT category_id, name
		FROM categories
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.log.Error("failed to list categories", slog.Any("error", err))
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Key, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *sqlStore) CategoryByKey(ctx context.Context, key string) (*domain.Category, error) {
	const query = `
		SELECT category_id, name
		FROM categories
		WHERE category_id = $1
	`

	var c domain.Category
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&c.Key, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to fetch category", slog.String("category", key), slog.Any("error", err))
		return nil, fmt.Errorf("select category by key: %w", err)
	}

	return &c, nil
}

func (s *sqlStore) AddCategory(ctx context.Context, category domain.Category) error {
	const query = `
		INSERT INTO categories (category_id, name)
		VALUES ($1, $2)
		ON CONFLICT (category_id) DO UPDATE SET name = EXCLUDED.name
	`

	if _, err := s.db.ExecContext(ctx, query, category.Key, category.Name); err != nil {
		s.log.Error("failed to add category", slog.String("category", category.Key), slog.Any("error", err))
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

func (s *sqlStore) RenameCategory(ctx context.Context, key, name string) error {
	const query = `
		UPDATE categories
		SET name = $2
		WHERE category_id = $1
	`

	res, err := s.db.ExecContext(ctx, query, key, name)
	if err != nil {
		s.log.Error("failed to rename category", slog.String("category", key), slog.Any("error", err))
		return fmt.Errorf("update category: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *sqlStore) DeleteCategory(ctx context.Context, key string) error {
	// Products of the category go with it.
	const deleteProducts = `DELETE FROM products WHERE category_id = $1`
	const deleteCategory = `DELETE FROM categories WHERE category_id = $1`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}

	if _, err := tx.ExecContext(ctx, deleteProducts, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete category products: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteCategory, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	return nil
}

func (s *sqlStore) Products(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	const query = `
		SELECT id, name, price, image_url, category_id
		FROM products
		WHERE category_id = $1
		ORDER BY id
	`

	return s.queryProducts(ctx, query, categoryKey)
}

func (s *sqlStore) AllProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `
		SELECT id, name, price, image_url, category_id
		FROM products
		ORDER BY id
	`

	return s.queryProducts(ctx, query)
}

func (s *sqlStore) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &imageURL, &p.CategoryKey); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ImageURL = imageURL.String
		products = append(products, p)
	}

	return products, rows.Err()
}

func (s *sqlStore) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `
		SELECT id, name, price, image_url, category_id
		FROM products
		WHERE id = $1
	`

	var p domain.Product
	var imageURL sql.NullString
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &imageURL, &p.CategoryKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to fetch product", slog.Int64("product_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("select product by id: %w", err)
	}
	p.ImageURL = imageURL.String

	return &p, nil
}

func (s *sqlStore) AddProduct(ctx context.Context, product domain.Product) (int64, error) {
	const query = `
		INSERT INTO products (name, price, image_url, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	if err := s.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Price,
		nullable(product.ImageURL),
		product.CategoryKey,
	).Scan(&id); err != nil {
		s.log.Error("failed to add product", slog.String("name", product.Name), slog.Any("error", err))
		return 0, fmt.Errorf("insert product: %w", err)
	}

	return id, nil
}

func (s *sqlStore) UpdateProduct(ctx context.Context, product domain.Product) error {
	const query = `
		UPDATE products
		SET name = $2, price = $3, image_url = $4, category_id = $5
		WHERE id = $1
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		nullable(product.ImageURL),
		product.CategoryKey,
	)
	if err != nil {
		s.log.Error("failed to update product", slog.Int64("product_id", product.ID), slog.Any("error", err))
		return fmt.Errorf("update product: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *sqlStore) DeleteProduct(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		s.log.Error("failed to delete product", slog.Int64("product_id", id), slog.Any("error", err))
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
