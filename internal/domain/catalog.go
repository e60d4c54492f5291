// Package domain defines the core entities shared across the application.
package domain

// Category groups products in the storefront. The string Key is used in
// callback data and as the foreign key on products.
type Category struct {
	Key  string
	Name string
}

// Product is a single sellable item. Price is stored in whole currency
// units, matching the catalog schema.
type Product struct {
	ID          int64
	Name        string
	Price       int64
	ImageURL    string
	CategoryKey string
}

// HasImage reports whether the product has a stored image to send with
// its card.
func (p Product) HasImage() bool {
	return p.ImageURL != ""
}
