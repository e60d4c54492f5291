package session

import "sort"

// Cart maps product IDs to quantities. A product present in the cart
// always has quantity >= 1; mutating helpers maintain that invariant.
type Cart map[int64]int

// NewCart returns an empty cart.
func NewCart() Cart {
	return make(Cart)
}

// Add puts the product into the cart with quantity 1. If the product is
// already present the call is a no-op, the existing quantity is kept.
func (c Cart) Add(productID int64) {
	if _, ok := c[productID]; ok {
		return
	}
	c[productID] = 1
}

// Increment raises the quantity by one, creating the entry at 1 when the
// product is not in the cart yet.
func (c Cart) Increment(productID int64) {
	c[productID]++
}

// Decrement lowers the quantity by one and removes the entry when the
// quantity would drop below 1. Unknown products are ignored.
func (c Cart) Decrement(productID int64) {
	qty, ok := c[productID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(c, productID)
		return
	}
	c[productID] = qty - 1
}

// Remove drops the product from the cart regardless of quantity.
func (c Cart) Remove(productID int64) {
	delete(c, productID)
}

// Clear empties the cart in place.
func (c Cart) Clear() {
	for id := range c {
		delete(c, id)
	}
}

// Quantity returns the current quantity for the product, zero when absent.
func (c Cart) Quantity(productID int64) int {
	return c[productID]
}

// Empty reports whether the cart has no positions.
func (c Cart) Empty() bool {
	return len(c) == 0
}

// Len returns the number of distinct products in the cart.
func (c Cart) Len() int {
	return len(c)
}

// ProductIDs returns the cart's product IDs in ascending order so that
// rendered views are stable between refreshes.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PriceLookup resolves a product ID to its current price. The second
// return value reports whether the product is known.
type PriceLookup func(productID int64) (int64, bool)

// Total sums price times quantity over the cart using the lookup.
// Products the lookup cannot resolve are skipped.
func (c Cart) Total(lookup PriceLookup) int64 {
	var total int64
	for id, qty := range c {
		price, ok := lookup(id)
		if !ok {
			continue
		}
		total += price * int64(qty)
	}
	return total
}

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}
