package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartAdd(t *testing.T) {
	cart := NewCart()

	cart.Add(1)
	assert.Equal(t, 1, cart.Quantity(1))

	// Adding an existing product keeps the accumulated quantity.
	cart.Increment(1)
	cart.Increment(1)
	cart.Add(1)
	assert.Equal(t, 3, cart.Quantity(1))
}

func TestCartIncrementDecrement(t *testing.T) {
	cart := NewCart()

	// Increment creates the entry at 1 when absent.
	cart.Increment(5)
	assert.Equal(t, 1, cart.Quantity(5))

	cart.Increment(5)
	assert.Equal(t, 2, cart.Quantity(5))

	cart.Decrement(5)
	assert.Equal(t, 1, cart.Quantity(5))

	// Decrement at quantity 1 removes the entry.
	cart.Decrement(5)
	assert.Zero(t, cart.Quantity(5))
	assert.True(t, cart.Empty())

	// Decrement of a product not in the cart is a no-op.
	cart.Decrement(5)
	assert.True(t, cart.Empty())
}

func TestCartRemoveAndClear(t *testing.T) {
	cart := NewCart()
	cart.Increment(1)
	cart.Increment(1)
	cart.Increment(2)

	cart.Remove(1)
	assert.Zero(t, cart.Quantity(1))
	assert.Equal(t, 1, cart.Len())

	cart.Clear()
	assert.True(t, cart.Empty())
}

func TestCartTotal(t *testing.T) {
	prices := map[int64]int64{1: 100, 2: 50}
	lookup := func(id int64) (int64, bool) {
		price, ok := prices[id]
		return price, ok
	}

	cart := NewCart()
	cart.Increment(1)
	cart.Increment(1) // 2 x 100
	cart.Increment(2) // 1 x 50

	assert.Equal(t, int64(250), cart.Total(lookup))

	// A product missing from the catalog is skipped, not an error.
	cart.Increment(99)
	assert.Equal(t, int64(250), cart.Total(lookup))

	assert.Zero(t, NewCart().Total(lookup))
}

func TestCartProductIDsSorted(t *testing.T) {
	cart := NewCart()
	cart.Add(30)
	cart.Add(10)
	cart.Add(20)

	assert.Equal(t, []int64{10, 20, 30}, cart.ProductIDs())
}

func TestCartClone(t *testing.T) {
	cart := NewCart()
	cart.Increment(1)

	clone := cart.Clone()
	clone.Increment(1)

	assert.Equal(t, 1, cart.Quantity(1))
	assert.Equal(t, 2, clone.Quantity(1))
}
