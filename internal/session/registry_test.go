package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/checkout"
)

func TestRegistryLazyCreate(t *testing.T) {
	registry := NewMemoryRegistry()

	registry.Update(42, func(s *Session) {
		require.NotNil(t, s)
		assert.Equal(t, int64(42), s.UserID)
		assert.Equal(t, checkout.StateIdle, s.Checkout)
		assert.True(t, s.Cart.Empty())
		assert.Zero(t, s.MainMessageID)
	})

	assert.Equal(t, 1, registry.Len())

	// Second contact reuses the same session.
	registry.Update(42, func(s *Session) {
		s.Cart.Increment(7)
	})
	registry.Update(42, func(s *Session) {
		assert.Equal(t, 1, s.Cart.Quantity(7))
	})
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryIsolatesUsers(t *testing.T) {
	registry := NewMemoryRegistry()

	registry.Update(1, func(s *Session) { s.Cart.Increment(10) })
	registry.Update(2, func(s *Session) { s.Cart.Increment(20) })

	registry.Update(1, func(s *Session) {
		assert.Equal(t, 1, s.Cart.Quantity(10))
		assert.Zero(t, s.Cart.Quantity(20))
	})
}

func TestRegistrySerializesUpdatesPerUser(t *testing.T) {
	registry := NewMemoryRegistry()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			registry.Update(1, func(s *Session) {
				// Read-modify-write through the cart, lost updates
				// would leave the final quantity below workers.
				s.Cart.Increment(1)
			})
		}()
	}
	wg.Wait()

	registry.Update(1, func(s *Session) {
		assert.Equal(t, workers, s.Cart.Quantity(1))
	})
}

func TestRegistryStats(t *testing.T) {
	registry := NewMemoryRegistry()

	registry.Update(1, func(s *Session) {})
	registry.Update(2, func(s *Session) { s.Checkout = checkout.StateAwaitingAddress })

	stats := registry.Stats()
	assert.Equal(t, 1, stats[checkout.StateIdle])
	assert.Equal(t, 1, stats[checkout.StateAwaitingAddress])
}

func TestRegistrySweep(t *testing.T) {
	registry := NewMemoryRegistry()

	registry.Update(1, func(s *Session) {})
	registry.Update(2, func(s *Session) { s.Checkout = checkout.StateAwaitingPhoneChoice })
	registry.Update(3, func(s *Session) {})

	// Age two sessions past the TTL.
	for _, id := range []int64{1, 2} {
		registry.Update(id, func(s *Session) {
			s.LastSeen = time.Now().Add(-2 * time.Hour)
		})
	}

	evicted := registry.Sweep(time.Hour)

	// User 2 is mid-checkout and survives the sweep.
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, registry.Len())

	registry.Update(2, func(s *Session) {
		assert.Equal(t, checkout.StateAwaitingPhoneChoice, s.Checkout)
	})
}

func TestSessionTransientTracking(t *testing.T) {
	s := newSession(1)

	s.TrackTransient(100)
	s.TrackTransient(101)

	ids := s.TakeTransient()
	assert.Equal(t, []int{100, 101}, ids)
	assert.Empty(t, s.Transient)
	assert.Nil(t, s.TakeTransient())
}

func TestSessionResetCheckout(t *testing.T) {
	s := newSession(1)
	s.Checkout = checkout.StateAwaitingAddress
	s.Phone = "+79991234567"
	s.Address = "somewhere"

	s.ResetCheckout()

	assert.Equal(t, checkout.StateIdle, s.Checkout)
	assert.Empty(t, s.Phone)
	assert.Empty(t, s.Address)
}
