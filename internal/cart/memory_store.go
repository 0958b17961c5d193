package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	cart    Cart
	expires time.Time
}

// memoryStore implements Store in process memory. It is used when Redis is
// disabled and in tests.
type memoryStore struct {
	mu        sync.Mutex
	carts     map[string]memoryEntry
	checkouts map[string]string
	ttl       time.Duration
	now       func() time.Time
}

// NewMemoryStore creates an in-memory cart store. Carts untouched for ttl
// are discarded; a zero ttl keeps them until deleted.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		carts:     make(map[string]memoryEntry),
		checkouts: make(map[string]string),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Get returns the session's cart, or an empty cart if none is stored.
func (s *memoryStore) Get(ctx context.Context, sessionID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(sessionID).Clone(), nil
}

// Update applies fn to the session's cart under the store lock.
func (s *memoryStore) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (Cart, error) {
	if err := ctx.Err(); err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(sessionID).Clone()
	if err := fn(&c); err != nil {
		return Cart{}, err
	}

	if c.IsEmpty() {
		delete(s.carts, sessionID)
		return c, nil
	}

	entry := memoryEntry{cart: c.Clone()}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.carts[sessionID] = entry
	return c, nil
}

// Delete removes the session's cart.
func (s *memoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// AcquireCheckout takes the session's submission guard.
func (s *memoryStore) AcquireCheckout(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.checkouts[sessionID]; held {
		return nil, ErrCheckoutLocked
	}

	token := uuid.NewString()
	s.checkouts[sessionID] = token

	release := func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.checkouts[sessionID] == token {
			delete(s.checkouts, sessionID)
		}
		return nil
	}
	return release, nil
}

// load must be called with s.mu held.
func (s *memoryStore) load(sessionID string) Cart {
	entry, ok := s.carts[sessionID]
	if !ok {
		return Cart{}
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		delete(s.carts, sessionID)
		return Cart{}
	}
	return entry.cart
}
