// Package session persists the ephemeral cart between requests.  The
// engine treats the cart as a pass-through value; this package is the
// opaque key-value collaborator that retains it, keyed by a session
// identifier supplied by the caller.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// cartTTL bounds how long an abandoned cart survives.
const cartTTL = 24 * time.Hour

// CartStore loads and saves session carts.
type CartStore interface {
	// Load returns the cart for a session key; an empty cart when none
	// is stored.
	Load(ctx context.Context, key string) (model.Cart, error)

	// Save stores the cart under the session key.
	Save(ctx context.Context, key string, cart model.Cart) error

	// Clear drops the cart for a session key.
	Clear(ctx context.Context, key string) error
}

// NewCartStore returns a Redis-backed store, or an in-process fallback
// when no Redis client is available so carts keep working on a single
// node.
func NewCartStore(rdb *redis.Client) CartStore {
	if rdb == nil {
		return &memoryCartStore{carts: make(map[string]model.Cart)}
	}
	return &redisCartStore{rdb: rdb}
}

type redisCartStore struct {
	rdb *redis.Client
}

func (s *redisCartStore) Load(ctx context.Context, key string) (model.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(key)).Bytes()
	if err == redis.Nil {
		return model.Cart{}, nil
	}
	if err != nil {
		return model.Cart{}, err
	}
	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// A corrupt entry is discarded rather than wedging the session.
		return model.Cart{}, nil
	}
	return cart, nil
}

func (s *redisCartStore) Save(ctx context.Context, key string, cart model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(key), raw, cartTTL).Err()
}

func (s *redisCartStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, cartKey(key)).Err()
}

func cartKey(key string) string { return "cart:" + key }

// memoryCartStore is the single-node fallback used when Redis is not
// reachable at startup.
type memoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]model.Cart
}

func (s *memoryCartStore) Load(_ context.Context, key string) (model.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[key], nil
}

func (s *memoryCartStore) Save(_ context.Context, key string, cart model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = cart
	return nil
}

func (s *memoryCartStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
