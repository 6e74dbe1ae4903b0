package booking_test

import (
	"context"
	"sync"
	"time"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// fakeCatalog is an in-memory price catalog whose prices can change
// between calls, mimicking a menu edit racing with checkout.
type fakeCatalog struct {
	mu     sync.Mutex
	prices map[uint64]uint32
	names  map[uint64]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{prices: make(map[uint64]uint32), names: make(map[uint64]string)}
}

func (f *fakeCatalog) add(id uint64, name string, priceCents uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = priceCents
	f.names[id] = name
}

func (f *fakeCatalog) setPrice(id uint64, priceCents uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = priceCents
}

func (f *fakeCatalog) PriceOf(_ context.Context, itemID uint64) (uint32, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.prices[itemID]
	if !ok {
		return 0, "", booking.ErrUnknownItem
	}
	return price, f.names[itemID], nil
}

// memCounter implements booking.SlotCounter with a mutex, giving the
// same check-and-increment atomicity the SQL implementation gets from
// a guarded UPDATE.
type memCounter struct {
	mu     sync.Mutex
	counts map[model.Slot]int
}

func newMemCounter() *memCounter {
	return &memCounter{counts: make(map[model.Slot]int)}
}

func (c *memCounter) Increment(_ context.Context, slot model.Slot, max int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[slot] >= max {
		return false, nil
	}
	c.counts[slot]++
	return true, nil
}

func (c *memCounter) Decrement(_ context.Context, slot model.Slot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[slot] > 0 {
		c.counts[slot]--
	}
	return nil
}

func (c *memCounter) reserved(slot model.Slot) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[slot]
}

type storedReservation struct {
	res   model.Reservation
	items []model.LineItem
}

// memStore implements booking.ReservationStore.  Error injection
// fields simulate the failure modes the SQL layer reports: duplicate
// ticket tokens, transient conflicts and hard write failures.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	byToken map[string]*storedReservation

	collideNext  int   // next N creates report a token collision
	conflictNext int   // next N creates report a transient conflict
	failWith     error // when set, every create fails hard
}

func newMemStore() *memStore {
	return &memStore{byToken: make(map[string]*storedReservation)}
}

func (s *memStore) CreateWithItems(_ context.Context, res *model.Reservation, items []model.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if s.conflictNext > 0 {
		s.conflictNext--
		return booking.ErrPersistenceConflict
	}
	if s.collideNext > 0 {
		s.collideNext--
		return booking.ErrTokenCollision
	}
	if _, dup := s.byToken[res.TicketToken]; dup {
		return booking.ErrTokenCollision
	}
	s.nextID++
	res.ID = s.nextID
	stored := &storedReservation{res: *res, items: make([]model.LineItem, len(items))}
	for i, li := range items {
		li.ReservationID = res.ID
		stored.items[i] = li
	}
	s.byToken[res.TicketToken] = stored
	return nil
}

func (s *memStore) FindByToken(_ context.Context, token string) (*model.Reservation, []model.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byToken[token]
	if !ok {
		return nil, nil, booking.ErrTokenNotFound
	}
	res := stored.res
	items := make([]model.LineItem, len(stored.items))
	copy(items, stored.items)
	return &res, items, nil
}

func (s *memStore) MarkServed(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byToken[token]
	if !ok || stored.res.Status != model.StatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	stored.res.Status = model.StatusServed
	stored.res.ServedAt = &now
	return true, nil
}

func (s *memStore) MarkCancelled(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byToken[token]
	if !ok || stored.res.Status != model.StatusPending {
		return false, nil
	}
	stored.res.Status = model.StatusCancelled
	return true, nil
}

// corruptHeaderTotal rewrites the stored header total, used to prove
// that verification totals derive from line-item snapshots.
func (s *memStore) corruptHeaderTotal(token string, total uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byToken[token]; ok {
		stored.res.TotalCents = total
	}
}
