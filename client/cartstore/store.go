// Package cartstore owns the in-memory cart for the active session. It
// applies mutations optimistically, persists them in the background to the
// backend matching the current auth state, and guarantees the caller never
// observes a structurally invalid line in totals.
package cartstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/logger"
)

var oneHundred = decimal.NewFromInt(100)

// Store is the authoritative in-memory cart. Mutations apply synchronously
// to memory and dispatch persistence on goroutines; a persistence failure
// lands in the SyncLog and never rolls back memory, so the local view may
// diverge from the backend until the next Load.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	backend Backend

	queueMu  sync.Mutex
	queue    []persistTask
	draining bool

	log  *SyncLog
	wg   sync.WaitGroup
	logg *logger.Logger
}

type persistTask struct {
	op        string
	productID uuid.UUID
	fn        func(context.Context) error
}

// NewStore builds a store over the given backend. The logger may be nil.
func NewStore(backend Backend, logg *logger.Logger) *Store {
	return &Store{
		backend: backend,
		log:     &SyncLog{},
		logg:    logg,
	}
}

// SyncLog exposes the persistence failure journal.
func (s *Store) SyncLog() *SyncLog {
	return s.log
}

// Load adopts the backend's persisted lines, then schedules a sanitize pass
// in the background.
func (s *Store) Load(ctx context.Context) error {
	lines, err := s.currentBackend().Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Sanitize()
	}()
	return nil
}

// AddItem merges quantity into an existing line for the product or appends a
// new line carrying the display snapshot. Quantity defaults to one.
func (s *Store) AddItem(productID uuid.UUID, snapshot Snapshot, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		snap := snapshot
		s.lines = append(s.lines, Line{ProductID: productID, Quantity: quantity, Product: &snap})
	}
	s.mu.Unlock()

	snap := snapshot
	backend := s.currentBackend()
	s.persist("add", productID, func(ctx context.Context) error {
		return backend.Add(ctx, Line{ProductID: productID, Quantity: quantity, Product: &snap})
	})
}

// RemoveItem drops the line for the product. Removing an absent line is a
// no-op in memory; the backend call still runs for symmetry with Add.
func (s *Store) RemoveItem(productID uuid.UUID) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.mu.Unlock()

	backend := s.currentBackend()
	s.persist("remove", productID, func(ctx context.Context) error {
		return backend.Remove(ctx, productID)
	})
}

// UpdateQuantity sets the line to an absolute quantity. A quantity below one
// behaves exactly like RemoveItem; updating a product that has no line in
// the cart changes nothing.
func (s *Store) UpdateQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			found = true
			break
		}
	}
	s.mu.Unlock()

	// No line to update: persisting would insert one the in-memory view
	// never had.
	if !found {
		return
	}

	backend := s.currentBackend()
	s.persist("set_quantity", productID, func(ctx context.Context) error {
		return backend.SetQuantity(ctx, productID, quantity)
	})
}

// Clear empties the cart and the backing store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	backend := s.currentBackend()
	s.persist("clear", uuid.Nil, func(ctx context.Context) error {
		return backend.Clear(ctx)
	})
}

// Sanitize removes structurally invalid lines. When anything was removed the
// cleaned list is written back to the backing store. Running it twice in a
// row yields the same result as once.
func (s *Store) Sanitize() {
	s.mu.Lock()
	cleaned := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if l.valid() {
			cleaned = append(cleaned, l)
		}
	}
	changed := len(cleaned) != len(s.lines)
	s.lines = cleaned
	writeBack := cloneLines(cleaned)
	s.mu.Unlock()

	if !changed {
		return
	}

	backend := s.currentBackend()
	s.persist("sanitize", uuid.Nil, func(ctx context.Context) error {
		return backend.Replace(ctx, writeBack)
	})
}

// Total returns the cart value in currency units. The computation is
// defensive: any line failing the sanitize validity check contributes zero,
// and the result is never negative.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		if !l.valid() {
			continue
		}
		price := decimal.NewFromInt(*l.Product.PriceCents)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Div(oneHundred)
}

// ItemCount returns the summed quantity across valid lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		if l.valid() {
			count += l.Quantity
		}
	}
	return count
}

// Items returns a copy of the current lines, invalid ones included; callers
// that need only valid lines should Sanitize first.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// SwitchBackend handles an auth transition: in-flight persistence drains,
// the outgoing backend's state is discarded, and the cart reloads from the
// new backend. The guest cart is NOT merged into the account cart.
func (s *Store) SwitchBackend(ctx context.Context, next Backend) error {
	s.wg.Wait()

	s.mu.Lock()
	previous := s.backend
	s.backend = next
	s.lines = nil
	s.mu.Unlock()

	if previous != nil {
		if err := previous.Discard(ctx); err != nil {
			s.log.record("discard", uuid.Nil, err)
			s.warn(ctx, "cart.store.discard_failed", err)
		}
	}
	return s.Load(ctx)
}

// Wait blocks until every dispatched persistence call has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) currentBackend() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend
}

// persist enqueues a backend call without blocking the caller. A single
// drain goroutine runs the queue in FIFO order so calls arrive at the
// backend in the order the mutations were issued.
func (s *Store) persist(op string, productID uuid.UUID, fn func(context.Context) error) {
	s.wg.Add(1)

	s.queueMu.Lock()
	s.queue = append(s.queue, persistTask{op: op, productID: productID, fn: fn})
	if !s.draining {
		s.draining = true
		go s.drain()
	}
	s.queueMu.Unlock()
}

func (s *Store) drain() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queueMu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		ctx := context.Background()
		if err := task.fn(ctx); err != nil {
			s.log.record(task.op, task.productID, err)
			s.warn(ctx, "cart.store.persist_failed", err)
		}
		s.wg.Done()
	}
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
