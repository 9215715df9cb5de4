package cartstore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	mu    sync.Mutex
	lines []Line

	failNext error
	ops      []string
	loaded   int
	replaced int
	cleared  int
	discards int
}

func (b *memBackend) takeFailure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *memBackend) Load(ctx context.Context) ([]Line, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "load")
	b.loaded++
	return cloneLines(b.lines), nil
}

func (b *memBackend) Add(ctx context.Context, line Line) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "add")
	for i := range b.lines {
		if b.lines[i].ProductID == line.ProductID {
			b.lines[i].Quantity += line.Quantity
			return nil
		}
	}
	b.lines = append(b.lines, line)
	return nil
}

func (b *memBackend) Remove(ctx context.Context, productID uuid.UUID) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "remove")
	kept := b.lines[:0]
	for _, l := range b.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	b.lines = kept
	return nil
}

func (b *memBackend) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "set_quantity")
	for i := range b.lines {
		if b.lines[i].ProductID == productID {
			b.lines[i].Quantity = quantity
			return nil
		}
	}
	b.lines = append(b.lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

func (b *memBackend) Clear(ctx context.Context) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "clear")
	b.cleared++
	b.lines = nil
	return nil
}

func (b *memBackend) Replace(ctx context.Context, lines []Line) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "replace")
	b.replaced++
	b.lines = cloneLines(lines)
	return nil
}

func (b *memBackend) Discard(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, "discard")
	b.discards++
	b.lines = nil
	return nil
}

func (b *memBackend) snapshot() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneLines(b.lines)
}

func (b *memBackend) opLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ops...)
}

func price(cents int64) *int64 {
	return &cents
}

func snap(cents int64) Snapshot {
	return Snapshot{Title: "test product", PriceCents: price(cents)}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	store.AddItem(productID, snap(1000), 2)
	store.AddItem(productID, snap(1000), 3)
	store.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Quantity)

	remote := backend.snapshot()
	require.Len(t, remote, 1)
	require.Equal(t, 5, remote[0].Quantity)
}

func TestRemoveThenAddStartsFreshLine(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	store.AddItem(productID, snap(1000), 7)
	store.RemoveItem(productID)
	store.AddItem(productID, snap(1000), 1)
	store.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
}

func TestUpdateQuantityZeroBehavesAsRemove(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	store.AddItem(productID, snap(1000), 2)
	store.UpdateQuantity(productID, 0)
	store.Wait()

	require.Empty(t, store.Items())
	require.Empty(t, backend.snapshot())
}

func TestUpdateQuantityReplacesInPlace(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	store.AddItem(productID, snap(1000), 2)
	store.UpdateQuantity(productID, 9)
	store.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 9, items[0].Quantity)

	remote := backend.snapshot()
	require.Len(t, remote, 1)
	require.Equal(t, 9, remote[0].Quantity)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	store.mu.Lock()
	store.lines = []Line{
		{ProductID: uuid.New(), Quantity: 2, Product: &Snapshot{PriceCents: price(500)}},
		{ProductID: uuid.New(), Quantity: 0, Product: &Snapshot{PriceCents: price(500)}},
		{ProductID: uuid.New(), Quantity: 3, Product: nil},
		{ProductID: uuid.New(), Quantity: 1, Product: &Snapshot{PriceCents: nil}},
	}
	store.mu.Unlock()

	store.Sanitize()
	store.Wait()
	once := store.Items()

	store.Sanitize()
	store.Wait()
	twice := store.Items()

	require.Equal(t, once, twice)
	require.Len(t, once, 1)

	// Only the first pass changed anything, so only one write-back happened.
	backend.mu.Lock()
	replaced := backend.replaced
	backend.mu.Unlock()
	require.Equal(t, 1, replaced)
}

func TestTotalIgnoresMalformedLines(t *testing.T) {
	store := NewStore(&memBackend{}, nil)

	store.mu.Lock()
	store.lines = []Line{
		{ProductID: uuid.New(), Quantity: 2, Product: &Snapshot{PriceCents: price(1000)}},
		{ProductID: uuid.New(), Quantity: -3, Product: &Snapshot{PriceCents: price(1000)}},
		{ProductID: uuid.New(), Quantity: 1, Product: nil},
		{ProductID: uuid.New(), Quantity: 1, Product: &Snapshot{PriceCents: price(-50)}},
	}
	store.mu.Unlock()

	total := store.Total()
	require.True(t, total.Equal(decimal.RequireFromString("20")), "got %s", total)
	require.False(t, total.IsNegative())
}

func TestGuestTotalAndClear(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewLocalBackend(dir + "/cart.json")
	require.NoError(t, err)
	store := NewStore(backend, nil)

	p1 := uuid.New()
	p2 := uuid.New()
	store.AddItem(p1, snap(1000), 2)
	store.AddItem(p2, snap(500), 1)
	store.Wait()

	require.True(t, store.Total().Equal(decimal.RequireFromString("25")), "got %s", store.Total())

	store.Clear()
	store.Wait()

	require.True(t, store.Total().IsZero())
	_, statErr := os.Stat(backend.Path())
	require.Error(t, statErr, "guest storage key should be removed on clear")
}

func TestPersistFailureKeepsOptimisticStateAndLogs(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	backend.mu.Lock()
	backend.failNext = errors.New("network down")
	backend.mu.Unlock()

	store.AddItem(productID, snap(1000), 1)
	store.Wait()

	// Memory keeps the optimistic line even though the backend call failed.
	require.Len(t, store.Items(), 1)
	require.Empty(t, backend.snapshot())

	entries := store.SyncLog().Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "add", entries[0].Op)
	require.Equal(t, productID, entries[0].ProductID)
	require.Error(t, store.SyncLog().Err())
}

func TestSwitchBackendDiscardsGuestCart(t *testing.T) {
	guest := &memBackend{}
	remote := &memBackend{lines: []Line{
		{ProductID: uuid.New(), Quantity: 4, Product: &Snapshot{PriceCents: price(2000)}},
	}}
	store := NewStore(guest, nil)

	store.AddItem(uuid.New(), snap(1000), 2)
	store.Wait()

	require.NoError(t, store.SwitchBackend(context.Background(), remote))
	store.Wait()

	// The guest cart is discarded, not merged into the account cart.
	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].Quantity)

	guest.mu.Lock()
	discards := guest.discards
	guest.mu.Unlock()
	require.Equal(t, 1, discards)
}

func TestLoadSchedulesSanitize(t *testing.T) {
	backend := &memBackend{lines: []Line{
		{ProductID: uuid.New(), Quantity: 1, Product: &Snapshot{PriceCents: price(100)}},
		{ProductID: uuid.New(), Quantity: 0, Product: &Snapshot{PriceCents: price(100)}},
	}}
	store := NewStore(backend, nil)

	require.NoError(t, store.Load(context.Background()))
	store.Wait()

	require.Len(t, store.Items(), 1)
	require.Len(t, backend.snapshot(), 1)
}

func TestConcurrentAddsSumQuantities(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddItem(productID, snap(1000), 1)
		}()
	}
	wg.Wait()
	store.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 16, items[0].Quantity)
}

func TestPersistenceAppliesInIssueOrder(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	productID := uuid.New()

	// Back-to-back mutations with no drain in between must reach the
	// backend in issue order, or the absolute set would be clobbered by
	// the earlier increment.
	store.AddItem(productID, snap(1000), 2)
	store.UpdateQuantity(productID, 9)
	store.UpdateQuantity(productID, 0)
	store.Wait()

	require.Empty(t, store.Items())
	require.Empty(t, backend.snapshot())
	require.Equal(t, []string{"add", "set_quantity", "remove"}, backend.opLog())
}

func TestUpdateQuantityAbsentProductIsNoOp(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)
	present := uuid.New()
	absent := uuid.New()

	store.AddItem(present, snap(1000), 2)
	store.UpdateQuantity(absent, 5)
	store.Wait()

	// Neither memory nor the backend grows a line for the unknown product.
	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, present, items[0].ProductID)

	remote := backend.snapshot()
	require.Len(t, remote, 1)
	require.Equal(t, present, remote[0].ProductID)
	require.NotContains(t, backend.opLog(), "set_quantity")
}
