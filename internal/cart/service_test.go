package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// memCartRepo mimics the postgres upsert semantics in memory.
type memCartRepo struct {
	mu       sync.Mutex
	carts    map[uuid.UUID]*models.Cart
	products map[uuid.UUID]*models.Product
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{
		carts:    map[uuid.UUID]*models.Cart{},
		products: map[uuid.UUID]*models.Product{},
	}
}

func (m *memCartRepo) addProduct(title string, priceCents int) uuid.UUID {
	id := uuid.New()
	m.products[id] = &models.Product{ID: id, Title: title, PriceCents: priceCents}
	return id
}

func (m *memCartRepo) FindByUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	copied.Items = make([]models.CartItem, len(record.Items))
	for i, item := range record.Items {
		copied.Items[i] = item
		copied.Items[i].Product = m.products[item.ProductID]
	}
	return &copied, nil
}

func (m *memCartRepo) CreateForUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	record := &models.Cart{ID: uuid.New(), UserID: userID}
	m.carts[userID] = record
	return record, nil
}

func (m *memCartRepo) AddItem(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.byCartID(cartID)
	for i := range record.Items {
		if record.Items[i].ProductID == productID {
			record.Items[i].Quantity += quantity
			return nil
		}
	}
	record.Items = append(record.Items, models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity})
	return nil
}

func (m *memCartRepo) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.byCartID(cartID)
	for i := range record.Items {
		if record.Items[i].ProductID == productID {
			record.Items[i].Quantity = quantity
			return nil
		}
	}
	record.Items = append(record.Items, models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity})
	return nil
}

func (m *memCartRepo) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.byCartID(cartID)
	kept := record.Items[:0]
	for _, item := range record.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	record.Items = kept
	return nil
}

func (m *memCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byCartID(cartID).Items = nil
	return nil
}

func (m *memCartRepo) Touch(_ context.Context, cartID uuid.UUID) error {
	return nil
}

func (m *memCartRepo) byCartID(cartID uuid.UUID) *models.Cart {
	for _, record := range m.carts {
		if record.ID == cartID {
			return record
		}
	}
	panic("unknown cart id")
}

func (m *memCartRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T) (Service, *memCartRepo) {
	t.Helper()
	repo := newMemCartRepo()
	svc, err := NewService(ServiceParams{CartRepo: repo, ProductRepo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestGetCreatesEmptyCartOnFirstAccess(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	dto, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.UserID != userID {
		t.Fatalf("expected cart for user %s, got %s", userID, dto.UserID)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(dto.Items))
	}
	if dto.TotalCents != 0 {
		t.Fatalf("expected zero total, got %d", dto.TotalCents)
	}
}

func TestAddUnknownProductReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New(), 1)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	typed := pkgerrors.As(err)
	if typed.Message() != productNotFoundMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestAddMergesDuplicateProductLines(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)

	if _, err := svc.Add(context.Background(), userID, productID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := svc.Add(context.Background(), userID, productID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", dto.Items[0].Quantity)
	}
	if dto.TotalCents != 5*10995 {
		t.Fatalf("unexpected total %d", dto.TotalCents)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	productID := repo.addProduct("Backpack", 10995)

	if _, err := svc.Add(context.Background(), uuid.New(), productID, 0); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetQuantityOverwritesAndInserts(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)

	// Upsert into an empty cart inserts the line.
	dto, err := svc.SetQuantity(context.Background(), userID, productID, 4)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 4 {
		t.Fatalf("expected single line qty 4, got %+v", dto.Items)
	}

	// A second upsert overwrites rather than increments.
	dto, err = svc.SetQuantity(context.Background(), userID, productID, 2)
	if err != nil {
		t.Fatalf("set quantity again: %v", err)
	}
	if dto.Items[0].Quantity != 2 {
		t.Fatalf("expected overwritten qty 2, got %d", dto.Items[0].Quantity)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)

	if _, err := svc.Add(context.Background(), userID, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.SetQuantity(context.Background(), userID, productID, 0)
	if err != nil {
		t.Fatalf("set quantity zero: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected line removed, got %+v", dto.Items)
	}
}

func TestRemoveRequiresExistingCart(t *testing.T) {
	svc, repo := newTestService(t)
	productID := repo.addProduct("Backpack", 10995)

	_, err := svc.Remove(context.Background(), uuid.New(), productID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	typed := pkgerrors.As(err)
	if typed.Message() != cartNotFoundMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestRemoveAbsentLineIsNoOp(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)
	otherID := repo.addProduct("Shirt", 2230)

	if _, err := svc.Add(context.Background(), userID, productID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.Remove(context.Background(), userID, otherID)
	if err != nil {
		t.Fatalf("remove absent line: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected untouched cart, got %+v", dto.Items)
	}
}

func TestClearEmptiesCartAndReportsMessage(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)

	if _, err := svc.Add(context.Background(), userID, productID, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	result, err := svc.Clear(context.Background(), userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result.Message != "Cart cleared" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(result.Cart.Items) != 0 || result.Cart.TotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", result.Cart)
	}
}

func TestClearRequiresExistingCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Clear(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentAddsNeverLoseIncrements(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()
	productID := repo.addProduct("Backpack", 10995)

	// Seed the cart so goroutines do not race on creation.
	if _, err := svc.Get(context.Background(), userID); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Add(context.Background(), userID, productID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add: %v", err)
	}

	dto, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != workers {
		t.Fatalf("expected quantity %d, got %+v", workers, dto.Items)
	}
}
