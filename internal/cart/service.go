package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	productNotFoundMessage = "Product not found"
	cartNotFoundMessage    = "Cart not found"
)

// Service exposes the per-user cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*ClearResult, error)
}

type cartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Touch(ctx context.Context, cartID uuid.UUID) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams bundles the dependencies for the cart service.
type ServiceParams struct {
	CartRepo    cartRepository
	ProductRepo productFinder
}

type service struct {
	carts    cartRepository
	products productFinder
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{
		carts:    params.CartRepo,
		products: params.ProductRepo,
	}, nil
}

// Get returns the user's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	record, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return fromCartModel(record), nil
}

// Add increments the line for the product, creating the line and the cart as
// needed.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	record, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.AddItem(ctx, record.ID, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.reload(ctx, userID, record.ID)
}

// SetQuantity overwrites the line quantity in one statement. A zero quantity
// removes the line.
func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	record, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		err = s.carts.RemoveItem(ctx, record.ID, productID)
	} else {
		err = s.carts.SetItemQuantity(ctx, record.ID, productID, quantity)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.reload(ctx, userID, record.ID)
}

// Remove deletes the line for the product. The cart must already exist;
// removing a product that is not in the cart is a no-op.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	record, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.RemoveItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return s.reload(ctx, userID, record.ID)
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*ClearResult, error) {
	record, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearItems(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	dto, err := s.reload(ctx, userID, record.ID)
	if err != nil {
		return nil, err
	}
	return &ClearResult{Message: "Cart cleared", Cart: dto}, nil
}

func (s *service) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record, err := s.carts.FindByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	record, err = s.carts.CreateForUser(ctx, userID)
	if err != nil {
		// Two concurrent first-accesses race on the user_id unique index.
		if existing, findErr := s.carts.FindByUser(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return record, nil
}

func (s *service) requireCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, cartNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return record, nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID, cartID uuid.UUID) (*CartDTO, error) {
	if err := s.carts.Touch(ctx, cartID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch cart")
	}
	record, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return fromCartModel(record), nil
}
