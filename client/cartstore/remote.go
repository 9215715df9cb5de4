package cartstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/client"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// cartAPI is the slice of the API client the remote backend needs.
type cartAPI interface {
	CartGet(ctx context.Context) (*client.Cart, error)
	CartAdd(ctx context.Context, productID uuid.UUID, quantity int) (*client.Cart, error)
	CartSetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*client.Cart, error)
	CartRemove(ctx context.Context, productID uuid.UUID) (*client.Cart, error)
	CartClear(ctx context.Context) (*client.ClearResult, error)
}

// RemoteBackend persists the cart through the storefront API for an
// authenticated session. Quantity updates go through the atomic upsert
// endpoint, so there is no remove-then-add window that could lose a line.
type RemoteBackend struct {
	api cartAPI
}

// NewRemoteBackend wraps an authenticated API client.
func NewRemoteBackend(api cartAPI) *RemoteBackend {
	return &RemoteBackend{api: api}
}

func (b *RemoteBackend) Load(ctx context.Context) ([]Line, error) {
	cart, err := b.api.CartGet(ctx)
	if err != nil {
		if isNotFound(err) {
			return []Line{}, nil
		}
		return nil, err
	}

	lines := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, lineFromItem(item))
	}
	return lines, nil
}

func (b *RemoteBackend) Add(ctx context.Context, line Line) error {
	_, err := b.api.CartAdd(ctx, line.ProductID, line.Quantity)
	return err
}

func (b *RemoteBackend) Remove(ctx context.Context, productID uuid.UUID) error {
	_, err := b.api.CartRemove(ctx, productID)
	return err
}

func (b *RemoteBackend) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	_, err := b.api.CartSetQuantity(ctx, productID, quantity)
	return err
}

func (b *RemoteBackend) Clear(ctx context.Context) error {
	_, err := b.api.CartClear(ctx)
	if isNotFound(err) {
		// No cart document yet; nothing to clear.
		return nil
	}
	return err
}

// Replace rewrites the remote cart as clear-then-upsert per line. Individual
// line failures are collected rather than aborting the rest.
func (b *RemoteBackend) Replace(ctx context.Context, lines []Line) error {
	if err := b.Clear(ctx); err != nil {
		return err
	}
	var combined error
	for _, line := range lines {
		if err := b.SetQuantity(ctx, line.ProductID, line.Quantity); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// Discard is a no-op: the server cart stays authoritative for the account
// and is re-adopted on the next authenticated Load.
func (b *RemoteBackend) Discard(ctx context.Context) error {
	return nil
}

func lineFromItem(item client.CartItem) Line {
	line := Line{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	if item.Product != nil {
		price := int64(item.Product.PriceCents)
		line.Product = &Snapshot{
			Title:      item.Product.Title,
			PriceCents: &price,
			Image:      item.Product.Image,
			Category:   item.Product.Category,
			Rating:     item.Product.Rating,
		}
	}
	return line
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return typed.Code() == pkgerrors.CodeNotFound
	}
	return false
}
