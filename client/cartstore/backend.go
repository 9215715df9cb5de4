package cartstore

import (
	"context"

	"github.com/google/uuid"
)

// Backend is one of the two persistence targets for the cart: a guest-local
// JSON file or the remote cart service. Exactly one backend is authoritative
// at a time; authentication state selects which.
type Backend interface {
	// Load returns the persisted lines. A missing store yields an empty
	// slice, not an error.
	Load(ctx context.Context) ([]Line, error)
	// Add increments the line for the product, creating it when absent.
	Add(ctx context.Context, line Line) error
	// Remove drops the line. Removing an absent line is not an error.
	Remove(ctx context.Context, productID uuid.UUID) error
	// SetQuantity sets a line to an absolute quantity in one operation.
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error
	// Clear empties the persisted cart.
	Clear(ctx context.Context) error
	// Replace overwrites the persisted cart with the given lines. Used by
	// the sanitize write-back.
	Replace(ctx context.Context, lines []Line) error
	// Discard abandons the backend's state on an auth transition. Guest
	// storage is deleted; the remote cart is left untouched.
	Discard(ctx context.Context) error
}
