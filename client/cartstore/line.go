package cartstore

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Snapshot is the denormalized copy of product display fields embedded in a
// cart line so the UI can render without a catalog lookup. PriceCents is a
// pointer: snapshots read back from storage may lack a usable price, and such
// lines are treated as corrupted.
type Snapshot struct {
	Title      string       `json:"title"`
	PriceCents *int64       `json:"price_cents"`
	Image      string       `json:"image"`
	Category   string       `json:"category"`
	Rating     types.Rating `json:"rating"`
}

// Line is one cart entry: product reference, quantity, and display snapshot.
type Line struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Snapshot `json:"product,omitempty"`
}

// valid reports whether the line is structurally sound: positive quantity and
// a snapshot carrying a non-negative price. Total and Sanitize share this
// definition so a line never counts toward the total yet survives cleanup.
func (l Line) valid() bool {
	if l.ProductID == uuid.Nil {
		return false
	}
	if l.Quantity <= 0 {
		return false
	}
	if l.Product == nil || l.Product.PriceCents == nil {
		return false
	}
	return *l.Product.PriceCents >= 0
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
