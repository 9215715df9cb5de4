package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/db/models"
)

// CartItemDTO is a single line in the cart payload.
type CartItemDTO struct {
	ProductID uuid.UUID            `json:"productId"`
	Quantity  int                  `json:"quantity"`
	Product   *products.ProductDTO `json:"product,omitempty"`
}

// CartDTO is the cart payload returned to clients. TotalCents is the
// server-side sum of line prices; lines whose product is missing contribute
// nothing.
type CartDTO struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"userId"`
	Items      []CartItemDTO `json:"items"`
	TotalCents int           `json:"total_cents"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ClearResult mirrors the legacy clear-cart payload.
type ClearResult struct {
	Message string   `json:"message"`
	Cart    *CartDTO `json:"cart"`
}

func fromCartModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}

	items := make([]CartItemDTO, 0, len(c.Items))
	total := 0
	for i := range c.Items {
		item := &c.Items[i]
		dto := CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   products.FromModel(item.Product),
		}
		if item.Product != nil && item.Quantity > 0 {
			total += item.Product.PriceCents * item.Quantity
		}
		items = append(items, dto)
	}

	return &CartDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      items,
		TotalCents: total,
		UpdatedAt:  c.UpdatedAt,
	}
}
