package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Product mirrors the catalog payload served by GET /api/products.
type Product struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Price       float64      `json:"price"`
	PriceCents  int          `json:"price_cents"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags,omitempty"`
	Rating      types.Rating `json:"rating"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CartItem is one line of the remote cart document.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
}

// Cart is the remote cart payload.
type Cart struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalCents int        `json:"total_cents"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ClearResult mirrors the legacy clear-cart payload.
type ClearResult struct {
	Message string `json:"message"`
	Cart    *Cart  `json:"cart"`
}

// User is the account summary returned by the auth endpoints.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the result of a successful register or login call.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
