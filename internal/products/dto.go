package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/types"
)

// ProductDTO represents the catalog payload returned to clients. Price is
// duplicated as a display value in whole currency units alongside the
// authoritative cents figure.
type ProductDTO struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Price       float64       `json:"price"`
	PriceCents  int           `json:"price_cents"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	Tags        []string     `json:"tags,omitempty"`
	Rating      types.Rating `json:"rating"`
	CreatedAt   time.Time    `json:"created_at"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Price:       float64(p.PriceCents) / 100,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Tags:        append([]string(nil), p.Tags...),
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
	}
	return dto
}

func fromModels(items []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
