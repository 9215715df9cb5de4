package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Product represents a catalog listing. Rows are created by seeding and are
// read-only to the storefront.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	PriceCents  int            `gorm:"column:price_cents;not null"`
	Description string         `gorm:"column:description;not null;default:''"`
	Category    string         `gorm:"column:category;not null;index"`
	Image       string         `gorm:"column:image;not null;default:''"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]"`
	Rating      types.Rating   `gorm:"column:rating;type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
