package products

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters describe the supported filter knobs for the catalog endpoint.
type ListFilters struct {
	Category string
	Sort     string
	Limit    int
}

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns catalog rows honoring the optional category filter and sort.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	switch strings.ToLower(strings.TrimSpace(filters.Sort)) {
	case "desc":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("created_at ASC")
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var items []models.Product
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListCategories returns the distinct category names in the catalog.
func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
