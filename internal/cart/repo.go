package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/pkg/db/models"
)

// Repository exposes persistence operations for per-user carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the user's cart with lines and product snapshots.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateForUser inserts an empty cart owned by the user.
func (r *Repository) CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record := &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// AddItem inserts a line or increments the quantity of an existing one in a
// single statement, so concurrent adds for the same product never lose
// increments.
func (r *Repository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(&item).Error
}

// SetItemQuantity overwrites the line quantity, inserting the line when absent.
func (r *Repository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   quantity,
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(&item).Error
}

// RemoveItem deletes the line for the product. Removing an absent line is a
// no-op.
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// ClearItems deletes every line in the cart.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// Touch bumps the cart's updated_at after item mutations.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", gorm.Expr("now()")).Error
}
