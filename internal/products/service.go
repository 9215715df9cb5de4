package products

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Service exposes read-only catalog operations.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	Categories(ctx context.Context) ([]string, error)
}

type catalogRepository interface {
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type service struct {
	repo catalogRepository
}

// NewService constructs a catalog service instance.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return fromModels(items), nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
