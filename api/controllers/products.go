package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/products"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// ProductsList serves the public catalog with optional category, sort, and
// limit query parameters.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := products.ListFilters{
			Category: r.URL.Query().Get("category"),
			Sort:     r.URL.Query().Get("sort"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer"))
				return
			}
			filters.Limit = limit
		}

		result, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductCategories serves the distinct category list.
func ProductCategories(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
