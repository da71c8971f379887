package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, validator: utils.NewValidator()}
}

// Search godoc
//
//	@Summary		Search the shop catalog
//	@Description	Case-insensitive match on name, SKU or barcode, optionally limited to one category ("all" for every category).
//	@Tags			Catalog
//	@Produce		json
//	@Param			q			query		string					false	"Name, SKU or barcode fragment"
//	@Param			category	query		string					false	"Category ID or all"
//	@Param			shop_id		query		string					false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		200			{array}		models.Product			"Matching products"
//	@Failure		400			{object}	response.ErrorResponse	"Invalid query"
//	@Failure		401			{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/catalog [get]
func (h *CatalogHandler) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		shopID, err := requestShop(r, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		query := models.CatalogQuery{
			Query:    r.URL.Query().Get("q"),
			Category: r.URL.Query().Get("category"),
		}

		if err := utils.ValidateStruct(h.validator, query); err != nil {
			response.Error(w, errors.ValidationError("Invalid catalog query").WithError(err).WithDetail(err.Error()))
			return
		}

		products, err := h.catalogService.Search(r.Context(), shopID, &query)
		if err != nil {
			logger.Error("Catalog search failed", slog.String("shopId", shopID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Debug("Catalog searched", slog.String("q", query.Query), slog.Int("results", len(products)))
		response.Success(w, http.StatusOK, products)
	}
}

// Categories godoc
//
//	@Summary		List catalog categories
//	@Tags			Catalog
//	@Produce		json
//	@Param			shop_id	query		string					false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		200		{array}		models.Category			"Categories"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/catalog/categories [get]
func (h *CatalogHandler) Categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		shopID, err := requestShop(r, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		categories, err := h.catalogService.Categories(r.Context(), shopID)
		if err != nil {
			logger.Error("Failed to list categories", slog.String("shopId", shopID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if categories == nil {
			categories = []models.Category{}
		}

		response.Success(w, http.StatusOK, categories)
	}
}

// Invalidate godoc
//
//	@Summary		Drop the cached catalog
//	@Description	Forces the next catalog read to reload products and categories from the database.
//	@Tags			Catalog
//	@Param			shop_id	query	string	false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		204
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Admins only"
//	@Failure		500	{object}	response.ErrorResponse	"Cache unavailable"
//	@Security		BearerAuth
//	@Router			/catalog/cache [delete]
func (h *CatalogHandler) Invalidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		shopID, err := requestShop(r, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.catalogService.Invalidate(r.Context(), shopID); err != nil {
			logger.Error("Failed to invalidate catalog", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Catalog cache invalidated", slog.String("shopId", shopID.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
