package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	validator      *validator.Validate
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, validator: utils.NewValidator()}
}

// GetInvoice godoc
//
//	@Summary		Get an invoice
//	@Tags			Invoices
//	@Produce		json
//	@Param			id		path		string					true	"Invoice ID"	Format(uuid)
//	@Param			shop_id	query		string					false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		200		{object}	models.Invoice			"Invoice"
//	@Failure		400		{object}	response.ErrorResponse	"Invalid invoice ID"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Invoice not found"
//	@Security		BearerAuth
//	@Router			/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice() http.HandlerFunc {
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

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid invoice id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		invoice, err := h.invoiceService.GetInvoice(r.Context(), shopID, id)
		if err != nil {
			logger.Warn("Failed to get invoice", slog.String("invoiceId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, invoice)
	}
}

// ListInvoices godoc
//
//	@Summary		List the shop's invoices
//	@Description	Newest first, paginated.
//	@Tags			Invoices
//	@Produce		json
//	@Param			page		query		int												false	"Page number (default: 1)"				minimum(1)
//	@Param			pageSize	query		int												false	"Page size (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Param			shop_id		query		string											false	"Shop ID (super admins only)"			Format(uuid)
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Invoice}	"Invoices"
//	@Failure		401			{object}	response.ErrorResponse							"Authentication required"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/invoices [get]
func (h *InvoiceHandler) ListInvoices() http.HandlerFunc {
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

		page, size := utils.ParsePagination(r)

		invoices, total, err := h.invoiceService.ListInvoices(r.Context(), shopID, page, size)
		if err != nil {
			logger.Error("Failed to list invoices", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if invoices == nil {
			invoices = []*models.Invoice{}
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     invoices,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}

// ResendReceipt godoc
//
//	@Summary		Email a receipt again
//	@Tags			Invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Invoice ID"	Format(uuid)
//	@Param			receipt	body		models.ResendReceiptRequest	true	"Recipient"
//	@Success		200		{object}	models.Notification			"Receipt sent"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		404		{object}	response.ErrorResponse		"Invoice not found"
//	@Failure		500		{object}	response.ErrorResponse		"Email provider error"
//	@Security		BearerAuth
//	@Router			/invoices/{id}/receipt [post]
func (h *InvoiceHandler) ResendReceipt() http.HandlerFunc {
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

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.ResendReceiptRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		notification, err := h.invoiceService.ResendReceipt(r.Context(), shopID, id, req.Email)
		if err != nil {
			logger.Error("Failed to resend receipt", slog.String("invoiceId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Receipt resent", slog.String("invoiceId", id.String()))
		response.Success(w, http.StatusOK, notification)
	}
}
