package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type RegisterHandler struct {
	registerService service.RegisterService
	validator       *validator.Validate
}

func NewRegisterHandler(registerService service.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService, validator: utils.NewValidator()}
}

type registerAction func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error)

// serve resolves the staff claims and the {id} path value, then runs fn and
// renders its result.
func (h *RegisterHandler) serve(w http.ResponseWriter, r *http.Request, action string, fn registerAction) {
	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := staffFromRequest(w, r, logger)
	if !ok {
		return
	}

	id, err := utils.ParseID(r, "id")
	if err != nil {
		logger.Warn("Invalid register id", slog.String("error", err.Error()))
		response.Error(w, err)
		return
	}

	logger = logger.With(slog.String("registerId", id.String()), slog.String("action", action))

	result, err := fn(r.Context(), claims, id)
	if err != nil {
		logger.Warn("Register action failed", slog.Any("error", err))
		response.Error(w, err)
		return
	}

	logger.Debug("Register action applied")
	response.Success(w, http.StatusOK, result)
}

// OpenRegister godoc
//
//	@Summary		Open a register
//	@Description	Starts a register session with an empty cart for the caller's shop. Super admins must pass shop_id.
//	@Tags			Registers
//	@Accept			json
//	@Produce		json
//	@Param			register	body		models.OpenRegisterRequest	false	"Shop to open the register for"
//	@Success		201			{object}	models.RegisterView			"Register opened"
//	@Failure		400			{object}	response.ErrorResponse		"Validation error"
//	@Failure		401			{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403			{object}	response.ErrorResponse		"Not allowed for this shop"
//	@Security		BearerAuth
//	@Router			/registers [post]
func (h *RegisterHandler) OpenRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		var req models.OpenRegisterRequest
		if r.ContentLength > 0 && !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid open register input")
			return
		}

		view, err := h.registerService.OpenRegister(r.Context(), claims, &req)
		if err != nil {
			logger.Warn("Failed to open register", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Register opened", slog.String("registerId", view.ID.String()))
		response.Success(w, http.StatusCreated, view)
	}
}

// GetRegister godoc
//
//	@Summary		Get a register
//	@Description	Returns the cart lines, totals and checkout status of a register.
//	@Tags			Registers
//	@Produce		json
//	@Param			id	path		string					true	"Register ID"	Format(uuid)
//	@Success		200	{object}	models.RegisterView		"Register"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid register ID"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Register not found"
//	@Security		BearerAuth
//	@Router			/registers/{id} [get]
func (h *RegisterHandler) GetRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "get", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.GetRegister(ctx, claims, id)
		})
	}
}

// CloseRegister godoc
//
//	@Summary		Close a register
//	@Description	Discards the register together with any unfinished sale.
//	@Tags			Registers
//	@Param			id	path	string	true	"Register ID"	Format(uuid)
//	@Success		204
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Register not found"
//	@Security		BearerAuth
//	@Router			/registers/{id} [delete]
func (h *RegisterHandler) CloseRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.registerService.CloseRegister(r.Context(), claims, id); err != nil {
			logger.Warn("Failed to close register", slog.String("registerId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AddItem godoc
//
//	@Summary		Add a product to the cart
//	@Description	Adds quantity units of a catalog product. An existing line has its quantity increased.
//	@Tags			Registers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Register ID"	Format(uuid)
//	@Param			item	body		models.AddItemRequest	true	"Product and quantity"
//	@Success		200		{object}	models.RegisterView		"Updated register"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		404		{object}	response.ErrorResponse	"Register or product not found"
//	@Failure		409		{object}	response.ErrorResponse	"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/items [post]
func (h *RegisterHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.serve(w, r, "add_item", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.AddItem(ctx, claims, id, &req)
		})
	}
}

// UpdateQuantity godoc
//
//	@Summary		Change a line quantity
//	@Tags			Registers
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string							true	"Register ID"	Format(uuid)
//	@Param			productId	path		string							true	"Product ID"	Format(uuid)
//	@Param			quantity	body		models.UpdateQuantityRequest	true	"New quantity (at least 1)"
//	@Success		200			{object}	models.RegisterView				"Updated register"
//	@Failure		400			{object}	response.ErrorResponse			"Validation error"
//	@Failure		404			{object}	response.ErrorResponse			"Register or line not found"
//	@Failure		409			{object}	response.ErrorResponse			"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/items/{productId} [put]
func (h *RegisterHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.serve(w, r, "update_quantity", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.UpdateQuantity(ctx, claims, id, productID, req.Quantity)
		})
	}
}

// RemoveItem godoc
//
//	@Summary		Remove a line from the cart
//	@Description	Succeeds whether or not the product is in the cart.
//	@Tags			Registers
//	@Produce		json
//	@Param			id			path		string					true	"Register ID"	Format(uuid)
//	@Param			productId	path		string					true	"Product ID"	Format(uuid)
//	@Success		200			{object}	models.RegisterView		"Updated register"
//	@Failure		404			{object}	response.ErrorResponse	"Register not found"
//	@Failure		409			{object}	response.ErrorResponse	"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/items/{productId} [delete]
func (h *RegisterHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		h.serve(w, r, "remove_item", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.RemoveItem(ctx, claims, id, productID)
		})
	}
}

// ApplyItemDiscount godoc
//
//	@Summary		Discount one line
//	@Description	Sets the line discount. It is capped at the line subtotal.
//	@Tags			Registers
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string					true	"Register ID"	Format(uuid)
//	@Param			productId	path		string					true	"Product ID"	Format(uuid)
//	@Param			discount	body		models.DiscountRequest	true	"Discount amount"
//	@Success		200			{object}	models.RegisterView		"Updated register"
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		404			{object}	response.ErrorResponse	"Register or line not found"
//	@Failure		409			{object}	response.ErrorResponse	"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/items/{productId}/discount [put]
func (h *RegisterHandler) ApplyItemDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.DiscountRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		amount, err := pricing.ParseAmount(req.Amount)
		if err != nil {
			response.Error(w, errors.AddValidationError("amount", err.Error()))
			return
		}

		h.serve(w, r, "item_discount", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.ApplyItemDiscount(ctx, claims, id, productID, amount)
		})
	}
}

// ApplyCartDiscount godoc
//
//	@Summary		Discount the whole cart
//	@Description	Sets the cart discount. It never takes the total below zero.
//	@Tags			Registers
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string					true	"Register ID"	Format(uuid)
//	@Param			discount	body		models.DiscountRequest	true	"Discount amount"
//	@Success		200			{object}	models.RegisterView		"Updated register"
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		404			{object}	response.ErrorResponse	"Register not found"
//	@Failure		409			{object}	response.ErrorResponse	"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/discount [put]
func (h *RegisterHandler) ApplyCartDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.DiscountRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		amount, err := pricing.ParseAmount(req.Amount)
		if err != nil {
			response.Error(w, errors.AddValidationError("amount", err.Error()))
			return
		}

		h.serve(w, r, "cart_discount", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.ApplyCartDiscount(ctx, claims, id, amount)
		})
	}
}

// ClearCart godoc
//
//	@Summary		Empty the cart
//	@Tags			Registers
//	@Produce		json
//	@Param			id	path		string					true	"Register ID"	Format(uuid)
//	@Success		200	{object}	models.RegisterView		"Updated register"
//	@Failure		404	{object}	response.ErrorResponse	"Register not found"
//	@Failure		409	{object}	response.ErrorResponse	"Checkout in progress"
//	@Security		BearerAuth
//	@Router			/registers/{id}/items [delete]
func (h *RegisterHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "clear_cart", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.ClearCart(ctx, claims, id)
		})
	}
}

// OpenCheckout godoc
//
//	@Summary		Open checkout
//	@Description	Starts taking payment: cash is selected and the tender is pre-filled with the total.
//	@Tags			Checkout
//	@Produce		json
//	@Param			id	path		string					true	"Register ID"	Format(uuid)
//	@Success		200	{object}	models.RegisterView		"Checkout open"
//	@Failure		400	{object}	response.ErrorResponse	"Cart is empty"
//	@Failure		404	{object}	response.ErrorResponse	"Register not found"
//	@Failure		409	{object}	response.ErrorResponse	"Checkout already open"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout [post]
func (h *RegisterHandler) OpenCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "open_checkout", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.OpenCheckout(ctx, claims, id)
		})
	}
}

// SelectMethod godoc
//
//	@Summary		Choose the payment method
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Register ID"	Format(uuid)
//	@Param			method	body		models.PaymentMethodRequest	true	"cash, card or other"
//	@Success		200		{object}	models.RegisterView			"Updated register"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		409		{object}	response.ErrorResponse		"Checkout not open"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout/method [put]
func (h *RegisterHandler) SelectMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PaymentMethodRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.serve(w, r, "select_method", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.SelectMethod(ctx, claims, id, req.Method)
		})
	}
}

// EnterTender godoc
//
//	@Summary		Enter the cash tendered
//	@Description	Replaces the cash amount. A malformed amount is ignored: accepted is false and the previous tender stays.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Register ID"	Format(uuid)
//	@Param			tender	body		models.TenderRequest	true	"Cash amount as typed"
//	@Success		200		{object}	models.TenderResponse	"Tender result"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		409		{object}	response.ErrorResponse	"Checkout not open or not cash"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout/tender [put]
func (h *RegisterHandler) EnterTender() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.TenderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.serve(w, r, "enter_tender", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.EnterTender(ctx, claims, id, req.Amount)
		})
	}
}

// AttachCustomer godoc
//
//	@Summary		Attach a customer to the sale
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string							true	"Register ID"	Format(uuid)
//	@Param			customer	body		models.AttachCustomerRequest	true	"Customer"
//	@Success		200			{object}	models.RegisterView				"Updated register"
//	@Failure		404			{object}	response.ErrorResponse			"Register or customer not found"
//	@Failure		409			{object}	response.ErrorResponse			"Checkout not open"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout/customer [put]
func (h *RegisterHandler) AttachCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AttachCustomerRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.serve(w, r, "attach_customer", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.AttachCustomer(ctx, claims, id, req.CustomerID)
		})
	}
}

// CompleteCheckout godoc
//
//	@Summary		Complete the sale
//	@Description	Creates the invoice. The cart is cleared once the completion display elapses or the cashier moves on.
//	@Tags			Checkout
//	@Produce		json
//	@Param			id	path		string							true	"Register ID"	Format(uuid)
//	@Success		200	{object}	models.CompleteCheckoutResponse	"Invoice and register"
//	@Failure		404	{object}	response.ErrorResponse			"Register not found"
//	@Failure		409	{object}	response.ErrorResponse			"Checkout not open"
//	@Failure		422	{object}	response.ErrorResponse			"Tendered amount below total"
//	@Failure		500	{object}	response.ErrorResponse			"Invoice could not be stored"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout/complete [post]
func (h *RegisterHandler) CompleteCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "complete_checkout", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			resp, err := h.registerService.CompleteCheckout(ctx, claims, id)
			if err != nil {
				return nil, err
			}

			middleware.LoggerFromContext(ctx).Info("Sale completed", slog.String("invoiceId", resp.Invoice.ID.String()))

			return resp, nil
		})
	}
}

// CancelCheckout godoc
//
//	@Summary		Cancel checkout
//	@Description	Closes the payment step and keeps the cart. After a completed sale it starts the next one immediately.
//	@Tags			Checkout
//	@Produce		json
//	@Param			id	path		string					true	"Register ID"	Format(uuid)
//	@Success		200	{object}	models.RegisterView		"Updated register"
//	@Failure		404	{object}	response.ErrorResponse	"Register not found"
//	@Failure		409	{object}	response.ErrorResponse	"Invoice being created"
//	@Security		BearerAuth
//	@Router			/registers/{id}/checkout [delete]
func (h *RegisterHandler) CancelCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "cancel_checkout", func(ctx context.Context, claims *models.Claims, id uuid.UUID) (any, error) {
			return h.registerService.CancelCheckout(ctx, claims, id)
		})
	}
}
