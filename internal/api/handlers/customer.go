package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CustomerHandler struct {
	customerService service.CustomerService
	validator       *validator.Validate
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, validator: utils.NewValidator()}
}

// CreateCustomer godoc
//
//	@Summary		Register a customer
//	@Description	Adds a customer to the shop. The contact must be unique within the shop.
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Param			customer	body		models.CreateCustomerRequest	true	"Customer details"
//	@Param			shop_id		query		string							false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		201			{object}	models.Customer					"Customer created"
//	@Failure		400			{object}	response.ErrorResponse			"Validation error"
//	@Failure		401			{object}	response.ErrorResponse			"Authentication required"
//	@Failure		409			{object}	response.ErrorResponse			"Contact already registered"
//	@Failure		500			{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/customers [post]
func (h *CustomerHandler) CreateCustomer() http.HandlerFunc {
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

		var req models.CreateCustomerRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create customer input")
			return
		}

		customer, err := h.customerService.CreateCustomer(r.Context(), shopID, &req)
		if err != nil {
			logger.Warn("Failed to create customer", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Customer created", slog.String("customerId", customer.ID.String()))
		response.Success(w, http.StatusCreated, customer)
	}
}

// FindCustomer godoc
//
//	@Summary		Look up a customer by contact
//	@Tags			Customers
//	@Produce		json
//	@Param			contact	query		string					true	"Phone or other contact"
//	@Param			shop_id	query		string					false	"Shop ID (super admins only)"	Format(uuid)
//	@Success		200		{object}	models.Customer			"Customer"
//	@Failure		400		{object}	response.ErrorResponse	"Missing contact"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Customer not found"
//	@Security		BearerAuth
//	@Router			/customers [get]
func (h *CustomerHandler) FindCustomer() http.HandlerFunc {
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

		contact := strings.TrimSpace(r.URL.Query().Get("contact"))
		if contact == "" {
			response.Error(w, errors.AddValidationError("contact", "is required"))
			return
		}

		customer, err := h.customerService.FindByContact(r.Context(), shopID, contact)
		if err != nil {
			logger.Debug("Customer lookup failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, customer)
	}
}
