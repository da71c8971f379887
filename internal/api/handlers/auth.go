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

type StaffHandler struct {
	staffService service.StaffService
	validator    *validator.Validate
}

func NewStaffHandler(staffService service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService, validator: utils.NewValidator()}
}

// Login godoc
//
//	@Summary		Log in a staff member
//	@Description	Authenticates a cashier or admin and returns a JWT. Attempts are rate limited per email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		models.LoginRequest		true	"Login credentials"
//	@Success		200			{object}	models.LoginResponse	"Login successful"
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		401			{object}	models.LoginResponse	"Invalid credentials"
//	@Failure		429			{object}	models.LoginResponse	"Too many attempts"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/auth/login [post]
func (h *StaffHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid login input")
			return
		}

		resp, err := h.staffService.Login(r.Context(), &req)
		if err != nil {
			logger.Error("Login failed", slog.String("email", req.Email), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if !resp.Success {
			status := http.StatusUnauthorized
			if resp.RetryAfter > 0 {
				status = http.StatusTooManyRequests
			}

			logger.Warn("Login rejected", slog.String("email", req.Email), slog.Int("status", status))
			response.Success(w, status, resp)
			return
		}

		logger.Info("Staff logged in", slog.String("email", req.Email))
		response.Success(w, http.StatusOK, resp)
	}
}

// Profile godoc
//
//	@Summary		Current staff profile
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	models.Staff			"Profile"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Staff not found"
//	@Security		BearerAuth
//	@Router			/auth/profile [get]
func (h *StaffHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		staff, err := h.staffService.GetStaffByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Warn("Failed to load profile", slog.String("staffId", claims.UserID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, staff)
	}
}

// CreateStaff godoc
//
//	@Summary		Onboard a staff member
//	@Description	Super admins create vendor admins or cashiers for any shop; vendor admins create cashiers for their own shop.
//	@Tags			Staff
//	@Accept			json
//	@Produce		json
//	@Param			staff	body		models.CreateStaffRequest	true	"New staff member"
//	@Success		201		{object}	models.Staff				"Staff created"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Not allowed to create this role or shop"
//	@Failure		409		{object}	response.ErrorResponse		"Email already registered"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/staff [post]
func (h *StaffHandler) CreateStaff() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := staffFromRequest(w, r, logger)
		if !ok {
			return
		}

		var req models.CreateStaffRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create staff input")
			return
		}

		staff, err := h.staffService.CreateStaff(r.Context(), claims, &req)
		if err != nil {
			logger.Warn("Failed to create staff", slog.String("email", req.Email), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Staff created", slog.String("staffId", staff.ID.String()))
		response.Success(w, http.StatusCreated, staff)
	}
}
