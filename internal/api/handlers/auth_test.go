package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/handlers"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/services/mocks"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStaffHandler_Login(t *testing.T) {
	loginReq := &models.LoginRequest{Email: "cashier@example.com", Password: "s3cret!"}

	matchesLogin := mock.MatchedBy(func(r *models.LoginRequest) bool {
		return r.Email == loginReq.Email && r.Password == loginReq.Password
	})

	tests := []struct {
		name       string
		resp       *models.LoginResponse
		err        error
		wantStatus int
	}{
		{
			name:       "Success - token issued",
			resp:       &models.LoginResponse{Success: true, Token: "jwt-token", ExpiresIn: 86400},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Rejected - wrong password",
			resp:       &models.LoginResponse{Success: false, RemainingTries: 4, Message: "Invalid credentials"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Rejected - throttled",
			resp:       &models.LoginResponse{Success: false, RetryAfter: 900, Message: "Too many login attempts"},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "Failure - service error",
			err:        errors.DatabaseError("Failed to fetch staff"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			staffService := new(mocks.StaffService)
			handler := handlers.NewStaffHandler(staffService)

			staffService.On("Login", mock.Anything, matchesLogin).Return(tt.resp, tt.err).Once()

			req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/auth/login", jsonBody(t, loginReq), nil)
			w := httptest.NewRecorder()

			// Act
			handler.Login()(w, req)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.resp != nil {
				var got models.LoginResponse
				decodeData(t, decodeResponse(t, w), &got)
				assert.Equal(t, *tt.resp, got)
			}

			staffService.AssertExpectations(t)
		})
	}

	t.Run("Failure - invalid input", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		body := jsonBody(t, map[string]string{"email": "not-an-email"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/auth/login", body, nil)
		w := httptest.NewRecorder()

		handler.Login()(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeValidation, errorCode(t, w))
		staffService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestStaffHandler_Profile(t *testing.T) {
	shopID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		claims := testutils.CashierClaims(shopID)
		staff := &models.Staff{ID: claims.UserID, ShopID: &shopID, Name: "Cashier", Email: claims.Email, Role: models.RoleCashier}

		staffService.On("GetStaffByID", mock.Anything, claims.UserID).Return(staff, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/auth/profile", nil, claims, nil)
		w := httptest.NewRecorder()

		handler.Profile()(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got models.Staff
		decodeData(t, decodeResponse(t, w), &got)
		assert.Equal(t, staff.ID, got.ID)
		assert.Equal(t, models.RoleCashier, got.Role)
		staffService.AssertExpectations(t)
	})

	t.Run("Failure - unauthenticated", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/auth/profile", nil, nil)
		w := httptest.NewRecorder()

		handler.Profile()(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, errors.ErrCodeUnauthorized, errorCode(t, w))
		staffService.AssertNotCalled(t, "GetStaffByID", mock.Anything, mock.Anything)
	})
}

func TestStaffHandler_CreateStaff(t *testing.T) {
	shopID := uuid.New()

	createReq := &models.CreateStaffRequest{
		Name:     "New Cashier",
		Email:    "new.cashier@example.com",
		Password: "secret1",
		Role:     models.RoleCashier,
	}

	t.Run("Success", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		claims := testutils.AdminClaims(shopID)
		created := &models.Staff{ID: uuid.New(), ShopID: &shopID, Name: createReq.Name, Email: createReq.Email, Role: createReq.Role}

		staffService.On("CreateStaff", mock.Anything, claims, mock.MatchedBy(func(r *models.CreateStaffRequest) bool {
			return r.Email == createReq.Email && r.Role == models.RoleCashier
		})).Return(created, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/staff", jsonBody(t, createReq), claims, nil)
		w := httptest.NewRecorder()

		handler.CreateStaff()(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var got models.Staff
		decodeData(t, decodeResponse(t, w), &got)
		assert.Equal(t, created.ID, got.ID)
		staffService.AssertExpectations(t)
	})

	t.Run("Failure - forbidden role", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		claims := testutils.AdminClaims(shopID)
		adminReq := *createReq
		adminReq.Role = models.RoleVendorAdmin

		staffService.On("CreateStaff", mock.Anything, claims, mock.Anything).
			Return(nil, errors.ForbiddenError("Vendor admins can only create cashiers")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/staff", jsonBody(t, adminReq), claims, nil)
		w := httptest.NewRecorder()

		handler.CreateStaff()(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, errors.ErrCodeForbidden, errorCode(t, w))
		staffService.AssertExpectations(t)
	})

	t.Run("Failure - super admin role rejected by validation", func(t *testing.T) {
		staffService := new(mocks.StaffService)
		handler := handlers.NewStaffHandler(staffService)

		rootReq := *createReq
		rootReq.Role = models.RoleSuperAdmin

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/staff", jsonBody(t, rootReq), testutils.SuperAdminClaims(), nil)
		w := httptest.NewRecorder()

		handler.CreateStaff()(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeValidation, errorCode(t, w))
		staffService.AssertNotCalled(t, "CreateStaff", mock.Anything, mock.Anything, mock.Anything)
	})
}
