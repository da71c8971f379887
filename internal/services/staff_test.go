package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var jwtKey = []byte("test-key")

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestStaffService_CreateStaff(t *testing.T) {
	shopID := uuid.New()
	otherShop := uuid.New()

	tests := []struct {
		name     string
		actor    *models.Claims
		req      *models.CreateStaffRequest
		wantShop uuid.UUID
		wantCode string
	}{
		{
			name:     "Super Admin Creates Vendor Admin",
			actor:    testutils.SuperAdminClaims(),
			req:      &models.CreateStaffRequest{Name: "Vera", Email: "vera@example.com", Password: "secret1", Role: models.RoleVendorAdmin, ShopID: &shopID},
			wantShop: shopID,
		},
		{
			name:     "Super Admin Without Shop",
			actor:    testutils.SuperAdminClaims(),
			req:      &models.CreateStaffRequest{Name: "Vera", Email: "vera@example.com", Password: "secret1", Role: models.RoleVendorAdmin},
			wantCode: appErrors.ErrCodeValidation,
		},
		{
			name:     "Vendor Admin Creates Cashier",
			actor:    testutils.AdminClaims(shopID),
			req:      &models.CreateStaffRequest{Name: "Cal", Email: "cal@example.com", Password: "secret1", Role: models.RoleCashier},
			wantShop: shopID,
		},
		{
			name:     "Vendor Admin Creates Vendor Admin",
			actor:    testutils.AdminClaims(shopID),
			req:      &models.CreateStaffRequest{Name: "Val", Email: "val@example.com", Password: "secret1", Role: models.RoleVendorAdmin},
			wantCode: appErrors.ErrCodeForbidden,
		},
		{
			name:     "Vendor Admin Other Shop",
			actor:    testutils.AdminClaims(shopID),
			req:      &models.CreateStaffRequest{Name: "Cal", Email: "cal@example.com", Password: "secret1", Role: models.RoleCashier, ShopID: &otherShop},
			wantCode: appErrors.ErrCodeForbidden,
		},
		{
			name:     "Cashier Cannot Onboard",
			actor:    testutils.CashierClaims(shopID),
			req:      &models.CreateStaffRequest{Name: "Cal", Email: "cal@example.com", Password: "secret1", Role: models.RoleCashier},
			wantCode: appErrors.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.StaffRepository)
			svc := service.NewStaffService(repo, new(mocks.RateLimitRepository), jwtKey, time.Hour)
			ctx := context.Background()

			if tt.wantCode == "" {
				repo.On("GetStaffByEmail", ctx, tt.req.Email).Return(nil, sql.ErrNoRows).Once()
				repo.On("CreateStaff", ctx, mock.AnythingOfType("*models.Staff")).Return(nil).Once()
			}

			staff, err := svc.CreateStaff(ctx, tt.actor, tt.req)

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				repo.AssertNotCalled(t, "CreateStaff", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, staff.ShopID)
			assert.Equal(t, tt.wantShop, *staff.ShopID)
			assert.Equal(t, tt.req.Role, staff.Role)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(tt.req.Password)))
			repo.AssertExpectations(t)
		})
	}

	t.Run("Duplicate Email", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		svc := service.NewStaffService(repo, new(mocks.RateLimitRepository), jwtKey, time.Hour)
		ctx := context.Background()
		req := &models.CreateStaffRequest{Name: "Cal", Email: "cal@example.com", Password: "secret1", Role: models.RoleCashier}

		repo.On("GetStaffByEmail", ctx, req.Email).Return(&models.Staff{ID: uuid.New()}, nil).Once()

		_, err := svc.CreateStaff(ctx, testutils.AdminClaims(shopID), req)

		assertAppError(t, err, appErrors.ErrCodeDuplicateEntry)
		repo.AssertExpectations(t)
	})

	t.Run("Lookup Failure", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		svc := service.NewStaffService(repo, new(mocks.RateLimitRepository), jwtKey, time.Hour)
		ctx := context.Background()
		req := &models.CreateStaffRequest{Name: "Cal", Email: "cal@example.com", Password: "secret1", Role: models.RoleCashier}

		repo.On("GetStaffByEmail", ctx, req.Email).Return(nil, errors.New("connection reset")).Once()

		_, err := svc.CreateStaff(ctx, testutils.AdminClaims(shopID), req)

		assertAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestStaffService_Login(t *testing.T) {
	shopID := uuid.New()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	staff := &models.Staff{
		ID:       uuid.New(),
		ShopID:   &shopID,
		Email:    "cashier@example.com",
		Password: string(hashed),
		Role:     models.RoleCashier,
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		limiter := new(mocks.RateLimitRepository)
		svc := service.NewStaffService(repo, limiter, jwtKey, 2*time.Hour)
		ctx := context.Background()

		limiter.On("CheckLoginRateLimit", ctx, staff.Email).Return(true, 4, 0, nil).Once()
		repo.On("GetStaffByEmail", ctx, staff.Email).Return(staff, nil).Once()
		limiter.On("ResetLoginAttempts", ctx, staff.Email).Return(nil).Once()

		resp, err := svc.Login(ctx, &models.LoginRequest{Email: staff.Email, Password: "correct-horse"})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 7200, resp.ExpiresIn)

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return jwtKey, nil })
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, staff.ID, claims.UserID)
		assert.Equal(t, models.RoleCashier, claims.Role)
		require.NotNil(t, claims.ShopID)
		assert.Equal(t, shopID, *claims.ShopID)

		repo.AssertExpectations(t)
		limiter.AssertExpectations(t)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		limiter := new(mocks.RateLimitRepository)
		svc := service.NewStaffService(repo, limiter, jwtKey, time.Hour)
		ctx := context.Background()

		limiter.On("CheckLoginRateLimit", ctx, staff.Email).Return(true, 2, 0, nil).Once()
		repo.On("GetStaffByEmail", ctx, staff.Email).Return(staff, nil).Once()

		resp, err := svc.Login(ctx, &models.LoginRequest{Email: staff.Email, Password: "wrong"})

		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Token)
		assert.Equal(t, 2, resp.RemainingTries)
		limiter.AssertNotCalled(t, "ResetLoginAttempts", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		limiter := new(mocks.RateLimitRepository)
		svc := service.NewStaffService(repo, limiter, jwtKey, time.Hour)
		ctx := context.Background()

		limiter.On("CheckLoginRateLimit", ctx, "ghost@example.com").Return(true, 3, 0, nil).Once()
		repo.On("GetStaffByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows).Once()

		resp, err := svc.Login(ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "x"})

		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid email or password", resp.Message)
	})

	t.Run("Throttled", func(t *testing.T) {
		repo := new(mocks.StaffRepository)
		limiter := new(mocks.RateLimitRepository)
		svc := service.NewStaffService(repo, limiter, jwtKey, time.Hour)
		ctx := context.Background()

		limiter.On("CheckLoginRateLimit", ctx, staff.Email).Return(false, 0, 12, nil).Once()

		resp, err := svc.Login(ctx, &models.LoginRequest{Email: staff.Email, Password: "correct-horse"})

		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 12, resp.RetryAfter)
		repo.AssertNotCalled(t, "GetStaffByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Rate Limiter Down", func(t *testing.T) {
		limiter := new(mocks.RateLimitRepository)
		svc := service.NewStaffService(new(mocks.StaffRepository), limiter, jwtKey, time.Hour)
		ctx := context.Background()

		limiter.On("CheckLoginRateLimit", ctx, staff.Email).Return(false, 0, 0, errors.New("redis down")).Once()

		_, err := svc.Login(ctx, &models.LoginRequest{Email: staff.Email, Password: "correct-horse"})

		assertAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})
}

func TestStaffService_GetStaffByID(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{name: "Found"},
		{name: "Not Found", repoErr: sql.ErrNoRows, wantCode: appErrors.ErrCodeNotFound},
		{name: "Database Error", repoErr: errors.New("timeout"), wantCode: appErrors.ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.StaffRepository)
			svc := service.NewStaffService(repo, new(mocks.RateLimitRepository), jwtKey, time.Hour)
			ctx := context.Background()
			id := uuid.New()

			if tt.repoErr != nil {
				repo.On("GetStaffByID", ctx, id).Return(nil, tt.repoErr).Once()
			} else {
				repo.On("GetStaffByID", ctx, id).Return(&models.Staff{ID: id, Name: "Cal"}, nil).Once()
			}

			staff, err := svc.GetStaffByID(ctx, id)

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, staff.ID)
		})
	}
}
