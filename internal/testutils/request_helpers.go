package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/google/uuid"
)

// CreateTestRequestWithContext builds a request as it looks after Logging and
// Authenticate have run for the given staff claims.
func CreateTestRequestWithContext(method, target string, body io.Reader, claims *models.Claims, pathParams map[string]string) *http.Request {
	req := CreateTestRequestWithoutContext(method, target, body, pathParams)

	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)

	return req.WithContext(ctx)
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return req.WithContext(middleware.WithLogger(req.Context(), logger))
}

func CashierClaims(shopID uuid.UUID) *models.Claims {
	return &models.Claims{UserID: uuid.New(), Email: "cashier@example.com", Role: models.RoleCashier, ShopID: &shopID}
}

func AdminClaims(shopID uuid.UUID) *models.Claims {
	return &models.Claims{UserID: uuid.New(), Email: "admin@example.com", Role: models.RoleVendorAdmin, ShopID: &shopID}
}

func SuperAdminClaims() *models.Claims {
	return &models.Claims{UserID: uuid.New(), Email: "root@example.com", Role: models.RoleSuperAdmin}
}
