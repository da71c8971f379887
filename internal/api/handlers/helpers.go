package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils/response"
	"github.com/google/uuid"
)

// staffFromRequest writes a 401 and returns false when the request carries no claims.
func staffFromRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*models.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthorized access attempt: missing staff claims")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// requestShop is the caller's own shop. Super admins have none and pass
// shop_id as a query value instead.
func requestShop(r *http.Request, claims *models.Claims) (uuid.UUID, error) {
	if claims.Role == models.RoleSuperAdmin {
		raw := r.URL.Query().Get("shop_id")
		if raw == "" {
			return uuid.Nil, errors.AddValidationError("shop_id", "required for super admins")
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errors.BadRequestError("Invalid shop_id format").WithError(err)
		}

		return id, nil
	}

	if claims.ShopID == nil {
		return uuid.Nil, errors.ForbiddenError("Staff member is not assigned to a shop")
	}

	return *claims.ShopID, nil
}
