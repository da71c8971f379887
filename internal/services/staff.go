package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/metrics"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type StaffService interface {
	CreateStaff(ctx context.Context, actor *models.Claims, req *models.CreateStaffRequest) (*models.Staff, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
}

type staffService struct {
	repo      repository.StaffRepository
	rateLimit repository.RateLimitRepository
	jwtKey    []byte
	expiry    time.Duration
}

func NewStaffService(repo repository.StaffRepository, rateLimit repository.RateLimitRepository, jwtKey []byte, expiry time.Duration) StaffService {
	return &staffService{
		repo:      repo,
		rateLimit: rateLimit,
		jwtKey:    jwtKey,
		expiry:    expiry,
	}
}

// CreateStaff onboards a vendor admin or cashier. Vendor admins can only add
// cashiers to their own shop; super admins must name the shop.
func (s *staffService) CreateStaff(ctx context.Context, actor *models.Claims, req *models.CreateStaffRequest) (*models.Staff, error) {
	shopID, err := onboardingShop(actor, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetStaffByEmail(ctx, req.Email)
	if err != nil && !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to check email").WithError(err)
	}

	if existing != nil {
		return nil, errors.DuplicateEntryError("Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	staff := &models.Staff{
		ShopID:   &shopID,
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	if err := s.repo.CreateStaff(ctx, staff); err != nil {
		return nil, errors.DatabaseError("Failed to create staff").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Staff onboarded",
		slog.String("staffId", staff.ID.String()),
		slog.String("role", string(staff.Role)),
		slog.String("shopId", shopID.String()))

	return staff, nil
}

func onboardingShop(actor *models.Claims, req *models.CreateStaffRequest) (uuid.UUID, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		if req.ShopID == nil {
			return uuid.Nil, errors.ValidationError("shop_id is required")
		}
		return *req.ShopID, nil

	case models.RoleVendorAdmin:
		if req.Role != models.RoleCashier {
			return uuid.Nil, errors.ForbiddenError("Vendor admins can only add cashiers")
		}
		if actor.ShopID == nil {
			return uuid.Nil, errors.ForbiddenError("No shop assigned")
		}
		if req.ShopID != nil && *req.ShopID != *actor.ShopID {
			return uuid.Nil, errors.ForbiddenError("Cannot add staff to another shop")
		}
		return *actor.ShopID, nil

	default:
		return uuid.Nil, errors.ForbiddenError("Insufficient permissions")
	}
}

func (s *staffService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	staff, err := s.repo.GetStaffByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)) != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	now := time.Now()
	claims := &models.Claims{
		UserID: staff.ID,
		Email:  staff.Email,
		Role:   staff.Role,
		ShopID: staff.ShopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	if err := s.rateLimit.ResetLoginAttempts(ctx, req.Email); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to reset login attempts", slog.Any("error", err))
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(s.expiry.Seconds()),
	}, nil
}

func (s *staffService) GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	staff, err := s.repo.GetStaffByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Staff not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch staff").WithError(err)
	}

	return staff, nil
}
