package services

import (
	"fmt"

	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/jwt"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/models"
)

// AuthService verifies access tokens and turns them into principals
type AuthService struct {
	tokenManager *jwt.TokenManager
}

// NewAuthService creates a new AuthService
func NewAuthService(tokenManager *jwt.TokenManager) *AuthService {
	return &AuthService{tokenManager: tokenManager}
}

// Authenticate validates a bearer token and returns the principal it
// describes. All failures collapse into ErrUnauthorized; the reason is
// logged, never surfaced to the caller.
func (s *AuthService) Authenticate(token string) (*models.Principal, error) {
	claims, err := s.tokenManager.ValidateToken(token)
	if err != nil {
		logger.Debug("Token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid or expired token: %w", apperrors.ErrUnauthorized)
	}

	role := models.Role(claims.Role)
	if !role.IsValid() {
		logger.Warn("Token carries unknown role",
			zap.String("user_id", claims.UserID),
			zap.String("role", claims.Role))
		return nil, fmt.Errorf("unknown role: %w", apperrors.ErrUnauthorized)
	}

	principal := &models.Principal{
		UserID: claims.UserID,
		Role:   role,
		Email:  claims.Email,
		Name:   claims.Name,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Unix()
	}

	return principal, nil
}
