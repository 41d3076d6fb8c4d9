package services_test

import (
	"testing"

	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
)

func TestAuthService_Authenticate(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "skillbridge-api", 1)
	service := services.NewAuthService(tokenManager)

	token, err := tokenManager.GenerateToken(mentorID, "mentor", "mentor@example.com", "Test Mentor")
	assert.NoError(t, err)

	principal, err := service.Authenticate(token)
	assert.NoError(t, err)
	assert.Equal(t, mentorID, principal.UserID)
	assert.Equal(t, models.RoleMentor, principal.Role)
	assert.Equal(t, "mentor@example.com", principal.Email)
	assert.Greater(t, principal.ExpiresAt, principal.IssuedAt)
}

func TestAuthService_Authenticate_BadToken(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "skillbridge-api", 1)
	service := services.NewAuthService(tokenManager)

	_, err := service.Authenticate("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Authenticate_WrongSecret(t *testing.T) {
	minter := jwt.NewTokenManager("other-secret", "skillbridge-api", 1)
	service := services.NewAuthService(jwt.NewTokenManager("test-secret", "skillbridge-api", 1))

	token, err := minter.GenerateToken(mentorID, "mentor", "mentor@example.com", "Test Mentor")
	assert.NoError(t, err)

	_, err = service.Authenticate(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Authenticate_UnknownRole(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "skillbridge-api", 1)
	service := services.NewAuthService(tokenManager)

	token, err := tokenManager.GenerateToken(mentorID, "admin", "admin@example.com", "Admin")
	assert.NoError(t, err)

	_, err = service.Authenticate(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
