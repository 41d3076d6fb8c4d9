package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	"github.com/skillbridge/skillbridge-api/pkg/jwt"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Level:       "info",
		Environment: "test",
		ServiceName: "skillbridge-api-test",
	})
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *jwt.TokenManager) {
	t.Helper()

	tokenManager := jwt.NewTokenManager("test-secret", "skillbridge-api", 1)
	authService := services.NewAuthService(tokenManager)

	router := gin.New()
	router.GET("/protected", middleware.AuthMiddleware(authService), func(c *gin.Context) {
		principal, err := middleware.GetPrincipal(c)
		assert.NoError(t, err)
		c.JSON(http.StatusOK, principal)
	})
	router.GET("/mentors-only",
		middleware.AuthMiddleware(authService),
		middleware.RequireRole(models.RoleMentor),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

	return router, tokenManager
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, tokenManager := setupAuthRouter(t)

	token, err := tokenManager.GenerateToken("user-1", "learner", "learner@example.com", "Learner")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router, tokenManager := setupAuthRouter(t)

	token, err := tokenManager.GenerateToken("user-1", "learner", "learner@example.com", "Learner")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token) // no Bearer prefix
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router, tokenManager := setupAuthRouter(t)

	mentorToken, err := tokenManager.GenerateToken("mentor-1", "mentor", "mentor@example.com", "Mentor")
	assert.NoError(t, err)
	learnerToken, err := tokenManager.GenerateToken("learner-1", "learner", "learner@example.com", "Learner")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mentors-only", nil)
	req.Header.Set("Authorization", "Bearer "+mentorToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/mentors-only", nil)
	req.Header.Set("Authorization", "Bearer "+learnerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
