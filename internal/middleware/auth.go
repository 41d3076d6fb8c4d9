package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"go.uber.org/zap"
)

// PrincipalContextKey is the key used to store the principal in context
const PrincipalContextKey = "principal"

var (
	ErrPrincipalNotFound = errors.New("principal not found in context")
	ErrInvalidPrincipal  = errors.New("invalid principal type")
)

// AuthMiddleware validates the bearer token and attaches the principal to
// the request context
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		principal, err := authService.Authenticate(token)
		if err != nil {
			_ = c.Error(err) //nolint:errcheck
			logger.Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireRole rejects callers whose platform role does not match. Must run
// after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if principal.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(c *gin.Context) (*models.Principal, error) {
	val, exists := c.Get(PrincipalContextKey)
	if !exists {
		return nil, ErrPrincipalNotFound
	}

	principal, ok := val.(*models.Principal)
	if !ok {
		return nil, ErrInvalidPrincipal
	}

	return principal, nil
}
