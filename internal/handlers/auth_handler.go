package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
)

// AuthHandler handles authentication introspection endpoints
type AuthHandler struct{}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// GetSession handles GET /api/v1/auth/session. The principal was already
// verified by the auth middleware; this just echoes it back so clients can
// inspect who the token says they are.
func (h *AuthHandler) GetSession(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	c.JSON(http.StatusOK, principal)
}
