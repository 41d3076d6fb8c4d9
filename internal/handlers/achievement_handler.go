package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/services"
)

// AchievementHandler handles achievement endpoints
type AchievementHandler struct {
	service services.AchievementServiceInterface
}

// NewAchievementHandler creates a new AchievementHandler
func NewAchievementHandler(service services.AchievementServiceInterface) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// Catalog handles GET /api/v1/achievements
func (h *AchievementHandler) Catalog(c *gin.Context) {
	achievements, err := h.service.ListCatalog(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to fetch achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

// List handles GET /api/v1/achievements/my
func (h *AchievementHandler) List(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	achievements, err := h.service.ListForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}
