package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
)

// UserHandler handles profile and mentor directory endpoints
type UserHandler struct {
	service services.UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service services.UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var payload models.UpdateProfileRequest
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), principal, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar handles POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var payload models.UploadAvatarRequest
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	user, err := h.service.UploadAvatar(c.Request.Context(), principal, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to upload avatar")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListMentors handles GET /api/v1/mentors
func (h *UserHandler) ListMentors(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := models.MentorFilterOptions{
		Skill:  c.Query("skill"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	response, err := h.service.ListMentors(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch mentors")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMentor handles GET /api/v1/mentors/:id
func (h *UserHandler) GetMentor(c *gin.Context) {
	mentorID := c.Param("id")
	if _, err := uuid.Parse(mentorID); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid mentor ID", err)
		return
	}

	mentor, err := h.service.GetMentor(c.Request.Context(), mentorID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch mentor")
		return
	}

	c.JSON(http.StatusOK, mentor)
}
