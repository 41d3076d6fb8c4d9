package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
)

// RequestHandler handles mentorship request endpoints
type RequestHandler struct {
	service services.RequestServiceInterface
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service services.RequestServiceInterface) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /api/v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var payload models.CreateRequestPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	request, err := h.service.Create(c.Request.Context(), principal, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to create request")
		return
	}

	c.JSON(http.StatusCreated, request)
}

// List handles GET /api/v1/requests
func (h *RequestHandler) List(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	page, limit := parsePagination(c)
	filter := models.RequestListFilter{
		Status: models.RequestStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	response, err := h.service.List(c.Request.Context(), principal, filter)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch requests")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	principal, requestID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	request, err := h.service.Get(c.Request.Context(), principal, requestID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// Update handles PUT /api/v1/requests/:id
func (h *RequestHandler) Update(c *gin.Context) {
	principal, requestID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var payload models.UpdateRequestPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	request, err := h.service.Update(c.Request.Context(), principal, requestID, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to update request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// Accept handles POST /api/v1/requests/:id/accept
func (h *RequestHandler) Accept(c *gin.Context) {
	h.respond(c, h.service.Accept, "Failed to accept request")
}

// Decline handles POST /api/v1/requests/:id/decline
func (h *RequestHandler) Decline(c *gin.Context) {
	h.respond(c, h.service.Decline, "Failed to decline request")
}

// Cancel handles POST /api/v1/requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	principal, requestID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	request, err := h.service.Cancel(c.Request.Context(), principal, requestID)
	if err != nil {
		handleServiceError(c, err, "Failed to cancel request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// respondFunc is the shared shape of the accept and decline operations
type respondFunc func(ctx context.Context, principal *models.Principal, id string, payload *models.RespondRequestPayload) (*models.Request, error)

// respond is the shared accept/decline endpoint body
func (h *RequestHandler) respond(c *gin.Context, op respondFunc, defaultMsg string) {
	principal, requestID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	// Response message is optional; an empty body is fine
	var payload models.RespondRequestPayload
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
				ParseValidationErrors(bindErr), bindErr)
			return
		}
	}

	request, err := op(c.Request.Context(), principal, requestID, &payload)
	if err != nil {
		handleServiceError(c, err, defaultMsg)
		return
	}

	c.JSON(http.StatusOK, request)
}

// principalAndID extracts the principal and validates the :id route param
func (h *RequestHandler) principalAndID(c *gin.Context) (*models.Principal, string, bool) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, "", false
	}

	requestID := c.Param("id")
	if _, err := uuid.Parse(requestID); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request ID", err)
		return nil, "", false
	}

	return principal, requestID, true
}
