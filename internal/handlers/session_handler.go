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

// SessionHandler handles mentorship session endpoints
type SessionHandler struct {
	service services.SessionServiceInterface
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service services.SessionServiceInterface) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var payload models.CreateSessionPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	session, err := h.service.Create(c.Request.Context(), principal, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, session)
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	page, limit := parsePagination(c)
	filter := models.SessionListFilter{
		Status: models.SessionStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	response, err := h.service.List(c.Request.Context(), principal, filter)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	principal, sessionID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	session, err := h.service.Get(c.Request.Context(), principal, sessionID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// Update handles PUT /api/v1/sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	principal, sessionID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var payload models.UpdateSessionPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	session, err := h.service.Update(c.Request.Context(), principal, sessionID, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to update session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// Start handles POST /api/v1/sessions/:id/start
func (h *SessionHandler) Start(c *gin.Context) {
	h.transition(c, h.service.Start, "Failed to start session")
}

// Complete handles POST /api/v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete, "Failed to complete session")
}

// Cancel handles POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel, "Failed to cancel session")
}

// MarkNoShow handles POST /api/v1/sessions/:id/no-show
func (h *SessionHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow, "Failed to mark session as no-show")
}

// transitionFunc is the shared shape of the status transition operations
type transitionFunc func(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)

// transition is the shared status transition endpoint body
func (h *SessionHandler) transition(c *gin.Context, op transitionFunc, defaultMsg string) {
	principal, sessionID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	session, err := op(c.Request.Context(), principal, sessionID)
	if err != nil {
		handleServiceError(c, err, defaultMsg)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetNotes handles PUT /api/v1/sessions/:id/notes
func (h *SessionHandler) SetNotes(c *gin.Context) {
	principal, sessionID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var payload models.SessionNotesPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	session, err := h.service.SetNotes(c.Request.Context(), principal, sessionID, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to save notes")
		return
	}

	c.JSON(http.StatusOK, session)
}

// AddFeedback handles POST /api/v1/sessions/:id/feedback
func (h *SessionHandler) AddFeedback(c *gin.Context) {
	principal, sessionID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var payload models.SessionFeedbackPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body",
			ParseValidationErrors(bindErr), bindErr)
		return
	}

	session, err := h.service.AddFeedback(c.Request.Context(), principal, sessionID, &payload)
	if err != nil {
		handleServiceError(c, err, "Failed to submit feedback")
		return
	}

	c.JSON(http.StatusOK, session)
}

// principalAndID extracts the principal and validates the :id route param
func (h *SessionHandler) principalAndID(c *gin.Context) (*models.Principal, string, bool) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, "", false
	}

	sessionID := c.Param("id")
	if _, err := uuid.Parse(sessionID); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid session ID", err)
		return nil, "", false
	}

	return principal, sessionID, true
}
