package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/skillbridge/skillbridge-api/config"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/httpclient"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/trigger"
	"go.uber.org/zap"
)

// SessionService handles the mentorship session lifecycle. Sessions are
// created from accepted requests; participants are copied from the request
// and never change afterwards.
type SessionService struct {
	sessionRepo repository.SessionRepositoryInterface
	requestRepo repository.RequestRepositoryInterface
	config      *config.Config
	httpClient  httpclient.Client
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepositoryInterface, requestRepo repository.RequestRepositoryInterface, cfg *config.Config, httpClient httpclient.Client) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		requestRepo: requestRepo,
		config:      cfg,
		httpClient:  httpClient,
	}
}

// Create schedules a session from an accepted request. Either participant
// may create it.
func (s *SessionService) Create(ctx context.Context, principal *models.Principal, payload *models.CreateSessionPayload) (*models.Session, error) {
	if err := validateDuration(payload.Duration); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, payload.RequestID)
	if err != nil {
		return nil, err
	}

	if request.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this request")
	}
	if request.Status != models.RequestStatusAccepted {
		return nil, apperrors.ConflictError("sessions can only be created from accepted requests")
	}

	if s.config.Engagement.SingleSessionPerRequest {
		count, err := s.sessionRepo.CountByRequest(ctx, payload.RequestID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.ConflictError("a session already exists for this request")
		}
	}

	session := &models.Session{
		ID:               uuid.NewString(),
		RequestID:        request.ID,
		LearnerID:        request.FromUserID,
		MentorID:         request.ToMentorID,
		Title:            payload.Title,
		Description:      payload.Description,
		ScheduledDate:    payload.ScheduledDate,
		Duration:         payload.Duration,
		Status:           models.SessionStatusScheduled,
		MeetingLink:      payload.MeetingLink,
		Objectives:       []models.Objective{},
		Resources:        []models.Resource{},
		IsRecurring:      payload.IsRecurring,
		RecurringPattern: payload.RecurringPattern,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		metrics.SessionsCreated.WithLabelValues("error").Inc()
		logger.Error("Failed to create session",
			zap.String("request_id", payload.RequestID),
			zap.Error(err))
		return nil, err
	}

	metrics.SessionsCreated.WithLabelValues("success").Inc()
	logger.Info("Session created",
		zap.String("session_id", session.ID),
		zap.String("request_id", request.ID),
		zap.String("created_by", principal.UserID))

	return s.sessionRepo.GetByID(ctx, session.ID)
}

// Get retrieves a single session, visible only to its participants
func (s *SessionService) Get(ctx context.Context, principal *models.Principal, id string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this session")
	}

	return session, nil
}

// List returns the caller's sessions from either side of the table
func (s *SessionService) List(ctx context.Context, principal *models.Principal, filter models.SessionListFilter) (*models.SessionsResponse, error) {
	sessions, total, err := s.sessionRepo.ListForUser(ctx, principal.UserID, filter)
	if err != nil {
		return nil, err
	}

	return &models.SessionsResponse{
		Sessions:   sessions,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Update edits a scheduled session's details
func (s *SessionService) Update(ctx context.Context, principal *models.Principal, id string, payload *models.UpdateSessionPayload) (*models.Session, error) {
	if payload.Duration != nil {
		if err := validateDuration(*payload.Duration); err != nil {
			return nil, err
		}
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this session")
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, apperrors.ConflictError("only scheduled sessions can be edited")
	}

	if err := s.sessionRepo.UpdateDetails(ctx, id, payload); err != nil {
		return nil, err
	}

	return s.sessionRepo.GetByID(ctx, id)
}

// Start moves a scheduled session to in-progress, stamping the actual
// start time
func (s *SessionService) Start(ctx context.Context, principal *models.Principal, id string) (*models.Session, error) {
	return s.transition(ctx, principal, id, models.SessionStatusInProgress, true, false)
}

// Complete closes out a session. Allowed straight from scheduled as well,
// since participants often complete without an explicit start.
func (s *SessionService) Complete(ctx context.Context, principal *models.Principal, id string) (*models.Session, error) {
	session, err := s.transition(ctx, principal, id, models.SessionStatusCompleted, false, true)
	if err != nil {
		return nil, err
	}

	if s.config.EventTriggers.SessionCompletedTriggerURL != "" {
		trigger.CallAsync(s.config.EventTriggers.SessionCompletedTriggerURL, id, s.httpClient)
	}

	return session, nil
}

// Cancel cancels a session that has not finished yet
func (s *SessionService) Cancel(ctx context.Context, principal *models.Principal, id string) (*models.Session, error) {
	return s.transition(ctx, principal, id, models.SessionStatusCancelled, false, false)
}

// MarkNoShow records that the other side never turned up
func (s *SessionService) MarkNoShow(ctx context.Context, principal *models.Principal, id string) (*models.Session, error) {
	return s.transition(ctx, principal, id, models.SessionStatusNoShow, false, false)
}

// transition is the shared participant-gated status transition
func (s *SessionService) transition(ctx context.Context, principal *models.Principal, id string, to models.SessionStatus, stampStart, stampEnd bool) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this session")
	}
	if !session.Status.CanTransitionTo(to) {
		logger.Warn("Invalid session status transition",
			zap.String("session_id", id),
			zap.String("from_status", string(session.Status)),
			zap.String("to_status", string(to)))
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot move session from '%s' to '%s'", session.Status, to))
	}

	if err := s.sessionRepo.TransitionStatus(ctx, id, allowedFrom(to), to, stampStart, stampEnd); err != nil {
		return nil, err
	}

	metrics.SessionStatusTransitions.WithLabelValues(string(session.Status), string(to)).Inc()
	logger.Info("Session status transitioned",
		zap.String("session_id", id),
		zap.String("from_status", string(session.Status)),
		zap.String("to_status", string(to)))

	return s.sessionRepo.GetByID(ctx, id)
}

// allowedFrom returns the set of prior statuses the conditional update
// accepts for a target status, mirroring CanTransitionTo
func allowedFrom(to models.SessionStatus) []models.SessionStatus {
	switch to {
	case models.SessionStatusInProgress:
		return []models.SessionStatus{models.SessionStatusScheduled}
	default:
		return []models.SessionStatus{models.SessionStatusScheduled, models.SessionStatusInProgress}
	}
}

// SetNotes writes the caller's own private notes. Notes stay writable
// after the session finishes so participants can record takeaways.
func (s *SessionService) SetNotes(ctx context.Context, principal *models.Principal, id string, payload *models.SessionNotesPayload) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := session.ParticipantRoleOf(principal.UserID)
	if role == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this session")
	}

	if err := s.sessionRepo.SetNotes(ctx, id, role, payload.Notes); err != nil {
		return nil, err
	}

	return s.sessionRepo.GetByID(ctx, id)
}

// AddFeedback submits the caller's rating and comment. Last write wins
// per role.
func (s *SessionService) AddFeedback(ctx context.Context, principal *models.Principal, id string, payload *models.SessionFeedbackPayload) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := session.ParticipantRoleOf(principal.UserID)
	if role == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this session")
	}

	if err := s.sessionRepo.SetFeedback(ctx, id, role, payload.Rating, payload.Comment); err != nil {
		return nil, err
	}

	metrics.SessionFeedbackSubmissions.WithLabelValues(role.String()).Inc()
	logger.Info("Session feedback submitted",
		zap.String("session_id", id),
		zap.String("role", role.String()),
		zap.Int("rating", payload.Rating))

	return s.sessionRepo.GetByID(ctx, id)
}

// validateDuration enforces the session duration bounds in minutes
func validateDuration(minutes int) error {
	if minutes < models.MinSessionDuration || minutes > models.MaxSessionDuration {
		return apperrors.ValidationError("duration",
			fmt.Sprintf("must be between %d and %d minutes", models.MinSessionDuration, models.MaxSessionDuration))
	}
	return nil
}
