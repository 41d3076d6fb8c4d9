package services

import (
	"context"
	"time"

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

// RequestService handles the mentorship request lifecycle. All status
// transitions go through the repository's conditional update, so a lost
// race surfaces as a conflict rather than a silent double transition.
type RequestService struct {
	requestRepo repository.RequestRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	config      *config.Config
	httpClient  httpclient.Client
}

// NewRequestService creates a new RequestService
func NewRequestService(requestRepo repository.RequestRepositoryInterface, userRepo repository.UserRepositoryInterface, cfg *config.Config, httpClient httpclient.Client) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		config:      cfg,
		httpClient:  httpClient,
	}
}

// Create opens a new pending request from a learner to a mentor
func (s *RequestService) Create(ctx context.Context, principal *models.Principal, payload *models.CreateRequestPayload) (*models.Request, error) {
	if principal.Role != models.RoleLearner {
		return nil, apperrors.ForbiddenError("only learners can create mentorship requests")
	}
	if payload.ToMentorID == principal.UserID {
		return nil, apperrors.ValidationError("toMentorId", "cannot request mentorship from yourself")
	}

	mentor, err := s.userRepo.GetByID(ctx, payload.ToMentorID)
	if err != nil {
		return nil, err
	}
	if mentor.Role != models.RoleMentor {
		return nil, apperrors.ValidationError("toMentorId", "target user is not a mentor")
	}
	if !mentor.IsActive {
		return nil, apperrors.ValidationError("toMentorId", "mentor is not accepting requests")
	}

	sessionType := payload.SessionType
	if sessionType == "" {
		sessionType = models.SessionTypeOneTime
	}
	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now()
	request := &models.Request{
		ID:                uuid.NewString(),
		FromUserID:        principal.UserID,
		ToMentorID:        payload.ToMentorID,
		Subject:           payload.Subject,
		Message:           payload.Message,
		Skills:            payload.Skills,
		SessionType:       sessionType,
		Priority:          priority,
		PreferredSchedule: payload.PreferredSchedule,
		Status:            models.RequestStatusPending,
		ExpiresAt:         now.Add(time.Duration(s.config.Engagement.RequestTTLDays) * 24 * time.Hour),
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		metrics.RequestsCreated.WithLabelValues("error").Inc()
		logger.Error("Failed to create request",
			zap.String("from_user_id", principal.UserID),
			zap.String("to_mentor_id", payload.ToMentorID),
			zap.Error(err))
		return nil, err
	}

	metrics.RequestsCreated.WithLabelValues("success").Inc()
	logger.Info("Mentorship request created",
		zap.String("request_id", request.ID),
		zap.String("from_user_id", principal.UserID),
		zap.String("to_mentor_id", payload.ToMentorID))

	return s.requestRepo.GetByID(ctx, request.ID)
}

// Get retrieves a single request, visible only to its participants
func (s *RequestService) Get(ctx context.Context, principal *models.Principal, id string) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this request")
	}

	return request, nil
}

// List returns the caller's requests: received ones for mentors, sent
// ones for learners
func (s *RequestService) List(ctx context.Context, principal *models.Principal, filter models.RequestListFilter) (*models.RequestsResponse, error) {
	var (
		requests []*models.Request
		total    int
		err      error
	)

	if principal.Role == models.RoleMentor {
		requests, total, err = s.requestRepo.ListForMentor(ctx, principal.UserID, filter)
	} else {
		requests, total, err = s.requestRepo.ListForLearner(ctx, principal.UserID, filter)
	}
	if err != nil {
		return nil, err
	}

	return &models.RequestsResponse{
		Requests:   requests,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Update edits a pending request. Only the authoring learner may edit,
// and only while the request is still pending and unexpired.
func (s *RequestService) Update(ctx context.Context, principal *models.Principal, id string, payload *models.UpdateRequestPayload) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.FromUserID != principal.UserID {
		return nil, apperrors.ForbiddenError("only the requesting learner can edit this request")
	}
	if expired, err := s.enforceExpiry(ctx, request); expired {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.ConflictError("only pending requests can be edited")
	}

	if err := s.requestRepo.UpdateFields(ctx, id, payload); err != nil {
		return nil, err
	}

	return s.requestRepo.GetByID(ctx, id)
}

// Accept moves a pending request to accepted. Mentor-side only.
func (s *RequestService) Accept(ctx context.Context, principal *models.Principal, id string, payload *models.RespondRequestPayload) (*models.Request, error) {
	return s.respond(ctx, principal, id, models.RequestStatusAccepted, payload.ResponseMessage)
}

// Decline moves a pending request to declined. Mentor-side only.
func (s *RequestService) Decline(ctx context.Context, principal *models.Principal, id string, payload *models.RespondRequestPayload) (*models.Request, error) {
	return s.respond(ctx, principal, id, models.RequestStatusDeclined, payload.ResponseMessage)
}

// respond is the shared mentor-side transition for accept and decline
func (s *RequestService) respond(ctx context.Context, principal *models.Principal, id string, to models.RequestStatus, responseMessage string) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.ParticipantRoleOf(principal.UserID) != models.ParticipantMentor {
		return nil, apperrors.ForbiddenError("only the addressed mentor can respond to this request")
	}
	if expired, err := s.enforceExpiry(ctx, request); expired {
		return nil, err
	}
	if !request.Status.CanTransitionTo(to) {
		logger.Warn("Invalid request status transition",
			zap.String("request_id", id),
			zap.String("from_status", string(request.Status)),
			zap.String("to_status", string(to)))
		return nil, apperrors.ConflictError("request is no longer pending")
	}

	respondedAt := time.Now()
	if err := s.requestRepo.TransitionStatus(ctx, id, models.RequestStatusPending, to, responseMessage, &respondedAt); err != nil {
		return nil, err
	}

	if s.config.EventTriggers.RequestRespondedTriggerURL != "" {
		trigger.CallAsync(s.config.EventTriggers.RequestRespondedTriggerURL, id, s.httpClient)
	}

	logger.Info("Request responded",
		zap.String("request_id", id),
		zap.String("mentor_id", principal.UserID),
		zap.String("to_status", string(to)))

	return s.requestRepo.GetByID(ctx, id)
}

// Cancel withdraws a pending request. Either participant may cancel:
// the learner to withdraw, the mentor to dismiss without a formal decline.
func (s *RequestService) Cancel(ctx context.Context, principal *models.Principal, id string) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.ParticipantRoleOf(principal.UserID) == models.ParticipantNeither {
		return nil, apperrors.ForbiddenError("not a participant of this request")
	}
	if !request.Status.CanTransitionTo(models.RequestStatusCancelled) {
		return nil, apperrors.ConflictError("request is no longer pending")
	}

	if err := s.requestRepo.TransitionStatus(ctx, id, models.RequestStatusPending, models.RequestStatusCancelled, "", nil); err != nil {
		return nil, err
	}

	logger.Info("Request cancelled",
		zap.String("request_id", id),
		zap.String("cancelled_by", principal.UserID))

	return s.requestRepo.GetByID(ctx, id)
}

// enforceExpiry lazily cancels a pending request whose deadline has passed.
// Returns (true, conflict) when the request was expired; the cancel itself
// is best-effort since a racing writer may have already moved the status.
func (s *RequestService) enforceExpiry(ctx context.Context, request *models.Request) (bool, error) {
	if !request.IsExpired(time.Now()) {
		return false, nil
	}

	err := s.requestRepo.TransitionStatus(ctx, request.ID, models.RequestStatusPending, models.RequestStatusCancelled, "", nil)
	if err == nil {
		metrics.RequestsExpired.Inc()
		logger.Info("Expired request cancelled on access", zap.String("request_id", request.ID))
	} else if !apperrors.Is(err, apperrors.ErrConflict) {
		return true, err
	}

	return true, apperrors.ConflictError("request has expired")
}
