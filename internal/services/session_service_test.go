package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/skillbridge/skillbridge-api/config"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const sessionID = "55555555-5555-5555-5555-555555555555"

func acceptedRequest() *models.Request {
	req := pendingRequest()
	req.Status = models.RequestStatusAccepted
	return req
}

func scheduledSession() *models.Session {
	return &models.Session{
		ID:            sessionID,
		RequestID:     requestID,
		LearnerID:     learnerID,
		MentorID:      mentorID,
		Title:         "Go concurrency deep dive",
		ScheduledDate: time.Now().Add(48 * time.Hour),
		Duration:      60,
		Status:        models.SessionStatusScheduled,
	}
}

func newSessionService(sessionRepo *MockSessionRepository, requestRepo *MockRequestRepository, singleSession bool) *services.SessionService {
	cfg := &config.Config{}
	cfg.Engagement.SingleSessionPerRequest = singleSession
	return services.NewSessionService(sessionRepo, requestRepo, cfg, new(MockHTTPClient))
}

func TestSessionService_Create(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	requestRepo := new(MockRequestRepository)
	service := newSessionService(sessionRepo, requestRepo, false)
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(acceptedRequest(), nil).Once()
	sessionRepo.On("Create", ctx, mock.AnythingOfType("*models.Session")).Return(nil).Once()
	sessionRepo.On("GetByID", ctx, mock.AnythingOfType("string")).Return(scheduledSession(), nil).Once()

	payload := &models.CreateSessionPayload{
		RequestID:     requestID,
		Title:         "Go concurrency deep dive",
		ScheduledDate: time.Now().Add(48 * time.Hour),
		Duration:      60,
	}

	session, err := service.Create(ctx, mentorPrincipal(), payload)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusScheduled, session.Status)

	// Participants are copied from the request, not the payload
	createdArg := sessionRepo.Calls[0].Arguments.Get(1).(*models.Session)
	assert.Equal(t, learnerID, createdArg.LearnerID)
	assert.Equal(t, mentorID, createdArg.MentorID)

	sessionRepo.AssertExpectations(t)
	requestRepo.AssertExpectations(t)
}

func TestSessionService_Create_RequestNotAccepted(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	requestRepo := new(MockRequestRepository)
	service := newSessionService(sessionRepo, requestRepo, false)
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()

	payload := &models.CreateSessionPayload{
		RequestID:     requestID,
		Title:         "Too early",
		ScheduledDate: time.Now().Add(time.Hour),
		Duration:      60,
	}

	_, err := service.Create(ctx, mentorPrincipal(), payload)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionService_Create_NonParticipantForbidden(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	requestRepo := new(MockRequestRepository)
	service := newSessionService(sessionRepo, requestRepo, false)
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(acceptedRequest(), nil).Once()

	payload := &models.CreateSessionPayload{
		RequestID:     requestID,
		Title:         "Not yours",
		ScheduledDate: time.Now().Add(time.Hour),
		Duration:      60,
	}

	stranger := &models.Principal{UserID: otherID, Role: models.RoleMentor}
	_, err := service.Create(ctx, stranger, payload)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSessionService_Create_DurationBounds(t *testing.T) {
	service := newSessionService(new(MockSessionRepository), new(MockRequestRepository), false)
	ctx := context.Background()

	for _, minutes := range []int{0, 14, 241} {
		payload := &models.CreateSessionPayload{
			RequestID:     requestID,
			Title:         "Bad duration",
			ScheduledDate: time.Now().Add(time.Hour),
			Duration:      minutes,
		}
		_, err := service.Create(ctx, mentorPrincipal(), payload)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestSessionService_Create_SingleSessionPolicy(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	requestRepo := new(MockRequestRepository)
	service := newSessionService(sessionRepo, requestRepo, true)
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(acceptedRequest(), nil).Once()
	sessionRepo.On("CountByRequest", ctx, requestID).Return(1, nil).Once()

	payload := &models.CreateSessionPayload{
		RequestID:     requestID,
		Title:         "Second session",
		ScheduledDate: time.Now().Add(time.Hour),
		Duration:      60,
	}

	_, err := service.Create(ctx, mentorPrincipal(), payload)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_Start(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	started := scheduledSession()
	started.Status = models.SessionStatusInProgress

	sessionRepo.On("GetByID", ctx, sessionID).Return(scheduledSession(), nil).Once()
	sessionRepo.On("TransitionStatus", ctx, sessionID,
		[]models.SessionStatus{models.SessionStatusScheduled},
		models.SessionStatusInProgress, true, false).Return(nil).Once()
	sessionRepo.On("GetByID", ctx, sessionID).Return(started, nil).Once()

	session, err := service.Start(ctx, mentorPrincipal(), sessionID)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusInProgress, session.Status)
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_Complete_FromScheduled(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	completed := scheduledSession()
	completed.Status = models.SessionStatusCompleted

	sessionRepo.On("GetByID", ctx, sessionID).Return(scheduledSession(), nil).Once()
	sessionRepo.On("TransitionStatus", ctx, sessionID,
		[]models.SessionStatus{models.SessionStatusScheduled, models.SessionStatusInProgress},
		models.SessionStatusCompleted, false, true).Return(nil).Once()
	sessionRepo.On("GetByID", ctx, sessionID).Return(completed, nil).Once()

	session, err := service.Complete(ctx, learnerPrincipal(), sessionID)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_Complete_AlreadyTerminal(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	cancelled := scheduledSession()
	cancelled.Status = models.SessionStatusCancelled
	sessionRepo.On("GetByID", ctx, sessionID).Return(cancelled, nil).Once()

	_, err := service.Complete(ctx, mentorPrincipal(), sessionID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionService_Cancel_LostRace(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	sessionRepo.On("GetByID", ctx, sessionID).Return(scheduledSession(), nil).Once()
	sessionRepo.On("TransitionStatus", ctx, sessionID,
		[]models.SessionStatus{models.SessionStatusScheduled, models.SessionStatusInProgress},
		models.SessionStatusCancelled, false, false).
		Return(apperrors.ConflictError("session status changed concurrently")).Once()

	_, err := service.Cancel(ctx, learnerPrincipal(), sessionID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionService_SetNotes_RoleScoped(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	sessionRepo.On("GetByID", ctx, sessionID).Return(scheduledSession(), nil)
	sessionRepo.On("SetNotes", ctx, sessionID, models.ParticipantMentor, "prep done").Return(nil).Once()
	sessionRepo.On("SetNotes", ctx, sessionID, models.ParticipantLearner, "great session").Return(nil).Once()

	_, err := service.SetNotes(ctx, mentorPrincipal(), sessionID, &models.SessionNotesPayload{Notes: "prep done"})
	assert.NoError(t, err)

	_, err = service.SetNotes(ctx, learnerPrincipal(), sessionID, &models.SessionNotesPayload{Notes: "great session"})
	assert.NoError(t, err)

	sessionRepo.AssertExpectations(t)
}

func TestSessionService_SetNotes_NonParticipantForbidden(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	sessionRepo.On("GetByID", ctx, sessionID).Return(scheduledSession(), nil).Once()

	stranger := &models.Principal{UserID: otherID, Role: models.RoleLearner}
	_, err := service.SetNotes(ctx, stranger, sessionID, &models.SessionNotesPayload{Notes: "spying"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSessionService_AddFeedback(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	completed := scheduledSession()
	completed.Status = models.SessionStatusCompleted

	sessionRepo.On("GetByID", ctx, sessionID).Return(completed, nil)
	sessionRepo.On("SetFeedback", ctx, sessionID, models.ParticipantLearner, 5, "excellent").Return(nil).Once()

	_, err := service.AddFeedback(ctx, learnerPrincipal(), sessionID,
		&models.SessionFeedbackPayload{Rating: 5, Comment: "excellent"})

	assert.NoError(t, err)
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_Update_OnlyScheduled(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	inProgress := scheduledSession()
	inProgress.Status = models.SessionStatusInProgress
	sessionRepo.On("GetByID", ctx, sessionID).Return(inProgress, nil).Once()

	title := "New title"
	_, err := service.Update(ctx, mentorPrincipal(), sessionID, &models.UpdateSessionPayload{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionService_List(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	service := newSessionService(sessionRepo, new(MockRequestRepository), false)
	ctx := context.Background()

	filter := models.SessionListFilter{Page: 1, Limit: 10}
	sessionRepo.On("ListForUser", ctx, learnerID, filter).Return([]*models.Session{scheduledSession()}, 1, nil).Once()

	result, err := service.List(ctx, learnerPrincipal(), filter)
	assert.NoError(t, err)
	assert.Len(t, result.Sessions, 1)
	assert.Equal(t, 1, result.Pagination.TotalItems)
}
