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

const (
	learnerID = "11111111-1111-1111-1111-111111111111"
	mentorID  = "22222222-2222-2222-2222-222222222222"
	otherID   = "33333333-3333-3333-3333-333333333333"
	requestID = "44444444-4444-4444-4444-444444444444"
)

func learnerPrincipal() *models.Principal {
	return &models.Principal{UserID: learnerID, Role: models.RoleLearner}
}

func mentorPrincipal() *models.Principal {
	return &models.Principal{UserID: mentorID, Role: models.RoleMentor}
}

func pendingRequest() *models.Request {
	return &models.Request{
		ID:         requestID,
		FromUserID: learnerID,
		ToMentorID: mentorID,
		Subject:    "Learn Go",
		Message:    "Help me with Go concurrency",
		Status:     models.RequestStatusPending,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
}

func newRequestService(requestRepo *MockRequestRepository, userRepo *MockUserRepository) *services.RequestService {
	cfg := &config.Config{}
	cfg.Engagement.RequestTTLDays = 7
	return services.NewRequestService(requestRepo, userRepo, cfg, new(MockHTTPClient))
}

func TestRequestService_Create(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	userRepo := new(MockUserRepository)
	service := newRequestService(requestRepo, userRepo)
	ctx := context.Background()

	mentor := &models.User{ID: mentorID, Role: models.RoleMentor, IsActive: true}
	userRepo.On("GetByID", ctx, mentorID).Return(mentor, nil).Once()
	requestRepo.On("Create", ctx, mock.AnythingOfType("*models.Request")).Return(nil).Once()
	requestRepo.On("GetByID", ctx, mock.AnythingOfType("string")).Return(pendingRequest(), nil).Once()

	payload := &models.CreateRequestPayload{
		ToMentorID: mentorID,
		Subject:    "Learn Go",
		Message:    "Help me with Go concurrency",
	}

	created, err := service.Create(ctx, learnerPrincipal(), payload)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, created.Status)

	createdArg := requestRepo.Calls[0].Arguments.Get(1).(*models.Request)
	assert.Equal(t, learnerID, createdArg.FromUserID)
	assert.Equal(t, models.SessionTypeOneTime, createdArg.SessionType)
	assert.Equal(t, models.PriorityMedium, createdArg.Priority)
	assert.True(t, createdArg.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))

	requestRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestRequestService_Create_MentorForbidden(t *testing.T) {
	service := newRequestService(new(MockRequestRepository), new(MockUserRepository))

	payload := &models.CreateRequestPayload{ToMentorID: otherID, Subject: "s", Message: "m"}
	_, err := service.Create(context.Background(), mentorPrincipal(), payload)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequestService_Create_SelfRequest(t *testing.T) {
	service := newRequestService(new(MockRequestRepository), new(MockUserRepository))

	payload := &models.CreateRequestPayload{ToMentorID: learnerID, Subject: "s", Message: "m"}
	_, err := service.Create(context.Background(), learnerPrincipal(), payload)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRequestService_Create_TargetNotMentor(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	userRepo := new(MockUserRepository)
	service := newRequestService(requestRepo, userRepo)
	ctx := context.Background()

	target := &models.User{ID: otherID, Role: models.RoleLearner, IsActive: true}
	userRepo.On("GetByID", ctx, otherID).Return(target, nil).Once()

	payload := &models.CreateRequestPayload{ToMentorID: otherID, Subject: "s", Message: "m"}
	_, err := service.Create(ctx, learnerPrincipal(), payload)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	userRepo.AssertExpectations(t)
}

func TestRequestService_Accept(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	accepted := pendingRequest()
	accepted.Status = models.RequestStatusAccepted

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusAccepted, "happy to help", mock.AnythingOfType("*time.Time")).Return(nil).Once()
	requestRepo.On("GetByID", ctx, requestID).Return(accepted, nil).Once()

	result, err := service.Accept(ctx, mentorPrincipal(), requestID,
		&models.RespondRequestPayload{ResponseMessage: "happy to help"})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, result.Status)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Accept_NonMentorForbidden(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil)

	// The authoring learner cannot accept their own request
	_, err := service.Accept(ctx, learnerPrincipal(), requestID, &models.RespondRequestPayload{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Neither can an unrelated mentor
	stranger := &models.Principal{UserID: otherID, Role: models.RoleMentor}
	_, err = service.Accept(ctx, stranger, requestID, &models.RespondRequestPayload{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequestService_Accept_NotPending(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	declined := pendingRequest()
	declined.Status = models.RequestStatusDeclined
	requestRepo.On("GetByID", ctx, requestID).Return(declined, nil).Once()

	_, err := service.Accept(ctx, mentorPrincipal(), requestID, &models.RespondRequestPayload{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRequestService_Accept_Expired(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	expired := pendingRequest()
	expired.ExpiresAt = time.Now().Add(-time.Hour)

	requestRepo.On("GetByID", ctx, requestID).Return(expired, nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusCancelled, "", (*time.Time)(nil)).Return(nil).Once()

	_, err := service.Accept(ctx, mentorPrincipal(), requestID, &models.RespondRequestPayload{})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Accept_LostRace(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	// The in-memory read still sees pending, but another writer moved the
	// status before our conditional update lands
	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusAccepted, "", mock.AnythingOfType("*time.Time")).
		Return(apperrors.ConflictError("request status changed concurrently")).Once()

	_, err := service.Accept(ctx, mentorPrincipal(), requestID, &models.RespondRequestPayload{})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Decline(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	declined := pendingRequest()
	declined.Status = models.RequestStatusDeclined

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusDeclined, "fully booked", mock.AnythingOfType("*time.Time")).Return(nil).Once()
	requestRepo.On("GetByID", ctx, requestID).Return(declined, nil).Once()

	result, err := service.Decline(ctx, mentorPrincipal(), requestID,
		&models.RespondRequestPayload{ResponseMessage: "fully booked"})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusDeclined, result.Status)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Cancel(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	cancelled := pendingRequest()
	cancelled.Status = models.RequestStatusCancelled

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusCancelled, "", (*time.Time)(nil)).Return(nil).Once()
	requestRepo.On("GetByID", ctx, requestID).Return(cancelled, nil).Once()

	result, err := service.Cancel(ctx, learnerPrincipal(), requestID)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, result.Status)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Cancel_ByMentor(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	cancelled := pendingRequest()
	cancelled.Status = models.RequestStatusCancelled

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()
	requestRepo.On("TransitionStatus", ctx, requestID, models.RequestStatusPending,
		models.RequestStatusCancelled, "", (*time.Time)(nil)).Return(nil).Once()
	requestRepo.On("GetByID", ctx, requestID).Return(cancelled, nil).Once()

	result, err := service.Cancel(ctx, mentorPrincipal(), requestID)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, result.Status)
	requestRepo.AssertExpectations(t)
}

func TestRequestService_Cancel_NonParticipantForbidden(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()

	outsider := &models.Principal{UserID: otherID, Role: models.RoleLearner}
	_, err := service.Cancel(ctx, outsider, requestID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequestService_Update_NotPending(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	accepted := pendingRequest()
	accepted.Status = models.RequestStatusAccepted
	requestRepo.On("GetByID", ctx, requestID).Return(accepted, nil).Once()

	subject := "New subject"
	_, err := service.Update(ctx, learnerPrincipal(), requestID,
		&models.UpdateRequestPayload{Subject: &subject})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRequestService_Get_NonParticipantForbidden(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, requestID).Return(pendingRequest(), nil).Once()

	stranger := &models.Principal{UserID: otherID, Role: models.RoleLearner}
	_, err := service.Get(ctx, stranger, requestID)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequestService_List_RoutesByRole(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := newRequestService(requestRepo, new(MockUserRepository))
	ctx := context.Background()

	filter := models.RequestListFilter{Page: 1, Limit: 10}
	requestRepo.On("ListForMentor", ctx, mentorID, filter).Return([]*models.Request{pendingRequest()}, 1, nil).Once()
	requestRepo.On("ListForLearner", ctx, learnerID, filter).Return([]*models.Request{}, 0, nil).Once()

	mentorResult, err := service.List(ctx, mentorPrincipal(), filter)
	assert.NoError(t, err)
	assert.Len(t, mentorResult.Requests, 1)
	assert.Equal(t, 1, mentorResult.Pagination.TotalItems)

	learnerResult, err := service.List(ctx, learnerPrincipal(), filter)
	assert.NoError(t, err)
	assert.Empty(t, learnerResult.Requests)

	requestRepo.AssertExpectations(t)
}
