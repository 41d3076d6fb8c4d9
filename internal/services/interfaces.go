package services

import (
	"context"

	"github.com/skillbridge/skillbridge-api/internal/models"
)

// RequestServiceInterface drives the mentorship request lifecycle
type RequestServiceInterface interface {
	Create(ctx context.Context, principal *models.Principal, payload *models.CreateRequestPayload) (*models.Request, error)
	Get(ctx context.Context, principal *models.Principal, id string) (*models.Request, error)
	List(ctx context.Context, principal *models.Principal, filter models.RequestListFilter) (*models.RequestsResponse, error)
	Update(ctx context.Context, principal *models.Principal, id string, payload *models.UpdateRequestPayload) (*models.Request, error)
	Accept(ctx context.Context, principal *models.Principal, id string, payload *models.RespondRequestPayload) (*models.Request, error)
	Decline(ctx context.Context, principal *models.Principal, id string, payload *models.RespondRequestPayload) (*models.Request, error)
	Cancel(ctx context.Context, principal *models.Principal, id string) (*models.Request, error)
}

// SessionServiceInterface drives the mentorship session lifecycle
type SessionServiceInterface interface {
	Create(ctx context.Context, principal *models.Principal, payload *models.CreateSessionPayload) (*models.Session, error)
	Get(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)
	List(ctx context.Context, principal *models.Principal, filter models.SessionListFilter) (*models.SessionsResponse, error)
	Update(ctx context.Context, principal *models.Principal, id string, payload *models.UpdateSessionPayload) (*models.Session, error)
	Start(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)
	Complete(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)
	Cancel(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)
	MarkNoShow(ctx context.Context, principal *models.Principal, id string) (*models.Session, error)
	SetNotes(ctx context.Context, principal *models.Principal, id string, payload *models.SessionNotesPayload) (*models.Session, error)
	AddFeedback(ctx context.Context, principal *models.Principal, id string, payload *models.SessionFeedbackPayload) (*models.Session, error)
}

// UserServiceInterface handles profiles and the mentor directory
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, principal *models.Principal, payload *models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, principal *models.Principal, payload *models.UploadAvatarRequest) (*models.User, error)
	ListMentors(ctx context.Context, filter models.MentorFilterOptions) (*models.MentorsResponse, error)
	GetMentor(ctx context.Context, id string) (*models.User, error)
}

// AchievementServiceInterface computes per-user achievement progress
type AchievementServiceInterface interface {
	ListCatalog(ctx context.Context) ([]*models.Achievement, error)
	ListForUser(ctx context.Context, userID string) ([]*models.UserAchievement, error)
}
