package repository

import (
	"context"
	"time"

	"github.com/skillbridge/skillbridge-api/internal/models"
)

// RequestRepositoryInterface defines data access for mentorship requests
type RequestRepositoryInterface interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	ListForMentor(ctx context.Context, mentorID string, filter models.RequestListFilter) ([]*models.Request, int, error)
	ListForLearner(ctx context.Context, learnerID string, filter models.RequestListFilter) ([]*models.Request, int, error)
	UpdateFields(ctx context.Context, id string, payload *models.UpdateRequestPayload) error

	// TransitionStatus performs a conditional update predicated on the
	// expected prior status. Returns ErrConflict when the predicate no
	// longer holds (lost race or invalid transition), ErrNotFound when the
	// request does not exist.
	TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, responseMessage string, respondedAt *time.Time) error

	// CancelExpired marks pending requests past their expiry as cancelled
	// and returns the number of rows affected
	CancelExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepositoryInterface defines data access for mentorship sessions
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListForUser(ctx context.Context, userID string, filter models.SessionListFilter) ([]*models.Session, int, error)
	UpdateDetails(ctx context.Context, id string, payload *models.UpdateSessionPayload) error
	SetNotes(ctx context.Context, id string, role models.ParticipantRole, notes string) error
	SetFeedback(ctx context.Context, id string, role models.ParticipantRole, rating int, comment string) error

	// TransitionStatus performs a conditional update predicated on the set
	// of allowed prior statuses. Semantics mirror the request repository.
	TransitionStatus(ctx context.Context, id string, from []models.SessionStatus, to models.SessionStatus, stampStart, stampEnd bool) error

	CountByRequest(ctx context.Context, requestID string) (int, error)
}

// UserRepositoryInterface defines data access for user profiles
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListMentors(ctx context.Context, filter models.MentorFilterOptions) ([]*models.User, int, error)
	UpdateProfile(ctx context.Context, id string, payload *models.UpdateProfileRequest) error
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
}

// AchievementRepositoryInterface defines data access for the achievement
// catalog and the engagement counts progress is computed from
type AchievementRepositoryInterface interface {
	ListCatalog(ctx context.Context) ([]*models.Achievement, error)
	GetEngagementStats(ctx context.Context, userID string) (*models.EngagementStats, error)
}
