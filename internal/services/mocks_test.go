package services_test

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockRequestRepository is a mock implementation of RequestRepositoryInterface
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *models.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestRepository) ListForMentor(ctx context.Context, mentorID string, filter models.RequestListFilter) ([]*models.Request, int, error) {
	args := m.Called(ctx, mentorID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Request), args.Int(1), args.Error(2)
}

func (m *MockRequestRepository) ListForLearner(ctx context.Context, learnerID string, filter models.RequestListFilter) ([]*models.Request, int, error) {
	args := m.Called(ctx, learnerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Request), args.Int(1), args.Error(2)
}

func (m *MockRequestRepository) UpdateFields(ctx context.Context, id string, payload *models.UpdateRequestPayload) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockRequestRepository) TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, responseMessage string, respondedAt *time.Time) error {
	args := m.Called(ctx, id, from, to, responseMessage, respondedAt)
	return args.Error(0)
}

func (m *MockRequestRepository) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepositoryInterface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) ListForUser(ctx context.Context, userID string, filter models.SessionListFilter) ([]*models.Session, int, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Session), args.Int(1), args.Error(2)
}

func (m *MockSessionRepository) UpdateDetails(ctx context.Context, id string, payload *models.UpdateSessionPayload) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockSessionRepository) SetNotes(ctx context.Context, id string, role models.ParticipantRole, notes string) error {
	args := m.Called(ctx, id, role, notes)
	return args.Error(0)
}

func (m *MockSessionRepository) SetFeedback(ctx context.Context, id string, role models.ParticipantRole, rating int, comment string) error {
	args := m.Called(ctx, id, role, rating, comment)
	return args.Error(0)
}

func (m *MockSessionRepository) TransitionStatus(ctx context.Context, id string, from []models.SessionStatus, to models.SessionStatus, stampStart, stampEnd bool) error {
	args := m.Called(ctx, id, from, to, stampStart, stampEnd)
	return args.Error(0)
}

func (m *MockSessionRepository) CountByRequest(ctx context.Context, requestID string) (int, error) {
	args := m.Called(ctx, requestID)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepositoryInterface.
// It also satisfies cache.MentorDataSource.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListMentors(ctx context.Context, filter models.MentorFilterOptions) ([]*models.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, payload *models.UpdateProfileRequest) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

// MockAchievementRepository is a mock implementation of AchievementRepositoryInterface
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) ListCatalog(ctx context.Context) ([]*models.Achievement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) GetEngagementStats(ctx context.Context, userID string) (*models.EngagementStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EngagementStats), args.Error(1)
}

// MockStorageClient is a mock implementation of storage.ClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) UploadImage(ctx context.Context, imageData, key, contentType string) (string, error) {
	args := m.Called(ctx, imageData, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateAvatarKey(userID, originalFileName string) string {
	args := m.Called(userID, originalFileName)
	return args.String(0)
}

func (m *MockStorageClient) ValidateImageType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *MockStorageClient) ValidateImageSize(imageData string) error {
	args := m.Called(imageData)
	return args.Error(0)
}

// MockHTTPClient is a mock implementation of httpclient.Client
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	args := m.Called(url, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}
