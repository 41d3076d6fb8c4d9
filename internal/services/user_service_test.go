package services_test

import (
	"context"
	"testing"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserService(userRepo *MockUserRepository, storageClient *MockStorageClient) *services.UserService {
	mentorCache := cache.NewMentorCache(userRepo, 60, false)
	return services.NewUserService(userRepo, mentorCache, storageClient)
}

func TestUserService_UpdateProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(userRepo, new(MockStorageClient))
	ctx := context.Background()

	updated := &models.User{ID: mentorID, Name: "Updated Name", Role: models.RoleMentor}
	userRepo.On("UpdateProfile", ctx, mentorID, mock.AnythingOfType("*models.UpdateProfileRequest")).Return(nil).Once()
	userRepo.On("GetByID", ctx, mentorID).Return(updated, nil).Once()

	name := "Updated Name"
	user, err := service.UpdateProfile(ctx, mentorPrincipal(), &models.UpdateProfileRequest{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "Updated Name", user.Name)
	userRepo.AssertExpectations(t)
}

func TestUserService_UploadAvatar(t *testing.T) {
	userRepo := new(MockUserRepository)
	storageClient := new(MockStorageClient)
	service := newUserService(userRepo, storageClient)
	ctx := context.Background()

	payload := &models.UploadAvatarRequest{
		ImageData:   "data:image/png;base64,iVBORw0KGgo=",
		FileName:    "avatar.png",
		ContentType: "image/png",
	}

	storageClient.On("ValidateImageType", "image/png").Return(nil).Once()
	storageClient.On("ValidateImageSize", payload.ImageData).Return(nil).Once()
	storageClient.On("GenerateAvatarKey", learnerID, "avatar.png").Return("avatars/key.png").Once()
	storageClient.On("UploadImage", ctx, payload.ImageData, "avatars/key.png", "image/png").
		Return("https://cdn.example.com/avatars/key.png", nil).Once()
	userRepo.On("UpdateAvatar", ctx, learnerID, "https://cdn.example.com/avatars/key.png").Return(nil).Once()
	userRepo.On("GetByID", ctx, learnerID).
		Return(&models.User{ID: learnerID, AvatarURL: "https://cdn.example.com/avatars/key.png"}, nil).Once()

	user, err := service.UploadAvatar(ctx, learnerPrincipal(), payload)

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/key.png", user.AvatarURL)
	storageClient.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestUserService_UploadAvatar_InvalidType(t *testing.T) {
	userRepo := new(MockUserRepository)
	storageClient := new(MockStorageClient)
	service := newUserService(userRepo, storageClient)
	ctx := context.Background()

	storageClient.On("ValidateImageType", "application/pdf").
		Return(assert.AnError).Once()

	payload := &models.UploadAvatarRequest{
		ImageData:   "data",
		FileName:    "file.pdf",
		ContentType: "application/pdf",
	}

	_, err := service.UploadAvatar(ctx, learnerPrincipal(), payload)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUserService_UploadAvatar_StorageNotConfigured(t *testing.T) {
	userRepo := new(MockUserRepository)
	mentorCache := cache.NewMentorCache(userRepo, 60, false)
	// Deployments without storage credentials run with a nil client
	service := services.NewUserService(userRepo, mentorCache, nil)
	ctx := context.Background()

	payload := &models.UploadAvatarRequest{
		ImageData:   "aGVsbG8=",
		FileName:    "avatar.png",
		ContentType: "image/png",
	}

	assert.NotPanics(t, func() {
		_, err := service.UploadAvatar(ctx, learnerPrincipal(), payload)
		assert.ErrorIs(t, err, apperrors.ErrInternal)
	})
	userRepo.AssertExpectations(t)
}

func TestUserService_ListMentors_CachesPages(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(userRepo, new(MockStorageClient))
	ctx := context.Background()

	filter := models.MentorFilterOptions{Page: 1, Limit: 10}
	mentors := []*models.User{{ID: mentorID, Role: models.RoleMentor, IsActive: true}}

	// Single repository hit; the second call is served from cache
	userRepo.On("ListMentors", ctx, filter).Return(mentors, 1, nil).Once()

	first, err := service.ListMentors(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, first.Mentors, 1)

	second, err := service.ListMentors(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, second.Mentors, 1)

	userRepo.AssertExpectations(t)
}

func TestUserService_GetMentor_NotAMentor(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(userRepo, new(MockStorageClient))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, learnerID).
		Return(&models.User{ID: learnerID, Role: models.RoleLearner, IsActive: true}, nil).Once()

	_, err := service.GetMentor(ctx, learnerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
