package services

import (
	"context"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/storage"
	"go.uber.org/zap"
)

// UserService handles profiles, avatars and the mentor directory
type UserService struct {
	userRepo    repository.UserRepositoryInterface
	mentorCache *cache.MentorCache
	storage     storage.ClientInterface
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepositoryInterface, mentorCache *cache.MentorCache, storageClient storage.ClientInterface) *UserService {
	return &UserService{
		userRepo:    userRepo,
		mentorCache: mentorCache,
		storage:     storageClient,
	}
}

// GetProfile returns a user's own profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies the allow-listed profile edits and invalidates the
// directory cache when a mentor changes
func (s *UserService) UpdateProfile(ctx context.Context, principal *models.Principal, payload *models.UpdateProfileRequest) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, principal.UserID, payload); err != nil {
		metrics.ProfileUpdates.WithLabelValues("error").Inc()
		logger.Error("Failed to update profile",
			zap.String("user_id", principal.UserID),
			zap.Error(err))
		return nil, err
	}

	if principal.Role == models.RoleMentor {
		s.mentorCache.Invalidate(principal.UserID)
	}

	metrics.ProfileUpdates.WithLabelValues("success").Inc()
	logger.Info("Profile updated", zap.String("user_id", principal.UserID))

	return s.userRepo.GetByID(ctx, principal.UserID)
}

// UploadAvatar validates, stores and links a new avatar image. Storage is
// optional at deploy time; without it the endpoint reports an internal
// error instead of panicking on the nil client.
func (s *UserService) UploadAvatar(ctx context.Context, principal *models.Principal, payload *models.UploadAvatarRequest) (*models.User, error) {
	if s.storage == nil {
		metrics.AvatarUploads.WithLabelValues("unconfigured").Inc()
		logger.Warn("Avatar upload rejected: storage client not configured",
			zap.String("user_id", principal.UserID))
		return nil, apperrors.InternalError("avatar storage is not configured")
	}

	if err := s.storage.ValidateImageType(payload.ContentType); err != nil {
		metrics.AvatarUploads.WithLabelValues("invalid_type").Inc()
		return nil, apperrors.ValidationError("contentType", err.Error())
	}
	if err := s.storage.ValidateImageSize(payload.ImageData); err != nil {
		metrics.AvatarUploads.WithLabelValues("invalid_size").Inc()
		return nil, apperrors.ValidationError("imageData", err.Error())
	}

	key := s.storage.GenerateAvatarKey(principal.UserID, payload.FileName)
	avatarURL, err := s.storage.UploadImage(ctx, payload.ImageData, key, payload.ContentType)
	if err != nil {
		metrics.AvatarUploads.WithLabelValues("upload_error").Inc()
		logger.Error("Failed to upload avatar",
			zap.String("user_id", principal.UserID),
			zap.Error(err))
		return nil, apperrors.InternalError("failed to upload avatar")
	}

	if err := s.userRepo.UpdateAvatar(ctx, principal.UserID, avatarURL); err != nil {
		metrics.AvatarUploads.WithLabelValues("error").Inc()
		return nil, err
	}

	if principal.Role == models.RoleMentor {
		s.mentorCache.Invalidate(principal.UserID)
	}

	metrics.AvatarUploads.WithLabelValues("success").Inc()
	logger.Info("Avatar uploaded",
		zap.String("user_id", principal.UserID),
		zap.String("key", key))

	return s.userRepo.GetByID(ctx, principal.UserID)
}

// ListMentors serves the public mentor directory through the cache
func (s *UserService) ListMentors(ctx context.Context, filter models.MentorFilterOptions) (*models.MentorsResponse, error) {
	mentors, total, err := s.mentorCache.ListMentors(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.MentorsResponse{
		Mentors:    mentors,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// GetMentor returns a single mentor profile from the directory
func (s *UserService) GetMentor(ctx context.Context, id string) (*models.User, error) {
	mentor, err := s.mentorCache.GetMentor(ctx, id)
	if err != nil {
		return nil, err
	}

	if mentor.Role != models.RoleMentor || !mentor.IsActive {
		return nil, apperrors.NotFoundError("mentor")
	}

	return mentor, nil
}
