package services

import (
	"context"

	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/repository"
)

// Achievement categories map to the engagement count that drives them
const (
	categorySessions = "sessions"
	categoryRequests = "requests"
	categoryNetwork  = "network"
	categoryFeedback = "feedback"
)

// AchievementService computes per-user achievement progress from live
// engagement counts. Nothing is stored per user; the catalog plus the
// counts fully determine the result.
type AchievementService struct {
	achievementRepo repository.AchievementRepositoryInterface
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(achievementRepo repository.AchievementRepositoryInterface) *AchievementService {
	return &AchievementService{achievementRepo: achievementRepo}
}

// ListCatalog returns the bare achievement catalog
func (s *AchievementService) ListCatalog(ctx context.Context) ([]*models.Achievement, error) {
	return s.achievementRepo.ListCatalog(ctx)
}

// ListForUser returns the full catalog annotated with the caller's progress
func (s *AchievementService) ListForUser(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	catalog, err := s.achievementRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.achievementRepo.GetEngagementStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements := make([]*models.UserAchievement, 0, len(catalog))
	for _, entry := range catalog {
		current := statForCategory(stats, entry.Category)
		if current > entry.Target {
			current = entry.Target
		}

		achievements = append(achievements, &models.UserAchievement{
			Achievement: *entry,
			Unlocked:    current >= entry.Target,
			Progress: models.AchievementProgress{
				Current: current,
				Target:  entry.Target,
			},
		})
	}

	return achievements, nil
}

// statForCategory selects the engagement count driving a catalog category
func statForCategory(stats *models.EngagementStats, category string) int {
	switch category {
	case categorySessions:
		return stats.CompletedSessions
	case categoryRequests:
		return stats.AcceptedRequests
	case categoryNetwork:
		return stats.DistinctMentors
	case categoryFeedback:
		return stats.FeedbackGiven
	default:
		return 0
	}
}
