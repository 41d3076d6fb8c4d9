package services_test

import (
	"context"
	"testing"

	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestAchievementService_ListForUser(t *testing.T) {
	achievementRepo := new(MockAchievementRepository)
	service := services.NewAchievementService(achievementRepo)
	ctx := context.Background()

	catalog := []*models.Achievement{
		{Code: "first-session", Title: "First Steps", Category: "sessions", Points: 10, Target: 1},
		{Code: "ten-sessions", Title: "Regular", Category: "sessions", Points: 50, Target: 10},
		{Code: "well-connected", Title: "Well Connected", Category: "network", Points: 30, Target: 3},
		{Code: "feedback-giver", Title: "Voice Heard", Category: "feedback", Points: 20, Target: 5},
	}
	stats := &models.EngagementStats{
		CompletedSessions: 4,
		AcceptedRequests:  2,
		DistinctMentors:   1,
		FeedbackGiven:     5,
	}

	achievementRepo.On("ListCatalog", ctx).Return(catalog, nil).Once()
	achievementRepo.On("GetEngagementStats", ctx, learnerID).Return(stats, nil).Once()

	achievements, err := service.ListForUser(ctx, learnerID)
	assert.NoError(t, err)
	assert.Len(t, achievements, 4)

	byCode := map[string]*models.UserAchievement{}
	for _, a := range achievements {
		byCode[a.Code] = a
	}

	assert.True(t, byCode["first-session"].Unlocked)
	assert.Equal(t, 1, byCode["first-session"].Progress.Current) // capped at target

	assert.False(t, byCode["ten-sessions"].Unlocked)
	assert.Equal(t, 4, byCode["ten-sessions"].Progress.Current)

	assert.False(t, byCode["well-connected"].Unlocked)
	assert.Equal(t, 1, byCode["well-connected"].Progress.Current)

	assert.True(t, byCode["feedback-giver"].Unlocked)

	achievementRepo.AssertExpectations(t)
}

func TestAchievementService_ListCatalog(t *testing.T) {
	achievementRepo := new(MockAchievementRepository)
	service := services.NewAchievementService(achievementRepo)
	ctx := context.Background()

	catalog := []*models.Achievement{
		{Code: "first-session", Category: "sessions", Target: 1},
		{Code: "first-match", Category: "requests", Target: 1},
	}
	achievementRepo.On("ListCatalog", ctx).Return(catalog, nil).Once()

	result, err := service.ListCatalog(ctx)
	assert.NoError(t, err)
	assert.Equal(t, catalog, result)
	achievementRepo.AssertExpectations(t)
}

func TestAchievementService_EmptyStats(t *testing.T) {
	achievementRepo := new(MockAchievementRepository)
	service := services.NewAchievementService(achievementRepo)
	ctx := context.Background()

	catalog := []*models.Achievement{
		{Code: "first-session", Category: "sessions", Target: 1},
	}

	achievementRepo.On("ListCatalog", ctx).Return(catalog, nil).Once()
	achievementRepo.On("GetEngagementStats", ctx, otherID).Return(&models.EngagementStats{}, nil).Once()

	achievements, err := service.ListForUser(ctx, otherID)
	assert.NoError(t, err)
	assert.False(t, achievements[0].Unlocked)
	assert.Equal(t, 0, achievements[0].Progress.Current)
}
