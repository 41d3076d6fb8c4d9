package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
)

// AchievementRepository handles the achievement catalog and the engagement
// counts progress is derived from
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

// ListCatalog returns the full achievement catalog ordered by category
func (r *AchievementRepository) ListCatalog(ctx context.Context) ([]*models.Achievement, error) {
	start := time.Now()
	operation := "listAchievementCatalog"

	query := `
		SELECT code, title, description, icon, category, points, target
		FROM achievements
		ORDER BY category, points
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}

	achievements, err := models.ScanAchievements(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to scan achievements: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return achievements, nil
}

// GetEngagementStats aggregates the per-user engagement counts in one round
// trip. A user counts a completed session from either side of the table.
func (r *AchievementRepository) GetEngagementStats(ctx context.Context, userID string) (*models.EngagementStats, error) {
	start := time.Now()
	operation := "getEngagementStats"

	query := `
		SELECT
			(SELECT COUNT(*) FROM sessions
				WHERE (learner_id = $1 OR mentor_id = $1) AND status = 'completed'),
			(SELECT COUNT(*) FROM requests
				WHERE (from_user_id = $1 OR to_mentor_id = $1) AND status = 'accepted'),
			(SELECT COUNT(DISTINCT mentor_id) FROM sessions
				WHERE learner_id = $1 AND status = 'completed'),
			(SELECT COUNT(*) FROM sessions
				WHERE (learner_id = $1 AND learner_rating IS NOT NULL)
				   OR (mentor_id = $1 AND mentor_rating IS NOT NULL))
	`

	var stats models.EngagementStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.CompletedSessions,
		&stats.AcceptedRequests,
		&stats.DistinctMentors,
		&stats.FeedbackGiven,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get engagement stats: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return &stats, nil
}
