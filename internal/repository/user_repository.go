package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillbridge/skillbridge-api/internal/models"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"go.uber.org/zap"
)

const userColumns = `
	id, external_uid, email, name, role, bio, skills, avatar_url, location,
	experience_years, rating, total_sessions, hourly_rate, is_active,
	is_verified, created_at, updated_at`

// UserRepository handles user profile data access
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	start := time.Now()
	operation := "getUserByID"

	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	user, err := models.ScanUser(row)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("user")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return user, nil
}

// ListMentors returns active mentors matching the directory filter,
// highest-rated first
func (r *UserRepository) ListMentors(ctx context.Context, filter models.MentorFilterOptions) ([]*models.User, int, error) {
	start := time.Now()
	operation := "listMentors"

	where := "WHERE role = 'mentor' AND is_active = true"
	args := []interface{}{}
	if filter.Skill != "" {
		where += fmt.Sprintf(" AND $%d = ANY(skills)", len(args)+1)
		args = append(args, filter.Skill)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR bio ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to count mentors: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT%s FROM users %s ORDER BY rating DESC, total_sessions DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to query mentors: %w", err)
	}

	mentors, err := models.ScanUsers(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to scan mentors: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(mentors)))

	return mentors, total, nil
}

// UpdateProfile applies the allow-listed profile edits
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, payload *models.UpdateProfileRequest) error {
	start := time.Now()
	operation := "updateUserProfile"

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    bio = COALESCE($3, bio),
		    skills = COALESCE($4, skills),
		    location = COALESCE($5, location),
		    experience_years = COALESCE($6, experience_years),
		    hourly_rate = COALESCE($7, hourly_rate),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id,
		payload.Name,
		payload.Bio,
		payload.Skills,
		payload.Location,
		payload.ExperienceYears,
		payload.HourlyRate,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateAvatar stores the uploaded avatar's public URL
func (r *UserRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	start := time.Now()
	operation := "updateUserAvatar"

	result, err := r.pool.Exec(ctx,
		"UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1", id, avatarURL)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user")
	}

	recordMetrics(operation, "success", duration)
	return nil
}
