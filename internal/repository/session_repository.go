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

// sessionColumns is the column list ScanSession expects, including the
// participant display snapshots joined from users
const sessionColumns = `
	s.id, s.request_id, s.learner_id, s.mentor_id, s.title,
	s.description, s.scheduled_date, s.duration, s.status, s.meeting_link,
	s.mentor_notes, s.learner_notes, s.objectives, s.resources, s.learner_rating,
	s.mentor_rating, s.learner_comment, s.mentor_comment, s.actual_start_time,
	s.actual_end_time, s.is_recurring, s.recurring_pattern, s.created_at, s.updated_at,
	lu.name, lu.email, lu.avatar_url,
	mu.name, mu.email, mu.avatar_url`

const sessionJoins = `
	FROM sessions s
	JOIN users lu ON lu.id = s.learner_id
	JOIN users mu ON mu.id = s.mentor_id`

// SessionRepository handles mentorship session data access
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create persists a new session with status scheduled
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	start := time.Now()
	operation := "createSession"

	query := `
		INSERT INTO sessions (id, request_id, learner_id, mentor_id, title,
			description, scheduled_date, duration, status, meeting_link,
			objectives, resources, is_recurring, recurring_pattern)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.RequestID,
		session.LearnerID,
		session.MentorID,
		session.Title,
		nilIfEmpty(session.Description),
		session.ScheduledDate,
		session.Duration,
		session.Status,
		nilIfEmpty(session.MeetingLink),
		session.Objectives,
		session.Resources,
		session.IsRecurring,
		session.RecurringPattern,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return nil
}

// GetByID retrieves a single session by ID with participant snapshots
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	start := time.Now()
	operation := "getSessionByID"

	query := `SELECT` + sessionColumns + sessionJoins + ` WHERE s.id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	session, err := models.ScanSession(row)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("session")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return session, nil
}

// ListForUser returns sessions where the user is either participant,
// most recently scheduled first
func (r *SessionRepository) ListForUser(ctx context.Context, userID string, filter models.SessionListFilter) ([]*models.Session, int, error) {
	start := time.Now()
	operation := "listSessionsForUser"

	where := "WHERE (s.learner_id = $1 OR s.mentor_id = $1)"
	args := []interface{}{userID}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND s.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM sessions s ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT%s%s %s ORDER BY s.scheduled_date DESC LIMIT $%d OFFSET $%d`,
		sessionColumns, sessionJoins, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}

	sessions, err := models.ScanSessions(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to scan sessions: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(sessions)))

	return sessions, total, nil
}

// UpdateDetails applies the allow-listed edits while the session is still
// scheduled. Zero rows affected resolves to NotFound or Conflict.
func (r *SessionRepository) UpdateDetails(ctx context.Context, id string, payload *models.UpdateSessionPayload) error {
	start := time.Now()
	operation := "updateSessionDetails"

	query := `
		UPDATE sessions
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    scheduled_date = COALESCE($4, scheduled_date),
		    duration = COALESCE($5, duration),
		    meeting_link = COALESCE($6, meeting_link),
		    objectives = COALESCE($7, objectives),
		    resources = COALESCE($8, resources),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
	`

	result, err := r.pool.Exec(ctx, query, id,
		payload.Title,
		payload.Description,
		payload.ScheduledDate,
		payload.Duration,
		payload.MeetingLink,
		payload.Objectives,
		payload.Resources,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "conflict", duration)
		return r.conflictOrNotFound(ctx, id)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// SetNotes writes the notes column matching the participant's role
func (r *SessionRepository) SetNotes(ctx context.Context, id string, role models.ParticipantRole, notes string) error {
	start := time.Now()
	operation := "setSessionNotes"

	var column string
	switch role {
	case models.ParticipantMentor:
		column = "mentor_notes"
	case models.ParticipantLearner:
		column = "learner_notes"
	default:
		return apperrors.ForbiddenError("not a session participant")
	}

	query := fmt.Sprintf(`UPDATE sessions SET %s = $2, updated_at = NOW() WHERE id = $1`, column)

	result, err := r.pool.Exec(ctx, query, id, notes)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to set session notes: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("session")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// SetFeedback writes the rating and comment columns matching the
// participant's role (last write wins per role)
func (r *SessionRepository) SetFeedback(ctx context.Context, id string, role models.ParticipantRole, rating int, comment string) error {
	start := time.Now()
	operation := "setSessionFeedback"

	var ratingColumn, commentColumn string
	switch role {
	case models.ParticipantMentor:
		ratingColumn, commentColumn = "mentor_rating", "mentor_comment"
	case models.ParticipantLearner:
		ratingColumn, commentColumn = "learner_rating", "learner_comment"
	default:
		return apperrors.ForbiddenError("not a session participant")
	}

	query := fmt.Sprintf(`UPDATE sessions SET %s = $2, %s = $3, updated_at = NOW() WHERE id = $1`,
		ratingColumn, commentColumn)

	result, err := r.pool.Exec(ctx, query, id, rating, nilIfEmpty(comment))

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to set session feedback: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("session")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// TransitionStatus performs the compare-and-swap status transition with a
// set of allowed prior statuses. Optionally stamps the actual start/end
// time in the same atomic write.
func (r *SessionRepository) TransitionStatus(ctx context.Context, id string, from []models.SessionStatus, to models.SessionStatus, stampStart, stampEnd bool) error {
	start := time.Now()
	operation := "transitionSessionStatus"

	fromStatuses := make([]string, 0, len(from))
	for _, s := range from {
		fromStatuses = append(fromStatuses, string(s))
	}

	query := `
		UPDATE sessions
		SET status = $3,
		    actual_start_time = CASE WHEN $4 THEN NOW() ELSE actual_start_time END,
		    actual_end_time = CASE WHEN $5 THEN NOW() ELSE actual_end_time END,
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
	`

	result, err := r.pool.Exec(ctx, query, id, fromStatuses, to, stampStart, stampEnd)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to transition session status: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "conflict", duration)
		return r.conflictOrNotFound(ctx, id)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("session_id", id),
		zap.String("to_status", string(to)))

	return nil
}

// CountByRequest returns how many sessions were created from a request
func (r *SessionRepository) CountByRequest(ctx context.Context, requestID string) (int, error) {
	start := time.Now()
	operation := "countSessionsByRequest"

	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sessions WHERE request_id = $1", requestID).Scan(&count)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to count sessions for request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return count, nil
}

// conflictOrNotFound resolves a zero-rows-affected conditional update into
// the precise typed error
func (r *SessionRepository) conflictOrNotFound(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	if !exists {
		return apperrors.NotFoundError("session")
	}
	return apperrors.ConflictError("session status changed concurrently")
}
