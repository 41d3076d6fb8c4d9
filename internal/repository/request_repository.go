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

// requestColumns is the column list ScanRequest expects, including the
// participant display snapshots joined from users
const requestColumns = `
	r.id, r.from_user_id, r.to_mentor_id, r.subject, r.message,
	r.skills, r.session_type, r.priority, r.preferred_schedule, r.status,
	r.response_message, r.responded_at, r.expires_at, r.created_at, r.updated_at,
	fu.name, fu.email, fu.avatar_url,
	tm.name, tm.email, tm.avatar_url`

const requestJoins = `
	FROM requests r
	JOIN users fu ON fu.id = r.from_user_id
	JOIN users tm ON tm.id = r.to_mentor_id`

// RequestRepository handles mentorship request data access
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create persists a new request with status pending
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	start := time.Now()
	operation := "createRequest"

	query := `
		INSERT INTO requests (id, from_user_id, to_mentor_id, subject, message,
			skills, session_type, priority, preferred_schedule, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.FromUserID,
		req.ToMentorID,
		req.Subject,
		req.Message,
		req.Skills,
		req.SessionType,
		req.Priority,
		req.PreferredSchedule,
		req.Status,
		req.ExpiresAt,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return nil
}

// GetByID retrieves a single request by ID with participant snapshots
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	start := time.Now()
	operation := "getRequestByID"

	query := `SELECT` + requestColumns + requestJoins + ` WHERE r.id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	req, err := models.ScanRequest(row)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("request")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return req, nil
}

// ListForMentor returns requests addressed to a mentor, newest first
func (r *RequestRepository) ListForMentor(ctx context.Context, mentorID string, filter models.RequestListFilter) ([]*models.Request, int, error) {
	return r.list(ctx, "listRequestsForMentor", "r.to_mentor_id", mentorID, filter)
}

// ListForLearner returns requests authored by a learner, newest first
func (r *RequestRepository) ListForLearner(ctx context.Context, learnerID string, filter models.RequestListFilter) ([]*models.Request, int, error) {
	return r.list(ctx, "listRequestsForLearner", "r.from_user_id", learnerID, filter)
}

// list is the shared participant-scoped listing helper
func (r *RequestRepository) list(ctx context.Context, operation, participantColumn, participantID string, filter models.RequestListFilter) ([]*models.Request, int, error) {
	start := time.Now()

	where := fmt.Sprintf("WHERE %s = $1", participantColumn)
	args := []interface{}{participantID}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM requests r ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT%s%s %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		requestColumns, requestJoins, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to query requests: %w", err)
	}

	requests, err := models.ScanRequests(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, 0, fmt.Errorf("failed to scan requests: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(requests)))

	return requests, total, nil
}

// UpdateFields applies the allow-listed learner edits while the request is
// still pending. Zero rows affected means the request either vanished or
// left the pending state concurrently; the caller distinguishes via GetByID.
func (r *RequestRepository) UpdateFields(ctx context.Context, id string, payload *models.UpdateRequestPayload) error {
	start := time.Now()
	operation := "updateRequestFields"

	query := `
		UPDATE requests
		SET subject = COALESCE($2, subject),
		    message = COALESCE($3, message),
		    skills = COALESCE($4, skills),
		    session_type = COALESCE($5, session_type),
		    priority = COALESCE($6, priority),
		    preferred_schedule = COALESCE($7, preferred_schedule),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.pool.Exec(ctx, query, id,
		payload.Subject,
		payload.Message,
		payload.Skills,
		payload.SessionType,
		payload.Priority,
		payload.PreferredSchedule,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "conflict", duration)
		return r.conflictOrNotFound(ctx, id)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// TransitionStatus performs the compare-and-swap status transition. The
// predicate on the prior status makes two racing transitions on the same
// request mutually exclusive: exactly one sees RowsAffected == 1.
func (r *RequestRepository) TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, responseMessage string, respondedAt *time.Time) error {
	start := time.Now()
	operation := "transitionRequestStatus"

	query := `
		UPDATE requests
		SET status = $3,
		    response_message = COALESCE($4, response_message),
		    responded_at = COALESCE($5, responded_at),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(ctx, query, id, from, to, nilIfEmpty(responseMessage), respondedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to transition request status: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "conflict", duration)
		metrics.RequestTransitionConflicts.WithLabelValues(string(to)).Inc()
		return r.conflictOrNotFound(ctx, id)
	}

	recordMetrics(operation, "success", duration)
	metrics.RequestStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("request_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)))

	return nil
}

// CancelExpired sweeps pending requests past their expiry into cancelled.
// Listing hygiene only; expiry is also enforced lazily at action time.
func (r *RequestRepository) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	operation := "cancelExpiredRequests"

	query := `
		UPDATE requests
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND expires_at < $1
	`

	result, err := r.pool.Exec(ctx, query, now)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to cancel expired requests: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return result.RowsAffected(), nil
}

// conflictOrNotFound resolves a zero-rows-affected conditional update into
// the precise typed error
func (r *RequestRepository) conflictOrNotFound(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check request existence: %w", err)
	}
	if !exists {
		return apperrors.NotFoundError("request")
	}
	return apperrors.ConflictError("request status changed concurrently")
}
