package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// RequestStatus represents the status of a mentorship request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// IsTerminal returns true if the status permits no further transitions
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusDeclined || s == RequestStatusCancelled
}

// CanTransitionTo checks if a status transition is valid. The request
// machine only moves forward: pending is the sole non-terminal state.
func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch newStatus {
	case RequestStatusAccepted, RequestStatusDeclined, RequestStatusCancelled:
		return s == RequestStatusPending
	default:
		return false
	}
}

// SessionType categorizes the engagement a learner is asking for
type SessionType string

const (
	SessionTypeOneTime      SessionType = "one-time"
	SessionTypeRecurring    SessionType = "recurring"
	SessionTypeProjectBased SessionType = "project-based"
)

// RequestPriority is the learner-declared urgency of a request
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// PreferredSchedule is the learner's suggested slot for the engagement
type PreferredSchedule struct {
	Date     *time.Time `json:"date,omitempty"`
	Time     string     `json:"time,omitempty"`
	Duration int        `json:"duration,omitempty"` // minutes
}

// Request is a learner's proposal for mentorship, targeted at one mentor
type Request struct {
	ID                string             `json:"id"`
	FromUserID        string             `json:"fromUserId"`
	ToMentorID        string             `json:"toMentorId"`
	Subject           string             `json:"subject"`
	Message           string             `json:"message"`
	Skills            []string           `json:"skills"`
	SessionType       SessionType        `json:"sessionType"`
	Priority          RequestPriority    `json:"priority"`
	PreferredSchedule *PreferredSchedule `json:"preferredSchedule,omitempty"`
	Status            RequestStatus      `json:"status"`
	ResponseMessage   string             `json:"responseMessage,omitempty"`
	RespondedAt       *time.Time         `json:"respondedAt,omitempty"`
	ExpiresAt         time.Time          `json:"expiresAt"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`

	// Display snapshots, populated on read paths only
	FromUser *UserSnapshot `json:"fromUser,omitempty"`
	ToMentor *UserSnapshot `json:"toMentor,omitempty"`
}

// IsExpired returns true when a still-pending request has passed its
// expiry deadline; expired requests are not actionable
func (r *Request) IsExpired(now time.Time) bool {
	return r.Status == RequestStatusPending && now.After(r.ExpiresAt)
}

// ParticipantRoleOf returns which side of the request the given user is
// bound to, or ParticipantNeither for non-participants
func (r *Request) ParticipantRoleOf(userID string) ParticipantRole {
	switch userID {
	case r.ToMentorID:
		return ParticipantMentor
	case r.FromUserID:
		return ParticipantLearner
	default:
		return ParticipantNeither
	}
}

// CreateRequestPayload is the payload for creating a mentorship request
type CreateRequestPayload struct {
	ToMentorID        string             `json:"toMentorId" binding:"required,uuid"`
	Subject           string             `json:"subject" binding:"required,max=200"`
	Message           string             `json:"message" binding:"required,max=1000"`
	Skills            []string           `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
	SessionType       SessionType        `json:"sessionType" binding:"omitempty,oneof=one-time recurring project-based"`
	Priority          RequestPriority    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	PreferredSchedule *PreferredSchedule `json:"preferredSchedule"`
}

// UpdateRequestPayload is the allow-listed payload for editing a pending
// request. Only the authoring learner may use it; status and participants
// are never client-writable.
type UpdateRequestPayload struct {
	Subject           *string            `json:"subject" binding:"omitempty,min=1,max=200"`
	Message           *string            `json:"message" binding:"omitempty,min=1,max=1000"`
	Skills            *[]string          `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
	SessionType       *SessionType       `json:"sessionType" binding:"omitempty,oneof=one-time recurring project-based"`
	Priority          *RequestPriority   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	PreferredSchedule *PreferredSchedule `json:"preferredSchedule"`
}

// RespondRequestPayload is the payload for accepting or declining a request
type RespondRequestPayload struct {
	ResponseMessage string `json:"responseMessage" binding:"max=1000"`
}

// RequestsResponse is the response for listing requests
type RequestsResponse struct {
	Requests   []*Request `json:"requests"`
	Pagination Pagination `json:"pagination"`
}

// RequestListFilter controls request listing
type RequestListFilter struct {
	Status RequestStatus
	Page   int
	Limit  int
}

// ScanRequest scans a single PostgreSQL row into a Request struct.
// Expected columns: id, from_user_id, to_mentor_id, subject, message,
// skills, session_type, priority, preferred_schedule, status,
// response_message, responded_at, expires_at, created_at, updated_at,
// from_name, from_email, from_avatar_url, to_name, to_email, to_avatar_url
// (snapshot columns from JOIN users)
func ScanRequest(row pgx.Row) (*Request, error) {
	var r Request
	var skills []string
	var preferredSchedule *PreferredSchedule
	var responseMessage *string
	var fromName, fromEmail, toName, toEmail string
	var fromAvatar, toAvatar *string

	err := row.Scan(
		&r.ID,
		&r.FromUserID,
		&r.ToMentorID,
		&r.Subject,
		&r.Message,
		&skills,
		&r.SessionType,
		&r.Priority,
		&preferredSchedule,
		&r.Status,
		&responseMessage,
		&r.RespondedAt,
		&r.ExpiresAt,
		&r.CreatedAt,
		&r.UpdatedAt,
		&fromName,
		&fromEmail,
		&fromAvatar,
		&toName,
		&toEmail,
		&toAvatar,
	)
	if err != nil {
		return nil, err
	}

	r.Skills = skills
	if r.Skills == nil {
		r.Skills = []string{}
	}
	r.PreferredSchedule = preferredSchedule
	r.ResponseMessage = derefString(responseMessage)
	r.FromUser = &UserSnapshot{ID: r.FromUserID, Name: fromName, Email: fromEmail, AvatarURL: derefString(fromAvatar)}
	r.ToMentor = &UserSnapshot{ID: r.ToMentorID, Name: toName, Email: toEmail, AvatarURL: derefString(toAvatar)}

	return &r, nil
}

// ScanRequests scans multiple rows into a slice of Request structs
func ScanRequests(rows pgx.Rows) ([]*Request, error) {
	defer rows.Close()

	requests := []*Request{}
	for rows.Next() {
		request, err := ScanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
