package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// SessionStatus represents the status of a mentorship session
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in-progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
	SessionStatusNoShow     SessionStatus = "no-show"
)

// Session duration bounds in minutes
const (
	MinSessionDuration = 15
	MaxSessionDuration = 240
)

// IsTerminal returns true if the status permits no further transitions
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled || s == SessionStatusNoShow
}

// CanTransitionTo checks if a status transition is valid.
// A session may complete or no-show straight from scheduled: participants
// often close out a session without explicitly starting it.
func (s SessionStatus) CanTransitionTo(newStatus SessionStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case SessionStatusScheduled:
		return newStatus == SessionStatusInProgress ||
			newStatus == SessionStatusCompleted ||
			newStatus == SessionStatusNoShow ||
			newStatus == SessionStatusCancelled
	case SessionStatusInProgress:
		return newStatus == SessionStatusCompleted ||
			newStatus == SessionStatusNoShow ||
			newStatus == SessionStatusCancelled
	default:
		return false
	}
}

// ParticipantRole identifies which side of a session (or request) a user
// is bound to. Used uniformly by notes, feedback and permission checks.
type ParticipantRole int

const (
	ParticipantNeither ParticipantRole = iota
	ParticipantMentor
	ParticipantLearner
)

// String returns the role name used in per-role field access
func (p ParticipantRole) String() string {
	switch p {
	case ParticipantMentor:
		return "mentor"
	case ParticipantLearner:
		return "learner"
	default:
		return "neither"
	}
}

// SessionNotes holds per-role private notes; each side writes only its own
type SessionNotes struct {
	Mentor  string `json:"mentor"`
	Learner string `json:"learner"`
}

// SessionFeedback holds per-role ratings and comments (1-5 scale,
// last write wins per role)
type SessionFeedback struct {
	LearnerRating  *int   `json:"learnerRating,omitempty"`
	MentorRating   *int   `json:"mentorRating,omitempty"`
	LearnerComment string `json:"learnerComment,omitempty"`
	MentorComment  string `json:"mentorComment,omitempty"`
}

// Objective is a single session goal
type Objective struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// ResourceType categorizes a shared session resource
type ResourceType string

const (
	ResourceLink     ResourceType = "link"
	ResourceDocument ResourceType = "document"
	ResourceVideo    ResourceType = "video"
	ResourceBook     ResourceType = "book"
	ResourceOther    ResourceType = "other"
)

// Resource is a link or document shared for the session
type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// RecurringPattern describes a recurring session cadence
type RecurringPattern struct {
	Frequency string     `json:"frequency,omitempty"` // weekly, biweekly, monthly
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Session is a scheduled mentorship engagement created from an accepted
// request. Participants are copied from the request at creation time and
// are immutable thereafter.
type Session struct {
	ID               string            `json:"id"`
	RequestID        string            `json:"requestId"`
	LearnerID        string            `json:"learnerId"`
	MentorID         string            `json:"mentorId"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ScheduledDate    time.Time         `json:"scheduledDate"`
	Duration         int               `json:"duration"` // minutes
	Status           SessionStatus     `json:"status"`
	MeetingLink      string            `json:"meetingLink"`
	Notes            SessionNotes      `json:"notes"`
	Objectives       []Objective       `json:"objectives"`
	Resources        []Resource        `json:"resources"`
	Feedback         SessionFeedback   `json:"feedback"`
	ActualStartTime  *time.Time        `json:"actualStartTime,omitempty"`
	ActualEndTime    *time.Time        `json:"actualEndTime,omitempty"`
	IsRecurring      bool              `json:"isRecurring"`
	RecurringPattern *RecurringPattern `json:"recurringPattern,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`

	// Display snapshots, populated on read paths only
	Learner *UserSnapshot `json:"learner,omitempty"`
	Mentor  *UserSnapshot `json:"mentor,omitempty"`
}

// ParticipantRoleOf returns which side of the session the given user is
// bound to, or ParticipantNeither for non-participants
func (s *Session) ParticipantRoleOf(userID string) ParticipantRole {
	switch userID {
	case s.MentorID:
		return ParticipantMentor
	case s.LearnerID:
		return ParticipantLearner
	default:
		return ParticipantNeither
	}
}

// CreateSessionPayload is the payload for creating a session from an
// accepted request
type CreateSessionPayload struct {
	RequestID        string            `json:"requestId" binding:"required,uuid"`
	Title            string            `json:"title" binding:"required,max=200"`
	Description      string            `json:"description" binding:"max=1000"`
	ScheduledDate    time.Time         `json:"scheduledDate" binding:"required"`
	Duration         int               `json:"duration" binding:"required"`
	MeetingLink      string            `json:"meetingLink" binding:"omitempty,url"`
	IsRecurring      bool              `json:"isRecurring"`
	RecurringPattern *RecurringPattern `json:"recurringPattern"`
}

// UpdateSessionPayload is the allow-listed payload for editing a scheduled
// session. Participants, request linkage and status are never
// client-writable.
type UpdateSessionPayload struct {
	Title         *string      `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string      `json:"description" binding:"omitempty,max=1000"`
	ScheduledDate *time.Time   `json:"scheduledDate"`
	Duration      *int         `json:"duration"`
	MeetingLink   *string      `json:"meetingLink" binding:"omitempty,url"`
	Objectives    *[]Objective `json:"objectives" binding:"omitempty,max=20"`
	Resources     *[]Resource  `json:"resources" binding:"omitempty,max=20"`
}

// SessionNotesPayload is the payload for writing the caller's own notes
type SessionNotesPayload struct {
	Notes string `json:"notes" binding:"required,max=2000"`
}

// SessionFeedbackPayload is the payload for submitting feedback
type SessionFeedbackPayload struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// SessionsResponse is the response for listing sessions
type SessionsResponse struct {
	Sessions   []*Session `json:"sessions"`
	Pagination Pagination `json:"pagination"`
}

// SessionListFilter controls session listing
type SessionListFilter struct {
	Status SessionStatus
	Page   int
	Limit  int
}

// ScanSession scans a single PostgreSQL row into a Session struct.
// Expected columns: id, request_id, learner_id, mentor_id, title,
// description, scheduled_date, duration, status, meeting_link,
// mentor_notes, learner_notes, objectives, resources, learner_rating,
// mentor_rating, learner_comment, mentor_comment, actual_start_time,
// actual_end_time, is_recurring, recurring_pattern, created_at, updated_at,
// learner_name, learner_email, learner_avatar_url, mentor_name,
// mentor_email, mentor_avatar_url (snapshot columns from JOIN users)
func ScanSession(row pgx.Row) (*Session, error) {
	var s Session
	var description, meetingLink, mentorNotes, learnerNotes *string
	var learnerComment, mentorComment *string
	var objectives []Objective
	var resources []Resource
	var recurringPattern *RecurringPattern
	var learnerName, learnerEmail, mentorName, mentorEmail string
	var learnerAvatar, mentorAvatar *string

	err := row.Scan(
		&s.ID,
		&s.RequestID,
		&s.LearnerID,
		&s.MentorID,
		&s.Title,
		&description,
		&s.ScheduledDate,
		&s.Duration,
		&s.Status,
		&meetingLink,
		&mentorNotes,
		&learnerNotes,
		&objectives,
		&resources,
		&s.Feedback.LearnerRating,
		&s.Feedback.MentorRating,
		&learnerComment,
		&mentorComment,
		&s.ActualStartTime,
		&s.ActualEndTime,
		&s.IsRecurring,
		&recurringPattern,
		&s.CreatedAt,
		&s.UpdatedAt,
		&learnerName,
		&learnerEmail,
		&learnerAvatar,
		&mentorName,
		&mentorEmail,
		&mentorAvatar,
	)
	if err != nil {
		return nil, err
	}

	s.Description = derefString(description)
	s.MeetingLink = derefString(meetingLink)
	s.Notes.Mentor = derefString(mentorNotes)
	s.Notes.Learner = derefString(learnerNotes)
	s.Feedback.LearnerComment = derefString(learnerComment)
	s.Feedback.MentorComment = derefString(mentorComment)
	s.Objectives = objectives
	if s.Objectives == nil {
		s.Objectives = []Objective{}
	}
	s.Resources = resources
	if s.Resources == nil {
		s.Resources = []Resource{}
	}
	s.RecurringPattern = recurringPattern
	s.Learner = &UserSnapshot{ID: s.LearnerID, Name: learnerName, Email: learnerEmail, AvatarURL: derefString(learnerAvatar)}
	s.Mentor = &UserSnapshot{ID: s.MentorID, Name: mentorName, Email: mentorEmail, AvatarURL: derefString(mentorAvatar)}

	return &s, nil
}

// ScanSessions scans multiple rows into a slice of Session structs
func ScanSessions(rows pgx.Rows) ([]*Session, error) {
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
