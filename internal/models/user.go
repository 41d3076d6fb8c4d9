package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// User represents a platform user (mentor or learner). Identity is owned by
// the external identity provider; this record carries the profile.
type User struct {
	ID              string    `json:"id"`
	ExternalUID     string    `json:"-"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	Bio             string    `json:"bio"`
	Skills          []string  `json:"skills"`
	AvatarURL       string    `json:"avatarUrl"`
	Location        string    `json:"location"`
	ExperienceYears int       `json:"experienceYears"`
	Rating          float64   `json:"rating"`
	TotalSessions   int       `json:"totalSessions"`
	HourlyRate      float64   `json:"hourlyRate"`
	IsActive        bool      `json:"isActive"`
	IsVerified      bool      `json:"isVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserSnapshot is the denormalized display snapshot embedded in engagement
// read paths (name/avatar only, never authoritative)
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// UpdateProfileRequest is the allow-listed payload for profile updates.
// Role, email and verification flags are never client-writable.
type UpdateProfileRequest struct {
	Name            *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Bio             *string   `json:"bio" binding:"omitempty,max=500"`
	Skills          *[]string `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
	Location        *string   `json:"location" binding:"omitempty,max=100"`
	ExperienceYears *int      `json:"experienceYears" binding:"omitempty,min=0,max=80"`
	HourlyRate      *float64  `json:"hourlyRate" binding:"omitempty,min=0"`
}

// UploadAvatarRequest is the payload for avatar uploads (base64 or data URI)
type UploadAvatarRequest struct {
	ImageData   string `json:"imageData" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

// MentorFilterOptions controls mentor directory listing
type MentorFilterOptions struct {
	Skill  string
	Search string
	Page   int
	Limit  int
}

// Pagination is the standard paginated-list envelope
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
}

// NewPagination computes the envelope from page/limit/total
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
	}
}

// MentorsResponse is the response for the mentor directory
type MentorsResponse struct {
	Mentors    []*User    `json:"mentors"`
	Pagination Pagination `json:"pagination"`
}

// ScanUser scans a single PostgreSQL row into a User struct.
// Expected columns: id, external_uid, email, name, role, bio, skills,
// avatar_url, location, experience_years, rating, total_sessions,
// hourly_rate, is_active, is_verified, created_at, updated_at
func ScanUser(row pgx.Row) (*User, error) {
	var u User
	var bio, avatarURL, location *string
	var skills []string

	err := row.Scan(
		&u.ID,
		&u.ExternalUID,
		&u.Email,
		&u.Name,
		&u.Role,
		&bio,
		&skills,
		&avatarURL,
		&location,
		&u.ExperienceYears,
		&u.Rating,
		&u.TotalSessions,
		&u.HourlyRate,
		&u.IsActive,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Bio = derefString(bio)
	u.AvatarURL = derefString(avatarURL)
	u.Location = derefString(location)
	u.Skills = skills
	if u.Skills == nil {
		u.Skills = []string{}
	}

	return &u, nil
}

// ScanUsers scans multiple rows into a slice of User structs
func ScanUsers(rows pgx.Rows) ([]*User, error) {
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		user, err := ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// derefString returns the value of a nullable string column
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
