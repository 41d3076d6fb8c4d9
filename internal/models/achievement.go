package models

import (
	"github.com/jackc/pgx/v5"
)

// Achievement is a catalog entry in the gamification system
type Achievement struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	Target      int    `json:"target"`
}

// AchievementProgress is a user's progress toward one achievement
type AchievementProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// UserAchievement is a catalog entry annotated with the caller's progress.
// Unlocks are derived live from engagement counts, so there is no stored
// unlock moment to report.
type UserAchievement struct {
	Achievement
	Unlocked bool                `json:"unlocked"`
	Progress AchievementProgress `json:"progress"`
}

// EngagementStats are the per-user counts achievements are computed from
type EngagementStats struct {
	CompletedSessions int
	AcceptedRequests  int
	DistinctMentors   int
	FeedbackGiven     int
}

// ScanAchievement scans a single PostgreSQL row into an Achievement.
// Expected columns: code, title, description, icon, category, points, target
func ScanAchievement(row pgx.Row) (*Achievement, error) {
	var a Achievement
	err := row.Scan(
		&a.Code,
		&a.Title,
		&a.Description,
		&a.Icon,
		&a.Category,
		&a.Points,
		&a.Target,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ScanAchievements scans multiple rows into a slice of Achievement structs
func ScanAchievements(rows pgx.Rows) ([]*Achievement, error) {
	defer rows.Close()

	achievements := []*Achievement{}
	for rows.Next() {
		achievement, err := ScanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return achievements, nil
}
