package team

import "time"

// Team has exactly one declared manager. The manager counts as a member for
// access resolution even without a membership row.
type Team struct {
	ID          string
	Name        string
	Description *string
	ManagerID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links a user to a team; (TeamID, UserID) is unique.
type Membership struct {
	TeamID    string
	UserID    string
	CreatedAt time.Time
}
