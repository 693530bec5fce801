package models

import "time"

// Group is a named set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// AdminUserID is the user who created the group and may delete it.
	AdminUserID string

	// Members are user IDs. The admin is always a member.
	Members []string

	CreatedAt time.Time
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
