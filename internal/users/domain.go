package users

import "time"

// User represents a platform account.
type User struct {
	ID          string
	Email       string
	Name        string
	IsSiteAdmin bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
