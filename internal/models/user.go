// Package models defines the data structures that map to storage records
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DefaultProfileImage is assigned to users created without a profile image.
const DefaultProfileImage = "default-avatar.jpg"

// User is an account known to the blog. Credentials live with the identity
// provider; this record only carries profile and authorization data.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary returns the public projection embedded in post and comment payloads.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}

// UserSummary is the author projection shown alongside posts and comments.
type UserSummary struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
}

// Principal is the authenticated actor attached to a request.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin returns true if the principal acts with admin rights.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
