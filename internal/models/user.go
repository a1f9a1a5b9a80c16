package models

import (
	"slices"
	"time"
)

// Roles a user account can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	PasswordHash string   `json:"-"` // Don't return password in JSON
	IsActive     bool     `json:"-"`
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID    string
	SessionID string
	Roles     []string
	Token     string
}

func (i Identity) IsAdmin() bool {
	return slices.Contains(i.Roles, RoleAdmin)
}

// Owner returns the decision owner for this identity.
func (i Identity) Owner() Owner {
	return Owner{UserID: i.UserID, Token: i.Token}
}
