package models

import "time"

// User represents a person. Most rows in the database are (indirectly) linked
// to a user account, so this sits at the core of ownership tracking.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	// Affiliation helps keeping track of external users.
	Affiliation string `json:"affiliation,omitempty"`
	// Password is the bcrypt hash, never the plain text.
	Password    string `json:"password,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
	// Deleting an account risks dangling references elsewhere in the DB,
	// so deactivating via this flag is preferred.
	IsActive bool `json:"is_active"`
}

// AuthToken is a long-lived API token for a user.
type AuthToken struct {
	TokenID  string     `json:"token_id"`
	Username string     `json:"username"`
	ValidTil *time.Time `json:"valid_til,omitempty"`
}
