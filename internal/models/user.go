package models

import "time"

// Role controls what a user may administer. Aggregation access for
// non-admins is decided per group through GroupAccess rows.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Email links a commit author email to a platform user. Populated from
// the verified email lists the OAuth providers return.
type Email struct {
	ID     int64  `json:"-"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
