package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	// RoleController is the privileged administrative role, authorized
	// for meeting delete and archive operations.
	RoleController Role = "controller"
	RoleMember     Role = "member"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsController reports whether the user holds the privileged role.
func (u *User) IsController() bool {
	return u.Role == RoleController
}
