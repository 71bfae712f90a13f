package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// ValidRole reports whether r is one of the three known roles. Role
// checks elsewhere are exact string comparisons; there is no hierarchy
// (MANAGER does not imply STAFF).
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	LastLogin time.Time  `json:"lastLogin,omitzero"`
}
