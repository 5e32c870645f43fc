package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Role is the single privilege level carried by an account.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleVendor  Role = "VENDOR"
	RoleAdmin   Role = "ADMIN"
)

// User is an account that can sign in: students order, vendors fulfil, admins operate.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}
