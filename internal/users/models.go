package users

import "strings"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCollege Role = "COLLEGE"
	RoleStudent Role = "STUDENT"
)

// User is the logged-in identity handed to the booking workflow.
// It is read from verified token claims, never from ambient storage.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}

// ParseRole normalizes a role claim
func ParseRole(role string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(role)))
}

func IsValidRole(role string) bool {
	switch ParseRole(role) {
	case RoleAdmin, RoleCollege, RoleStudent:
		return true
	default:
		return false
	}
}

// CanBook reports whether the user may book programs. Only students can.
func (u *User) CanBook() bool {
	return u != nil && u.ID > 0 && u.Role == RoleStudent
}
