package account

import (
	"errors"
	"time"
)

// Roles form a closed set; listing operations branch on them instead of
// subclassing the account type.
const (
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

// Account is a registered teacher or student.
type Account struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	Name           string     `json:"name"`
	StudentID      string     `json:"student_id,omitempty"`
	Section        string     `json:"section,omitempty"`
	FailedAttempts int        `json:"-"`
	LastFailedAt   *time.Time `json:"-"`
	Locked         bool       `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrLocked             = errors.New("account is locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}
