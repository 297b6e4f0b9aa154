package schedule

import (
	"errors"
	"time"
)

// Schedule is a time-bounded class session owned by a teacher. QRToken and
// QRExpiry hold the currently active attendance token; both are nil until a
// token is issued. Re-issuing overwrites them, which orphans the previous
// token value.
type Schedule struct {
	ID        int64      `json:"id"`
	TeacherID int64      `json:"teacher_id"`
	Section   string     `json:"section"`
	Subject   string     `json:"subject"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	QRToken   *string    `json:"qr_token,omitempty"`
	QRExpiry  *time.Time `json:"qr_expiry,omitempty"`
}

var (
	ErrNotFound      = errors.New("schedule not found")
	ErrInvalidWindow = errors.New("schedule end must be after start")
)
