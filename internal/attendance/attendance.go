package attendance

import (
	"errors"
	"time"
)

// StatusPresent is the only status written in scope; the column exists so
// richer statuses can be added without a migration.
const StatusPresent = "Present"

// Record is a single attendance entry. At most one exists per
// (student, schedule) pair, enforced by a unique index in the store.
type Record struct {
	ID         string    `json:"id"`
	StudentID  int64     `json:"student_id"`
	ScheduleID int64     `json:"schedule_id"`
	RecordedAt time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

// Confirmation echoes subject and teacher back to the student after a
// successful recording.
type Confirmation struct {
	Subject     string `json:"subject"`
	TeacherName string `json:"teacher"`
}

// ScheduleEntry is a per-schedule listing row with the student resolved to a
// display name.
type ScheduleEntry struct {
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	RecordedAt  time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// HistoryEntry is a history row resolved to subject and teacher name.
type HistoryEntry struct {
	ScheduleID  int64     `json:"schedule_id"`
	Subject     string    `json:"subject"`
	TeacherName string    `json:"teacher_name"`
	RecordedAt  time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

var (
	ErrInvalidToken = errors.New("no schedule holds this attendance token")
	ErrTokenExpired = errors.New("attendance token expired")
	ErrDuplicate    = errors.New("attendance already recorded")
)
