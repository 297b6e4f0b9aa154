package attendance

import (
	"context"
	"errors"
	"time"

	"rollcall/internal/account"
	"rollcall/internal/schedule"
)

// Repository is the attendance storage contract.
type Repository interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]ScheduleEntry, error)
	ListByStudent(ctx context.Context, studentID int64) ([]HistoryEntry, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]HistoryEntry, error)
}

// ScheduleSource resolves attendance tokens and schedule ownership.
type ScheduleSource interface {
	GetByToken(ctx context.Context, token string) (*schedule.Schedule, error)
	GetByID(ctx context.Context, id int64) (*schedule.Schedule, error)
}

// AccountSource resolves teacher display names for confirmations.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

// Service validates presented attendance tokens and records presence.
type Service struct {
	repo      Repository
	schedules ScheduleSource
	accounts  AccountSource
	now       func() time.Time
}

// NewService creates an attendance recorder.
func NewService(repo Repository, schedules ScheduleSource, accounts AccountSource) *Service {
	return &Service{
		repo:      repo,
		schedules: schedules,
		accounts:  accounts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record redeems an attendance token for studentID. The token must currently
// be held by a schedule and not past the schedule's end time; one record per
// (student, schedule) pair is enforced by the store's unique index, so a race
// between two concurrent calls yields exactly one success.
func (s *Service) Record(ctx context.Context, studentID int64, token string) (Record, Confirmation, error) {
	sched, err := s.schedules.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return Record{}, Confirmation{}, ErrInvalidToken
		}
		return Record{}, Confirmation{}, err
	}

	now := s.now()
	if sched.QRExpiry == nil || now.After(*sched.QRExpiry) {
		return Record{}, Confirmation{}, ErrTokenExpired
	}

	rec, err := s.repo.Insert(ctx, Record{
		StudentID:  studentID,
		ScheduleID: sched.ID,
		RecordedAt: now,
		Status:     StatusPresent,
	})
	if err != nil {
		return Record{}, Confirmation{}, err
	}

	conf := Confirmation{Subject: sched.Subject}
	if teacher, err := s.accounts.GetByID(ctx, sched.TeacherID); err == nil {
		conf.TeacherName = teacher.Name
	}
	return rec, conf, nil
}

// ListForSchedule returns all records for a schedule the teacher owns.
// A schedule owned by someone else is reported as not found rather than
// leaking its existence.
func (s *Service) ListForSchedule(ctx context.Context, teacherID, scheduleID int64) ([]ScheduleEntry, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched.TeacherID != teacherID {
		return nil, schedule.ErrNotFound
	}
	return s.repo.ListBySchedule(ctx, scheduleID)
}

// HistoryFor returns the account's attendance history: a student sees their
// own records, a teacher sees records across all owned schedules.
func (s *Service) HistoryFor(ctx context.Context, acct *account.Account) ([]HistoryEntry, error) {
	if acct.Role == account.RoleTeacher {
		return s.repo.ListByTeacher(ctx, acct.ID)
	}
	return s.repo.ListByStudent(ctx, acct.ID)
}
