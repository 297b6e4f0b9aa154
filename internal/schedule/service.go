package schedule

import (
	"context"
	"fmt"
	"time"

	"rollcall/internal/account"
)

// Repository is the schedule registry storage contract.
type Repository interface {
	Create(ctx context.Context, s *Schedule) (*Schedule, error)
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	GetByToken(ctx context.Context, token string) (*Schedule, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]Schedule, error)
	ListBySection(ctx context.Context, section string) ([]Schedule, error)
	SetToken(ctx context.Context, scheduleID, teacherID int64, token string) (*Schedule, error)
}

// Service manages schedules and mints attendance tokens for them.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a schedule service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create registers a new class session owned by teacherID. The window is
// fixed at creation.
func (s *Service) Create(ctx context.Context, teacherID int64, section, subject string, start, end time.Time) (*Schedule, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	return s.repo.Create(ctx, &Schedule{
		TeacherID: teacherID,
		Section:   section,
		Subject:   subject,
		StartTime: start,
		EndTime:   end,
	})
}

// ListFor returns the schedules visible to the account: owned schedules for
// teachers, section schedules for students.
func (s *Service) ListFor(ctx context.Context, acct *account.Account) ([]Schedule, error) {
	if acct.Role == account.RoleTeacher {
		return s.repo.ListByTeacher(ctx, acct.ID)
	}
	return s.repo.ListBySection(ctx, acct.Section)
}

// IssueToken mints a new attendance token for the schedule and stores it with
// an expiry equal to the schedule's end time. Schedule id plus a nanosecond
// timestamp keeps token values unique among active tokens. Any previously
// issued token is overwritten and stops matching.
func (s *Service) IssueToken(ctx context.Context, teacherID, scheduleID int64) (string, time.Time, error) {
	token := fmt.Sprintf("attendance-%d-%d", scheduleID, s.now().UnixNano())
	updated, err := s.repo.SetToken(ctx, scheduleID, teacherID, token)
	if err != nil {
		return "", time.Time{}, err
	}
	return *updated.QRToken, *updated.QRExpiry, nil
}
