package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository persists schedules in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const scheduleColumns = `id, teacher_id, section, subject, start_time, end_time, qr_token, qr_expiry`

func scanSchedule(row *sql.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.TeacherID, &s.Section, &s.Subject, &s.StartTime, &s.EndTime, &s.QRToken, &s.QRExpiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &s, nil
}

// Create inserts a new schedule with no active token.
func (r *PostgresRepository) Create(ctx context.Context, s *Schedule) (*Schedule, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO schedules (teacher_id, section, subject, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, s.TeacherID, s.Section, s.Subject, s.StartTime, s.EndTime)
	if err := row.Scan(&s.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// GetByID returns a single schedule.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Schedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	return scanSchedule(row)
}

// GetByToken returns the schedule currently holding the attendance token.
// An overwritten token no longer matches any row.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Schedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE qr_token = $1`, token)
	return scanSchedule(row)
}

// ListByTeacher returns all schedules owned by the teacher.
func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE teacher_id = $1 ORDER BY start_time`, teacherID)
}

// ListBySection returns all schedules for a student section.
func (r *PostgresRepository) ListBySection(ctx context.Context, section string) ([]Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE section = $1 ORDER BY start_time`, section)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	var res []Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.TeacherID, &s.Section, &s.Subject, &s.StartTime, &s.EndTime, &s.QRToken, &s.QRExpiry); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// SetToken stores a freshly minted attendance token on the schedule, expiring
// at the schedule's own end time. The teacher ownership check and the
// overwrite happen in one statement.
func (r *PostgresRepository) SetToken(ctx context.Context, scheduleID, teacherID int64, token string) (*Schedule, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE schedules
		SET qr_token = $3, qr_expiry = end_time
		WHERE id = $1 AND teacher_id = $2
		RETURNING `+scheduleColumns+`
	`, scheduleID, teacherID, token)
	return scanSchedule(row)
}
