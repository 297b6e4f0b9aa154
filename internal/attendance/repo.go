package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository persists attendance records in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes a new record. The unique index on (student_id, schedule_id)
// decides the race between concurrent inserts: the loser gets ErrDuplicate.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, schedule_id, recorded_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.StudentID, rec.ScheduleID, rec.RecordedAt, rec.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Record{}, ErrDuplicate
		}
		return Record{}, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// ListBySchedule returns all records for one schedule with student names resolved.
func (r *PostgresRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]ScheduleEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.student_id, acc.name, a.recorded_at, a.status
		FROM attendance_records a
		JOIN accounts acc ON acc.id = a.student_id
		WHERE a.schedule_id = $1
		ORDER BY a.recorded_at
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	var res []ScheduleEntry
	for rows.Next() {
		var e ScheduleEntry
		if err := rows.Scan(&e.StudentID, &e.StudentName, &e.RecordedAt, &e.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

const historyColumns = `a.schedule_id, s.subject, t.name, a.recorded_at, a.status`

// ListByStudent returns the student's own history.
func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID int64) ([]HistoryEntry, error) {
	return r.history(ctx, `
		SELECT `+historyColumns+`
		FROM attendance_records a
		JOIN schedules s ON s.id = a.schedule_id
		JOIN accounts t ON t.id = s.teacher_id
		WHERE a.student_id = $1
		ORDER BY a.recorded_at DESC
	`, studentID)
}

// ListByTeacher returns all records across schedules owned by the teacher.
func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]HistoryEntry, error) {
	return r.history(ctx, `
		SELECT `+historyColumns+`
		FROM attendance_records a
		JOIN schedules s ON s.id = a.schedule_id
		JOIN accounts t ON t.id = s.teacher_id
		WHERE s.teacher_id = $1
		ORDER BY a.recorded_at DESC
	`, teacherID)
}

func (r *PostgresRepository) history(ctx context.Context, query string, arg any) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	var res []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ScheduleID, &e.Subject, &e.TeacherName, &e.RecordedAt, &e.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
