package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestInsertAssignsIDAndStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`INSERT INTO attendance_records`).
		WithArgs(sqlmock.AnyArg(), int64(7), int64(3), now, StatusPresent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := repo.Insert(context.Background(), Record{StudentID: 7, ScheduleID: 3, RecordedAt: now})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPresent, rec.Status)
}

func TestInsertMapsUniqueViolationToDuplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`INSERT INTO attendance_records`).
		WithArgs(sqlmock.AnyArg(), int64(7), int64(3), now, StatusPresent).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Insert(context.Background(), Record{StudentID: 7, ScheduleID: 3, RecordedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestListByScheduleResolvesNames(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now()
	rows := sqlmock.NewRows([]string{"student_id", "name", "recorded_at", "status"}).
		AddRow(int64(7), "Alice", ts, StatusPresent).
		AddRow(int64(8), "Bob", ts, StatusPresent)
	mock.ExpectQuery(`SELECT .* FROM attendance_records`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	entries, err := repo.ListBySchedule(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].StudentName)
}
