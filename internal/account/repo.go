package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository persists accounts in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, password_hash, role, name, student_id, section,
	failed_attempts, last_failed_at, locked, created_at`

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.Name, &a.StudentID,
		&a.Section, &a.FailedAttempts, &a.LastFailedAt, &a.Locked, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

// Create inserts a new account. The unique index on username turns a
// concurrent duplicate registration into ErrDuplicateUsername.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (username, password_hash, role, name, student_id, section)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.Username, a.PasswordHash, a.Role, a.Name, a.StudentID, a.Section)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// GetByUsername returns the account matching username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

// GetByID returns the account with the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// RecordFailure bumps the failure counter and flips the lock flag once the
// threshold is reached, in a single statement so concurrent bad logins
// serialize on the row.
func (r *PostgresRepository) RecordFailure(ctx context.Context, id int64, at time.Time, threshold int) (int, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET failed_attempts = failed_attempts + 1,
		    last_failed_at = $2,
		    locked = locked OR (failed_attempts + 1 >= $3)
		WHERE id = $1
		RETURNING failed_attempts, locked
	`, id, at, threshold)
	var attempts int
	var locked bool
	if err := row.Scan(&attempts, &locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, fmt.Errorf("db error: %w", err)
	}
	return attempts, locked, nil
}

// ResetFailures clears the lockout state after a successful login or an
// expired lock window.
func (r *PostgresRepository) ResetFailures(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET failed_attempts = 0, last_failed_at = NULL, locked = FALSE
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
