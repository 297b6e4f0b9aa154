package store

import (
	"context"

	"github.com/pressly/goose/v3"

	"rollcall/internal/store/migrations"
)

// Migrate brings the schema up to date using the embedded migrations.
// The uniqueness constraints on accounts.username and
// attendance_records(student_id, schedule_id) live here; the application
// relies on them rather than re-checking under concurrency.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, d.Client, ".")
}
