package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS login_audit (
	id          TEXT PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	user_id     TEXT NOT NULL,
	ip          TEXT NOT NULL,
	user_agent  TEXT NOT NULL,
	success     BOOLEAN NOT NULL,
	reason      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_login_audit_occurred_at ON login_audit (occurred_at DESC);
`

// RunMigrations creates the audit table when it does not exist yet.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
