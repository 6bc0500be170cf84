package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iamasit07/simpage/backend/internal/domain"
)

// AuditRepo is the durable mirror of the login audit log.
type AuditRepo struct {
	DB *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db}
}

// Insert stores one audit entry under id. Re-inserting the same id is a no-op.
func (r *AuditRepo) Insert(ctx context.Context, id string, entry domain.LoginLogEntry) error {
	query := `
	INSERT INTO login_audit (id, occurred_at, user_id, ip, user_agent, success, reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING;
	`
	_, err := r.DB.ExecContext(ctx, query, id, entry.Timestamp, entry.UserID, entry.IP, entry.UserAgent, entry.Success, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]domain.LoginLogEntry, error) {
	query := `
	SELECT occurred_at, user_id, ip, user_agent, success, reason
	FROM login_audit
	ORDER BY occurred_at DESC
	LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LoginLogEntry, 0, limit)
	for rows.Next() {
		var e domain.LoginLogEntry
		if err := rows.Scan(&e.Timestamp, &e.UserID, &e.IP, &e.UserAgent, &e.Success, &e.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan removes entries recorded before cutoff.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM login_audit WHERE occurred_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}
