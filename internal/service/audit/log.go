// Package audit records every login attempt. Entries are written once to
// the key-value store with a retention TTL and optionally mirrored to
// Postgres, which also serves the admin listing.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/iamasit07/simpage/backend/pkg/uid"
)

const keyPrefix = "LOGIN_LOG:"

// Mirror is a durable copy of the log. *postgres.AuditRepo satisfies it.
type Mirror interface {
	Insert(ctx context.Context, id string, entry domain.LoginLogEntry) error
	Recent(ctx context.Context, limit int) ([]domain.LoginLogEntry, error)
}

type Log struct {
	store     repository.Store
	mirror    Mirror
	retention time.Duration
	logger    *slog.Logger
	clock     func() time.Time
}

// NewLog builds the audit log. mirror may be nil.
func NewLog(store repository.Store, mirror Mirror, retention time.Duration, logger *slog.Logger, clock func() time.Time) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Log{
		store:     store,
		mirror:    mirror,
		retention: retention,
		logger:    logger.With("component", "audit"),
		clock:     clock,
	}
}

// Record appends entry. A zero Timestamp is stamped with the current time.
// Mirror failures are logged and never fail the call.
func (l *Log) Record(ctx context.Context, entry domain.LoginLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.clock()
	}

	id := uid.NewLogKeySuffix(entry.Timestamp)
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, keyPrefix+id, string(data), l.retention); err != nil {
		return domain.UpstreamError(fmt.Errorf("failed to write audit entry: %w", err))
	}

	if l.mirror != nil {
		if err := l.mirror.Insert(ctx, id, entry); err != nil {
			l.logger.Warn("audit mirror write failed", "id", id, "error", err)
		}
	}

	l.logger.Info("login attempt",
		"user_id", entry.UserID,
		"ip", entry.IP,
		"success", entry.Success,
		"reason", entry.Reason,
	)
	return nil
}

// Recent returns up to limit entries, newest first. Without a mirror the
// list is empty.
func (l *Log) Recent(ctx context.Context, limit int) ([]domain.LoginLogEntry, error) {
	if l.mirror == nil {
		return []domain.LoginLogEntry{}, nil
	}
	entries, err := l.mirror.Recent(ctx, limit)
	if err != nil {
		return nil, domain.UpstreamError(err)
	}
	return entries, nil
}
