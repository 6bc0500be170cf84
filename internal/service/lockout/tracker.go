// Package lockout throttles password guessing per (client IP, username).
//
// A record moves Clear -> Accumulating(n) -> Locked(until). It is written
// with a TTL equal to the lockout duration, so an abandoned record expires
// on its own and a successful login deletes it outright.
package lockout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/repository"
)

const keyPrefix = "LOGIN_ATTEMPTS:"

type Tracker struct {
	store       repository.Store
	maxAttempts int
	duration    time.Duration
	clock       func() time.Time
}

func NewTracker(store repository.Store, cfg config.Security, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		store:       store,
		maxAttempts: cfg.MaxLoginAttempts,
		duration:    cfg.LockoutDuration,
		clock:       clock,
	}
}

// Check reports whether (ip, username) is currently locked out.
func (t *Tracker) Check(ctx context.Context, ip, username string) (domain.LockoutStatus, error) {
	rec, err := t.load(ctx, ip, username)
	if err != nil {
		return domain.LockoutStatus{}, err
	}
	if rec == nil {
		return domain.LockoutStatus{}, nil
	}

	now := t.clock()
	if rec.LockedUntil != nil && now.Before(*rec.LockedUntil) {
		remaining := rec.LockedUntil.Sub(now)
		return domain.LockoutStatus{
			Locked:           true,
			RemainingSeconds: int(math.Ceil(remaining.Seconds())),
			Attempts:         rec.Attempts,
		}, nil
	}
	return domain.LockoutStatus{Attempts: rec.Attempts}, nil
}

// RecordFailure counts one more failed attempt and locks once the
// threshold is reached.
func (t *Tracker) RecordFailure(ctx context.Context, ip, username string) (domain.LockoutRecord, error) {
	rec, err := t.load(ctx, ip, username)
	if err != nil {
		return domain.LockoutRecord{}, err
	}
	if rec == nil {
		rec = &domain.LockoutRecord{}
	}

	now := t.clock()
	rec.Attempts++
	rec.LastAttempt = now
	if rec.Attempts >= t.maxAttempts {
		until := now.Add(t.duration)
		rec.LockedUntil = &until
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.LockoutRecord{}, err
	}
	if err := t.store.Set(ctx, key(ip, username), string(raw), t.duration); err != nil {
		return domain.LockoutRecord{}, fmt.Errorf("failed to persist lockout record: %w", err)
	}
	return *rec, nil
}

// Clear forgets all failures for (ip, username).
func (t *Tracker) Clear(ctx context.Context, ip, username string) error {
	if err := t.store.Del(ctx, key(ip, username)); err != nil {
		return fmt.Errorf("failed to clear lockout record: %w", err)
	}
	return nil
}

// load returns nil for a missing or unreadable record.
func (t *Tracker) load(ctx context.Context, ip, username string) (*domain.LockoutRecord, error) {
	raw, err := t.store.Get(ctx, key(ip, username))
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lockout record: %w", err)
	}

	var rec domain.LockoutRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func key(ip, username string) string {
	return keyPrefix + ip + ":" + username
}
