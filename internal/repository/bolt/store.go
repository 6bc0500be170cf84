// Package bolt is a single-file repository.Store on top of bbolt, for
// installs that run one process and do not want a Redis dependency.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/simpage/backend/internal/repository"
	"go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

var _ repository.Store = (*Store)(nil)

// record is the on-disk envelope; ExpiresAt is unix millis, 0 for never.
type record struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"e,omitempty"`
}

type Store struct {
	db    *bbolt.DB
	clock func() time.Time
}

// New opens (or creates) the database file at path.
func New(path string, clock func() time.Time) (*Store, error) {
	if clock == nil {
		clock = time.Now
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv bucket: %w", err)
	}

	return &Store{db: db, clock: clock}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	var (
		rec     record
		found   bool
		expired bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketKV).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("corrupt record %q: %w", key, err)
		}
		found = true
		expired = s.isExpired(rec)
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", repository.ErrNotFound
	}
	if expired {
		// lazy eviction; a failed delete is retried by the next Sweep
		_ = s.evictIfExpired(key)
		return "", repository.ErrNotFound
	}
	return rec.Value, nil
}

// evictIfExpired deletes key only if the record stored now is still
// expired, so a value written after the read above survives.
func (s *Store) evictIfExpired(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil
		}
		if !s.isExpired(rec) {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	rec := record{Value: value}
	if ttl > 0 {
		rec.ExpiresAt = s.clock().Add(ttl).UnixMilli()
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), raw)
	})
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sweep deletes every expired record and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil || s.isExpired(rec) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *Store) isExpired(rec record) bool {
	return rec.ExpiresAt != 0 && s.clock().UnixMilli() >= rec.ExpiresAt
}
