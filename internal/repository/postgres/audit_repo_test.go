package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*AuditRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditRepo(db), mock
}

func TestAuditRepo_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := domain.LoginLogEntry{
		Timestamp: ts, UserID: "admin", IP: "1.2.3.4", UserAgent: "curl", Success: false, Reason: "wrong password",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_audit")).
		WithArgs("1767323045000:abc", ts, "admin", "1.2.3.4", "curl", false, "wrong password").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), "1767323045000:abc", entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_InsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("db down")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_audit")).WillReturnError(boom)

	err := repo.Insert(context.Background(), "id", domain.LoginLogEntry{})
	assert.ErrorIs(t, err, boom)
}

func TestAuditRepo_Recent(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"occurred_at", "user_id", "ip", "user_agent", "success", "reason"}).
		AddRow(newer, "admin", "1.2.3.4", "firefox", true, "login succeeded").
		AddRow(older, "admin", "1.2.3.4", "firefox", false, "wrong password")
	mock.ExpectQuery(regexp.QuoteMeta("FROM login_audit")).WithArgs(10).WillReturnRows(rows)

	entries, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Success)
	assert.Equal(t, newer, entries[0].Timestamp)
	assert.Equal(t, "wrong password", entries[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_DeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM login_audit WHERE occurred_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS login_audit")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
