// Package credential keeps the single admin credential in the key-value
// store as a salted PBKDF2 hash.
package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/iamasit07/simpage/backend/pkg/auth"
)

const (
	keyPrefix         = "CREDENTIAL:"
	MinPasswordLength = 6
)

type Service struct {
	store    repository.Store
	username string
	logger   *slog.Logger
}

func NewService(store repository.Store, username string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		username: username,
		logger:   logger.With("component", "credential"),
	}
}

// Username is the principal this credential belongs to.
func (s *Service) Username() string {
	return s.username
}

// Load returns the stored credential. A missing or malformed record is a
// configuration error.
func (s *Service) Load(ctx context.Context) (*domain.Credential, error) {
	cred, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if !cred.Valid() {
		return nil, domain.ConfigError("login unavailable")
	}
	return cred, nil
}

// Verify checks password against the stored credential.
func (s *Service) Verify(ctx context.Context, password string) (bool, error) {
	cred, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return auth.VerifyPassword(password, cred.PasswordSalt, cred.PasswordHash), nil
}

// EnsureDefault writes a credential for password only when none exists.
// It reports whether a record was created.
func (s *Service) EnsureDefault(ctx context.Context, password string) (bool, error) {
	cred, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	if cred.Valid() {
		return false, nil
	}
	if err := s.write(ctx, password); err != nil {
		return false, err
	}
	s.logger.Warn("bootstrapped default admin credential, change it after first login", "username", s.username)
	return true, nil
}

// Reset overwrites the credential unconditionally.
func (s *Service) Reset(ctx context.Context, password string) error {
	clean := strings.TrimSpace(password)
	if len(clean) < MinPasswordLength {
		return domain.ValidationError(fmt.Sprintf("new password must be at least %d characters", MinPasswordLength))
	}
	if err := s.write(ctx, clean); err != nil {
		return err
	}
	s.logger.Info("admin credential reset", "username", s.username)
	return nil
}

// ChangePassword replaces the credential after checking current.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" {
		return domain.ValidationError("current password is required")
	}
	clean := strings.TrimSpace(next)
	if len(clean) < MinPasswordLength {
		return domain.ValidationError(fmt.Sprintf("new password must be at least %d characters", MinPasswordLength))
	}

	cred, err := s.read(ctx)
	if err != nil {
		return err
	}
	if !cred.Valid() {
		return domain.ConfigError("password change unavailable")
	}

	if !auth.VerifyPassword(current, cred.PasswordSalt, cred.PasswordHash) {
		return domain.AuthError("current password is incorrect")
	}
	if auth.VerifyPassword(clean, cred.PasswordSalt, cred.PasswordHash) {
		return domain.ValidationError("new password must differ from the current one")
	}

	if err := s.write(ctx, clean); err != nil {
		return err
	}
	s.logger.Info("admin password changed", "username", s.username)
	return nil
}

// read returns nil when the record is absent or unreadable.
func (s *Service) read(ctx context.Context) (*domain.Credential, error) {
	raw, err := s.store.Get(ctx, keyPrefix+s.username)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.UpstreamError(fmt.Errorf("failed to read credential: %w", err))
	}

	var cred domain.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		s.logger.Error("stored credential is malformed", "username", s.username, "error", err)
		return nil, nil
	}
	return &cred, nil
}

func (s *Service) write(ctx context.Context, password string) error {
	hash, salt, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	data, err := json.Marshal(domain.Credential{PasswordHash: hash, PasswordSalt: salt})
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, keyPrefix+s.username, string(data), 0); err != nil {
		return domain.UpstreamError(fmt.Errorf("failed to write credential: %w", err))
	}
	return nil
}
