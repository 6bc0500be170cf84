// Package login orchestrates a password login: lockout, credential check,
// session creation and the audit trail.
package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/service/audit"
	"github.com/iamasit07/simpage/backend/internal/service/credential"
	"github.com/iamasit07/simpage/backend/internal/service/lockout"
	"github.com/iamasit07/simpage/backend/internal/service/session"
)

// Audit reasons.
const (
	ReasonEmptyPassword   = "empty password"
	ReasonLocked          = "account locked"
	ReasonNoCredential    = "credential unavailable"
	ReasonWrongPassword   = "wrong password"
	ReasonSucceeded       = "login succeeded"
	ReasonUpstreamFailure = "store unavailable"
)

type Attempt struct {
	Password  string
	IP        string
	UserAgent string
	Device    domain.DeviceInfo
}

type Result struct {
	Session      *domain.Session
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type Service struct {
	credentials *credential.Service
	lockout     *lockout.Tracker
	sessions    *session.AuthService
	audit       *audit.Log
	accessTTL   time.Duration
	logger      *slog.Logger
}

func NewService(
	credentials *credential.Service,
	tracker *lockout.Tracker,
	sessions *session.AuthService,
	auditLog *audit.Log,
	cfg config.Security,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		credentials: credentials,
		lockout:     tracker,
		sessions:    sessions,
		audit:       auditLog,
		accessTTL:   cfg.AccessTokenTTL,
		logger:      logger.With("component", "login"),
	}
}

// Login runs one attempt. Every outcome is written to the audit log before
// the call returns.
func (s *Service) Login(ctx context.Context, attempt Attempt) (*Result, error) {
	username := s.credentials.Username()

	if attempt.Password == "" {
		s.record(ctx, attempt, false, ReasonEmptyPassword)
		return nil, domain.ValidationError("password is required")
	}

	status, err := s.lockout.Check(ctx, attempt.IP, username)
	if err != nil {
		s.record(ctx, attempt, false, ReasonUpstreamFailure)
		return nil, domain.UpstreamError(err)
	}
	if status.Locked {
		s.record(ctx, attempt, false, ReasonLocked)
		return nil, domain.RateLimitError(fmt.Sprintf("too many failed attempts, try again in %d seconds", status.RemainingSeconds))
	}

	ok, err := s.credentials.Verify(ctx, attempt.Password)
	if err != nil {
		if domain.KindOf(err) == domain.KindConfig {
			s.logger.Error("admin credential missing or malformed")
			s.record(ctx, attempt, false, ReasonNoCredential)
		} else {
			s.record(ctx, attempt, false, ReasonUpstreamFailure)
		}
		return nil, err
	}

	if !ok {
		rec, err := s.lockout.RecordFailure(ctx, attempt.IP, username)
		if err != nil {
			s.record(ctx, attempt, false, ReasonUpstreamFailure)
			return nil, domain.UpstreamError(err)
		}
		s.record(ctx, attempt, false, ReasonWrongPassword)
		if rec.LockedUntil != nil {
			s.logger.Warn("login locked out", "ip", attempt.IP, "attempts", rec.Attempts, "until", rec.LockedUntil)
		}
		return nil, domain.AuthError("incorrect password")
	}

	if err := s.lockout.Clear(ctx, attempt.IP, username); err != nil {
		s.record(ctx, attempt, false, ReasonUpstreamFailure)
		return nil, domain.UpstreamError(err)
	}

	sess, err := s.sessions.CreateSession(ctx, attempt.Device, username)
	if err != nil {
		s.record(ctx, attempt, false, ReasonUpstreamFailure)
		return nil, err
	}
	s.record(ctx, attempt, true, ReasonSucceeded)

	return &Result{
		Session:      sess,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) record(ctx context.Context, attempt Attempt, success bool, reason string) {
	entry := domain.LoginLogEntry{
		UserID:    s.credentials.Username(),
		IP:        attempt.IP,
		UserAgent: attempt.UserAgent,
		Success:   success,
		Reason:    reason,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record login attempt", "ip", attempt.IP, "reason", reason, "error", err)
	}
}
