package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/iamasit07/simpage/backend/pkg/auth"
	"github.com/iamasit07/simpage/backend/pkg/uid"
)

const (
	sessionKeyPrefix       = "SESSION:"
	accessTokenKeyPrefix   = "ACCESS_TOKEN:"
	refreshTokenKeyPrefix  = "REFRESH_TOKEN:"
	activeSessionKeyPrefix = "ACTIVE_SESSION:"
	blacklistKeyPrefix     = "BLACKLIST:"

	blacklistValue = "revoked"
)

// Reasons reported by ValidateAccessToken.
const (
	ReasonRevoked  = "token revoked"
	ReasonInvalid  = "token invalid or expired"
	ReasonInactive = "session is no longer active"
)

// Validation is the outcome of checking an access token. Expected
// invalidity is reported through Reason; Err is set only when the store
// could not be consulted.
type Validation struct {
	Valid   bool
	Session *domain.Session
	Reason  string
	Err     error
}

func invalid(reason string) Validation {
	return Validation{Reason: reason}
}

// AuthService owns the session lifecycle. The SESSION record is
// authoritative; token mappings and the active-session pointer are indexes
// that carry their own TTL.
type AuthService struct {
	store  repository.Store
	cfg    config.Security
	tokens *auth.TokenIssuer
	logger *slog.Logger
	clock  func() time.Time
}

func NewAuthService(store repository.Store, cfg config.Security, tokens *auth.TokenIssuer, logger *slog.Logger, clock func() time.Time) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		store:  store,
		cfg:    cfg,
		tokens: tokens,
		logger: logger.With("component", "session"),
		clock:  clock,
	}
}

// CreateSession issues a token pair for userID. With single sign-on
// enabled the user's previous session is evicted before anything new is
// written.
func (s *AuthService) CreateSession(ctx context.Context, device domain.DeviceInfo, userID string) (*domain.Session, error) {
	if s.cfg.EnableSSO {
		if err := s.evict(ctx, userID); err != nil {
			return nil, domain.UpstreamError(err)
		}
	}

	sessionID := uid.NewSessionID()
	accessToken, _, err := s.tokens.Issue(auth.TokenTypeAccess, userID, sessionID)
	if err != nil {
		return nil, domain.UpstreamError(err)
	}
	refreshToken, _, err := s.tokens.Issue(auth.TokenTypeRefresh, userID, sessionID)
	if err != nil {
		return nil, domain.UpstreamError(err)
	}

	now := s.clock()
	session := &domain.Session{
		SessionID:    sessionID,
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    now,
		LastAccessAt: now,
		ExpiresAt:    now.Add(s.cfg.RefreshTokenTTL),
		DeviceInfo:   device,
		IsActive:     true,
	}

	if err := s.saveSession(ctx, session, s.cfg.RefreshTokenTTL); err != nil {
		return nil, domain.UpstreamError(err)
	}
	if err := s.store.Set(ctx, accessTokenKeyPrefix+accessToken, sessionID, s.cfg.AccessTokenTTL); err != nil {
		return nil, domain.UpstreamError(fmt.Errorf("failed to store access token mapping: %w", err))
	}
	if err := s.store.Set(ctx, refreshTokenKeyPrefix+refreshToken, sessionID, s.cfg.RefreshTokenTTL); err != nil {
		return nil, domain.UpstreamError(fmt.Errorf("failed to store refresh token mapping: %w", err))
	}
	if err := s.store.Set(ctx, activeSessionKeyPrefix+userID, sessionID, s.cfg.RefreshTokenTTL); err != nil {
		return nil, domain.UpstreamError(fmt.Errorf("failed to store active session pointer: %w", err))
	}

	s.logger.Info("session created", "session_id", sessionID, "user_id", userID, "ip", device.IP)
	return session, nil
}

// ValidateAccessToken checks the blacklist, the token itself, its mapping
// and finally the session. A valid call stamps lastAccessAt without
// extending the session's lifetime.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) Validation {
	revoked, err := s.isBlacklisted(ctx, token)
	if err != nil {
		return Validation{Err: domain.UpstreamError(err)}
	}
	if revoked {
		return invalid(ReasonRevoked)
	}

	claims, err := s.tokens.Parse(token, auth.TokenTypeAccess)
	if err != nil {
		return invalid(ReasonInvalid)
	}

	sessionID, err := s.store.Get(ctx, accessTokenKeyPrefix+token)
	if repository.IsNotFound(err) {
		return invalid(ReasonInvalid)
	}
	if err != nil {
		return Validation{Err: domain.UpstreamError(fmt.Errorf("failed to resolve access token: %w", err))}
	}
	if sessionID != claims.SessionID {
		return invalid(ReasonInvalid)
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return Validation{Err: domain.UpstreamError(err)}
	}
	if session == nil || !session.IsActive {
		return invalid(ReasonInactive)
	}

	now := s.clock()
	remaining := session.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return invalid(ReasonInactive)
	}
	session.LastAccessAt = now
	if err := s.saveSession(ctx, session, remaining); err != nil {
		s.logger.Warn("failed to record session activity", "session_id", sessionID, "error", err)
	}

	return Validation{Valid: true, Session: session}
}

// RefreshAccessToken mints a new access token for the session behind
// refreshToken. The previous access token is left to expire on its own.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", domain.AuthError("refresh token invalid or expired")
	}

	sessionID, err := s.store.Get(ctx, refreshTokenKeyPrefix+refreshToken)
	if repository.IsNotFound(err) {
		return "", domain.AuthError("refresh token invalid or expired")
	}
	if err != nil {
		return "", domain.UpstreamError(fmt.Errorf("failed to resolve refresh token: %w", err))
	}
	if sessionID != claims.SessionID {
		return "", domain.AuthError("refresh token invalid or expired")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", domain.UpstreamError(err)
	}
	if session == nil || !session.IsActive || session.RefreshToken != refreshToken {
		return "", domain.AuthError(ReasonInactive)
	}

	now := s.clock()
	remaining := session.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return "", domain.AuthError(ReasonInactive)
	}

	accessToken, _, err := s.tokens.Issue(auth.TokenTypeAccess, session.UserID, sessionID)
	if err != nil {
		return "", domain.UpstreamError(err)
	}

	session.AccessToken = accessToken
	session.LastAccessAt = now
	if err := s.saveSession(ctx, session, remaining); err != nil {
		return "", domain.UpstreamError(err)
	}
	if err := s.store.Set(ctx, accessTokenKeyPrefix+accessToken, sessionID, s.cfg.AccessTokenTTL); err != nil {
		return "", domain.UpstreamError(fmt.Errorf("failed to store access token mapping: %w", err))
	}

	s.logger.Debug("access token refreshed", "session_id", sessionID)
	return accessToken, nil
}

// Logout revokes accessToken and deactivates its session. An unknown token
// is not an error.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	sessionID, err := s.store.Get(ctx, accessTokenKeyPrefix+accessToken)
	if repository.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return domain.UpstreamError(fmt.Errorf("failed to resolve access token: %w", err))
	}

	if err := s.blacklist(ctx, accessToken); err != nil {
		return domain.UpstreamError(err)
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return domain.UpstreamError(err)
	}
	if session == nil {
		return nil
	}

	if err := s.deactivate(ctx, session); err != nil {
		return domain.UpstreamError(err)
	}

	pointer, err := s.store.Get(ctx, activeSessionKeyPrefix+session.UserID)
	if err != nil && !repository.IsNotFound(err) {
		return domain.UpstreamError(fmt.Errorf("failed to read active session pointer: %w", err))
	}
	if pointer == sessionID {
		if err := s.store.Del(ctx, activeSessionKeyPrefix+session.UserID); err != nil {
			return domain.UpstreamError(fmt.Errorf("failed to clear active session pointer: %w", err))
		}
	}

	s.logger.Info("session logged out", "session_id", sessionID, "user_id", session.UserID)
	return nil
}

// ActiveSession returns the user's current session, or nil when there is none.
func (s *AuthService) ActiveSession(ctx context.Context, userID string) (*domain.Session, error) {
	sessionID, err := s.store.Get(ctx, activeSessionKeyPrefix+userID)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.UpstreamError(fmt.Errorf("failed to read active session pointer: %w", err))
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, domain.UpstreamError(err)
	}
	if session == nil || !session.IsActive {
		return nil, nil
	}
	return session, nil
}

// RevokeUserSessions evicts the user's active session and drops the pointer.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := s.evict(ctx, userID); err != nil {
		return domain.UpstreamError(err)
	}
	if err := s.store.Del(ctx, activeSessionKeyPrefix+userID); err != nil {
		return domain.UpstreamError(fmt.Errorf("failed to clear active session pointer: %w", err))
	}
	return nil
}

// evict revokes whatever session the active pointer names. The old access
// token is blacklisted before the session is touched.
func (s *AuthService) evict(ctx context.Context, userID string) error {
	sessionID, err := s.store.Get(ctx, activeSessionKeyPrefix+userID)
	if repository.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read active session pointer: %w", err)
	}

	old, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if old == nil || !old.IsActive {
		return nil
	}

	if err := s.blacklist(ctx, old.AccessToken); err != nil {
		return err
	}
	if err := s.deactivate(ctx, old); err != nil {
		return err
	}

	s.logger.Info("session evicted", "session_id", old.SessionID, "user_id", userID)
	return nil
}

// deactivate marks session inactive for a short grace window and drops its
// refresh mapping so the refresh token cannot mint new access tokens.
func (s *AuthService) deactivate(ctx context.Context, session *domain.Session) error {
	session.IsActive = false
	if err := s.saveSession(ctx, session, s.cfg.EvictionGraceTTL); err != nil {
		return err
	}
	if session.RefreshToken != "" {
		if err := s.store.Del(ctx, refreshTokenKeyPrefix+session.RefreshToken); err != nil {
			return fmt.Errorf("failed to delete refresh token mapping: %w", err)
		}
	}
	return nil
}

func (s *AuthService) blacklist(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	ttl := s.cfg.AccessTokenTTL
	if claims, err := s.tokens.Parse(token, auth.TokenTypeAccess); err == nil {
		if remaining := s.tokens.Remaining(claims); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.store.Set(ctx, blacklistKeyPrefix+token, blacklistValue, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *AuthService) isBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := s.store.Get(ctx, blacklistKeyPrefix+token)
	if repository.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

// loadSession returns nil for a missing or unreadable record.
func (s *AuthService) loadSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := s.store.Get(ctx, sessionKeyPrefix+sessionID)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		s.logger.Warn("discarding unreadable session record", "session_id", sessionID, "error", err)
		return nil, nil
	}
	return &session, nil
}

func (s *AuthService) saveSession(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, sessionKeyPrefix+session.SessionID, string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
