package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/service/audit"
	"github.com/iamasit07/simpage/backend/internal/service/credential"
	"github.com/iamasit07/simpage/backend/internal/service/login"
	"github.com/iamasit07/simpage/backend/internal/service/session"
	"github.com/iamasit07/simpage/backend/internal/transport/http/middleware"
	"github.com/iamasit07/simpage/backend/pkg/httputil"
	"github.com/iamasit07/simpage/backend/pkg/useragent"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// CookieSettings controls the refresh cookie.
type CookieSettings struct {
	Secure     bool
	RefreshTTL time.Duration
}

type AuthHandler struct {
	login       *login.Service
	sessions    *session.AuthService
	credentials *credential.Service
	audit       *audit.Log
	cookie      CookieSettings
	expiresIn   int
	logger      *slog.Logger
}

func NewAuthHandler(
	loginService *login.Service,
	sessions *session.AuthService,
	credentials *credential.Service,
	auditLog *audit.Log,
	cookie CookieSettings,
	expiresIn int,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		login:       loginService,
		sessions:    sessions,
		credentials: credentials,
		audit:       auditLog,
		cookie:      cookie,
		expiresIn:   expiresIn,
		logger:      logger.With("component", "http"),
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type tokenResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	// an unreadable body counts as an empty password so it still gets audited
	_ = c.ShouldBindJSON(&req)

	r := c.Request
	ip := useragent.ExtractIPAddress(r)
	attempt := login.Attempt{
		Password:  req.Password,
		IP:        ip,
		UserAgent: r.UserAgent(),
		Device: domain.DeviceInfo{
			UserAgent:   r.UserAgent(),
			IP:          ip,
			Fingerprint: useragent.Fingerprint(r),
		},
	}

	result, err := h.login.Login(r.Context(), attempt)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("admin logged in", "ip", ip, "device", useragent.ExtractDeviceInfo(r))
	httputil.SetRefreshCookie(c.Writer, result.RefreshToken, h.cookie.RefreshTTL, h.cookie.Secure)
	c.JSON(http.StatusOK, tokenResponse{
		Success:     true,
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := httputil.GetRefreshToken(c.Request)
	if refreshToken == "" {
		h.writeError(c, domain.AuthError("refresh token missing"))
		return
	}

	accessToken, err := h.sessions.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Success:     true,
		AccessToken: accessToken,
		ExpiresIn:   h.expiresIn,
	})
}

// Logout always clears the refresh cookie, even without a usable token or
// when revocation fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	httputil.ClearRefreshCookie(c.Writer, h.cookie.Secure)

	if token, ok := httputil.BearerToken(c.Request); ok {
		if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
			h.writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Sessions(c *gin.Context) {
	auth := middleware.GetAuthResult(c)
	if auth == nil || auth.Session == nil {
		h.writeError(c, domain.AuthError(middleware.LoginRequiredMessage))
		return
	}

	active, err := h.sessions.ActiveSession(c.Request.Context(), auth.Session.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	views := []domain.SessionView{}
	if active != nil {
		views = append(views, active.View())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": views})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ValidationError("invalid request body"))
		return
	}

	if err := h.credentials.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated, use the new password next time you log in"})
}

func (h *AuthHandler) LoginLogs(c *gin.Context) {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(c, domain.ValidationError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxLogLimit)
	}

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": entries})
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// writeError maps the domain taxonomy onto status codes. Internals of
// config and upstream failures are logged, never returned.
func (h *AuthHandler) writeError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		h.logger.Error("unexpected error", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAuth:
		status = http.StatusUnauthorized
	case domain.KindRateLimit:
		status = http.StatusTooManyRequests
	case domain.KindConfig, domain.KindUpstream:
		h.logger.Error("request failed", "path", c.Request.URL.Path, "kind", de.Kind.String(), "error", err)
	}
	c.JSON(status, gin.H{"success": false, "message": de.Message})
}
