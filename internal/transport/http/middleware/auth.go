package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/simpage/backend/internal/domain"
	"github.com/iamasit07/simpage/backend/internal/service/session"
	"github.com/iamasit07/simpage/backend/pkg/httputil"
)

const (
	authResultKey = "auth_result"

	// LoginRequiredMessage is returned for a missing or malformed
	// Authorization header, whichever it was.
	LoginRequiredMessage = "please log in first"
)

// TokenValidator is satisfied by *session.AuthService.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) session.Validation
}

// AuthResult is what the gate hands to protected handlers.
type AuthResult struct {
	Session *domain.Session
	Token   string
}

// AuthMiddleware admits requests carrying a valid bearer access token.
func AuthMiddleware(validator TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, ok := httputil.BearerToken(c.Request)
		if !ok {
			deny(c, http.StatusUnauthorized, LoginRequiredMessage)
			return
		}

		result := validator.ValidateAccessToken(c.Request.Context(), token)
		if result.Err != nil {
			logger.Error("token validation failed", "path", c.Request.URL.Path, "error", result.Err)
			deny(c, http.StatusInternalServerError, "service temporarily unavailable")
			return
		}
		if !result.Valid {
			deny(c, http.StatusUnauthorized, result.Reason)
			return
		}

		c.Set(authResultKey, &AuthResult{Session: result.Session, Token: token})
		c.Next()
	}
}

// GetAuthResult returns the gate's result, or nil outside a gated route.
func GetAuthResult(c *gin.Context) *AuthResult {
	if value, ok := c.Get(authResultKey); ok {
		if result, ok := value.(*AuthResult); ok {
			return result
		}
	}
	return nil
}

func deny(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
