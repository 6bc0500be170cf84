package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/simpage/backend/internal/transport/http/middleware"
)

// NewRouter wires the auth endpoints. Every route is also reachable under
// /api for the front end.
func NewRouter(h *AuthHandler, gate middleware.TokenValidator, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger, "/ping"))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(allowedOrigins, logger))

	router.GET("/ping", Ping)

	authMW := middleware.AuthMiddleware(gate, logger)
	for _, prefix := range []string{"", "/api"} {
		group := router.Group(prefix)
		group.POST("/login", h.Login)
		group.POST("/refresh", h.Refresh)
		group.POST("/logout", h.Logout)

		admin := group.Group("/admin")
		admin.Use(authMW)
		{
			admin.GET("/sessions", h.Sessions)
			admin.POST("/password", h.ChangePassword)
			admin.GET("/login-logs", h.LoginLogs)
		}
	}

	return router
}
