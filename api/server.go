// Package api exposes the HTTP surface around the chat core: history and
// health for clients, registration and login, and the admin moderation
// endpoints. The WebSocket endpoint is mounted here but handled by ws.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"daily-chat/auth"
	"daily-chat/hub"
	"daily-chat/repositories"
	"daily-chat/search"
	"daily-chat/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo     *echo.Echo
	log      *slog.Logger
	chat     services.IChatService
	auths    services.IAuthService
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	settings repositories.ISettingsRepository
	registry *hub.Registry
	index    *search.Index
	issuer   auth.Issuer
}

func NewServer(
	log *slog.Logger,
	chat services.IChatService,
	auths services.IAuthService,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	settings repositories.ISettingsRepository,
	registry *hub.Registry,
	index *search.Index,
	issuer auth.Issuer,
	wsHandler http.Handler,
) *Server {
	s := &Server{
		echo:     echo.New(),
		log:      log,
		chat:     chat,
		auths:    auths,
		messages: messages,
		users:    users,
		settings: settings,
		registry: registry,
		index:    index,
		issuer:   issuer,
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	s.echo.GET("/health", s.health)
	s.echo.GET("/api/messages", s.todayMessages)
	s.echo.GET("/api/today", s.today)
	s.echo.GET("/ws", echo.WrapHandler(wsHandler))

	authGroup := s.echo.Group("/api/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	admin := s.echo.Group("/api/admin", s.requireAdmin)
	admin.GET("/stats", s.adminStats)
	admin.GET("/messages", s.adminMessages)
	admin.GET("/search", s.adminSearch)
	admin.GET("/users", s.adminUsers)
	admin.DELETE("/message/:id", s.adminDeleteMessage)
	admin.DELETE("/clear-messages", s.adminClearMessages)
	admin.POST("/topic", s.adminUpdateTopic)
	admin.POST("/user/ban", s.adminBanUser)

	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.log.Info("HTTP server listening", "addr", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying mux for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
