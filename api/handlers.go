package api

import (
	"errors"
	"net/http"

	"daily-chat/domain"
	apperrors "daily-chat/errors"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type healthResponse struct {
	Status           string `json:"status"`
	MessageCount     int    `json:"message_count"`
	ConnectedClients int    `json:"connected_clients"`
	Date             string `json:"date"`
}

func (s *Server) health(c echo.Context) error {
	count, err := s.messages.CountByDay(s.chat.TodayKey())
	if err != nil {
		s.log.Error("Health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:           "healthy",
		MessageCount:     count,
		ConnectedClients: s.registry.Count(),
		Date:             s.chat.TodayKey(),
	})
}

// todayMessages returns today's history in wire-frame form, oldest first.
// It serves clients that poll over HTTP instead of holding a socket.
func (s *Server) todayMessages(c echo.Context) error {
	history, err := s.chat.History()
	if err != nil {
		s.log.Error("History fetch failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load messages"})
	}
	frames := lo.Map(history, func(msg domain.Message, _ int) domain.OutboundFrame {
		return msg.ToFrame()
	})
	return c.JSON(http.StatusOK, echo.Map{"messages": frames})
}

func (s *Server) today(c echo.Context) error {
	topic, err := s.settings.GetTopic()
	if err != nil {
		s.log.Error("Topic fetch failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load topic"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  s.chat.TodayKey(),
		"topic": topic.Title,
		"rules": topic.Rules,
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, err := s.auths.Register(req.Email, req.Username, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		})
	case errors.Is(err, apperrors.ErrUserAlreadyExists),
		errors.Is(err, apperrors.ErrUsernameTaken),
		errors.Is(err, apperrors.ErrInvalidPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		s.log.Error("Registration failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	token, err := s.auths.Login(req.Email, req.Password)
	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		s.log.Error("Login failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}
