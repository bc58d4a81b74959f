package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"daily-chat/domain"
	apperrors "daily-chat/errors"
	"daily-chat/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

const (
	defaultPageLimit = 100
	searchLimit      = 50
)

// requireAdmin guards the /api/admin group. It expects a Bearer token
// carrying the admin role.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}

		claims, err := s.issuer.ValidateToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		if !claims.HasRole("admin") {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
		}

		c.Set("user_id", claims.UserID)
		return next(c)
	}
}

func (s *Server) adminStats(c echo.Context) error {
	total, err := s.messages.Count()
	if err != nil {
		s.log.Error("Stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	todayCount, err := s.messages.CountByDay(s.chat.TodayKey())
	if err != nil {
		s.log.Error("Stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	userCount, err := s.users.Count()
	if err != nil {
		s.log.Error("Stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	topic, err := s.settings.GetTopic()
	if err != nil {
		s.log.Error("Stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_messages":    total,
		"messages_today":    todayCount,
		"registered_users":  userCount,
		"connected_clients": s.registry.Count(),
		"date":              s.chat.TodayKey(),
		"topic":             topic.Title,
	})
}

// adminMessage is the moderation view of a message: unlike the wire
// frame it carries the id so an admin can delete it.
type adminMessage struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	DayKey    string `json:"day_key"`
}

func (s *Server) adminMessages(c echo.Context) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", defaultPageLimit)

	msgs, err := s.messages.GetAll(skip, limit)
	if err != nil {
		s.log.Error("Message listing failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list messages"})
	}
	view := lo.Map(msgs, func(msg domain.Message, _ int) adminMessage {
		frame := msg.ToFrame()
		return adminMessage{
			ID:        msg.ID.String(),
			User:      frame.User,
			Text:      frame.Text,
			Timestamp: frame.Timestamp,
			DayKey:    msg.DayKey,
		}
	})
	return c.JSON(http.StatusOK, echo.Map{"messages": view, "skip": skip, "limit": limit})
}

func (s *Server) adminSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}
	if s.index == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "search is disabled"})
	}

	hits, err := s.index.Search(c.Request().Context(), query, s.chat.TodayKey(), searchLimit)
	if err != nil {
		s.log.Error("Search failed", "query", query, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"query": query, "results": hits})
}

func (s *Server) adminDeleteMessage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	err = s.messages.DeleteByID(id)
	if errors.Is(err, apperrors.ErrMessageNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
	}
	if err != nil {
		s.log.Error("Message deletion failed", "id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}

	if s.index != nil {
		if err := s.index.Delete(id); err != nil {
			s.log.Warn("Search index cleanup failed", "id", id, "error", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}

func (s *Server) adminClearMessages(c echo.Context) error {
	count, err := s.messages.DeleteAll()
	if err != nil {
		s.log.Error("Message purge failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purge failed"})
	}

	if s.index != nil {
		if err := s.index.DeleteAll(c.Request().Context()); err != nil {
			s.log.Warn("Search index purge failed", "error", err)
		}
	}

	s.log.Info("All messages cleared by admin", "count", count)
	return c.JSON(http.StatusOK, echo.Map{"deleted": count})
}

// adminUser omits the password hash from the listing.
type adminUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) adminUsers(c echo.Context) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", defaultPageLimit)

	users, err := s.users.GetAll(skip, limit)
	if err != nil {
		s.log.Error("User listing failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	view := lo.Map(users, func(u repositories.User, _ int) adminUser {
		return adminUser{
			ID:        u.ID,
			Email:     u.Email,
			Username:  u.Username,
			IsAdmin:   u.IsAdmin,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	})
	return c.JSON(http.StatusOK, echo.Map{"users": view, "skip": skip, "limit": limit})
}

type banRequest struct {
	UserID string `json:"user_id"`
	Ban    bool   `json:"ban"`
}

func (s *Server) adminBanUser(c echo.Context) error {
	var req banRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, err := s.users.SetActive(req.UserID, !req.Ban)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, apperrors.ErrCannotBanAdmin):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admins cannot be banned"})
	case err != nil:
		s.log.Error("Ban update failed", "user_id", req.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":        user.ID,
		"username":  user.Username,
		"is_active": user.IsActive,
	})
}

type topicRequest struct {
	Title string `json:"title"`
	Rules string `json:"rules"`
}

func (s *Server) adminUpdateTopic(c echo.Context) error {
	var req topicRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	topic := repositories.Topic{Title: req.Title, Rules: req.Rules}
	if err := s.settings.SetTopic(topic); err != nil {
		s.log.Error("Topic update failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, topic)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
