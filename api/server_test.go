package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daily-chat/auth"
	"daily-chat/domain"
	apperrors "daily-chat/errors"
	"daily-chat/hub"
	"daily-chat/repositories"
	"daily-chat/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	history []domain.Message
	err     error
}

func (f *fakeChat) Post(raw []byte) (domain.Message, error) { return domain.Message{}, nil }
func (f *fakeChat) History() ([]domain.Message, error) { return f.history, f.err }
func (f *fakeChat) TodayKey() string { return "2026-08-28" }

type fakeAuth struct {
	registerUser repositories.User
	registerErr  error
	token        services.Token
	loginErr     error
}

func (f *fakeAuth) Register(email, username, password string) (repositories.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeAuth) Login(email, password string) (services.Token, error) {
	return f.token, f.loginErr
}

type fakeMessages struct {
	total     int
	today     int
	all       []domain.Message
	deleteErr error
	cleared   int
}

func (f *fakeMessages) Store(msg domain.Message) error { return nil }
func (f *fakeMessages) GetByDay(dayKey string) ([]domain.Message, error) {
	return f.all, nil
}
func (f *fakeMessages) CountByDay(dayKey string) (int, error) { return f.today, nil }
func (f *fakeMessages) Count() (int, error) { return f.total, nil }
func (f *fakeMessages) GetAll(offset, limit int) ([]domain.Message, error) {
	return f.all, nil
}
func (f *fakeMessages) DeleteByDay(dayKey string) (int, error) { return 0, nil }
func (f *fakeMessages) DeleteByID(id uuid.UUID) error { return f.deleteErr }
func (f *fakeMessages) DeleteAll() (int, error) { return f.cleared, nil }

type fakeUsers struct {
	users     []repositories.User
	setErr    error
	setResult repositories.User
}

func (f *fakeUsers) CreateUser(email, username, hash string) (repositories.User, error) {
	return repositories.User{}, nil
}
func (f *fakeUsers) GetUserByEmail(email string) (repositories.User, error) {
	return repositories.User{}, apperrors.ErrUserNotFound
}
func (f *fakeUsers) GetUserByID(id string) (repositories.User, error) {
	return repositories.User{}, apperrors.ErrUserNotFound
}
func (f *fakeUsers) SetActive(id string, active bool) (repositories.User, error) {
	return f.setResult, f.setErr
}
func (f *fakeUsers) GetAll(offset, limit int) ([]repositories.User, error) {
	return f.users, nil
}
func (f *fakeUsers) Count() (int, error) { return len(f.users), nil }

type fakeSettings struct {
	topic repositories.Topic
}

func (f *fakeSettings) GetTopic() (repositories.Topic, error) { return f.topic, nil }
func (f *fakeSettings) SetTopic(topic repositories.Topic) error {
	f.topic = topic
	return nil
}

type testDeps struct {
	chat     *fakeChat
	auth     *fakeAuth
	messages *fakeMessages
	users    *fakeUsers
	settings *fakeSettings
	issuer   auth.Issuer
}

func newTestServer(deps testDeps) *Server {
	log := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	wsStub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})
	return NewServer(
		log,
		deps.chat,
		deps.auth,
		deps.messages,
		deps.users,
		deps.settings,
		hub.NewRegistry(),
		nil,
		deps.issuer,
		wsStub,
	)
}

func defaultDeps() testDeps {
	return testDeps{
		chat:     &fakeChat{},
		auth:     &fakeAuth{},
		messages: &fakeMessages{},
		users:    &fakeUsers{},
		settings: &fakeSettings{topic: repositories.Topic{Title: "Anything goes"}},
		issuer:   auth.NewIssuer("test-secret", time.Hour),
	}
}

func doJSON(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func Test_Health_Reports_Counts(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.messages.today = 7
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodGet, "/health", "", "")

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"status":"healthy"`)
	req.Contains(rec.Body.String(), `"message_count":7`)
	req.Contains(rec.Body.String(), `"date":"2026-08-28"`)
}

func Test_Today_Messages_Returns_Frames(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	deps.chat.history = []domain.Message{
		{ID: uuid.New(), User: "alice", Text: "hello", CreatedAt: at, DayKey: "2026-08-28"},
	}
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodGet, "/api/messages", "", "")

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"user":"alice"`)
	req.Contains(rec.Body.String(), `"text":"hello"`)
	req.Contains(rec.Body.String(), `"timestamp":"2026-08-28T10:30:00Z"`)
	req.NotContains(rec.Body.String(), `"id"`)
}

func Test_Today_Returns_Topic(t *testing.T) {
	req := require.New(t)
	s := newTestServer(defaultDeps())

	rec := doJSON(t, s, http.MethodGet, "/api/today", "", "")

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"topic":"Anything goes"`)
}

func Test_Register_Created(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.auth.registerUser = repositories.User{ID: "u1", Email: "a@b.c", Username: "alice"}
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register",
		`{"email":"a@b.c","username":"alice","password":"Str0ng&LongPassword"}`, "")

	req.Equal(http.StatusCreated, rec.Code)
	req.Contains(rec.Body.String(), `"username":"alice"`)
	req.NotContains(rec.Body.String(), "password")
}

func Test_Register_Duplicate_Is_Bad_Request(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.auth.registerErr = apperrors.ErrUserAlreadyExists
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register",
		`{"email":"a@b.c","username":"alice","password":"Str0ng&LongPassword"}`, "")

	req.Equal(http.StatusBadRequest, rec.Code)
}

func Test_Login_Returns_Bearer_Token(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.auth.token = services.Token("signed.jwt.here")
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.c","password":"Str0ng&LongPassword"}`, "")

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"access_token":"signed.jwt.here"`)
	req.Contains(rec.Body.String(), `"token_type":"bearer"`)
}

func Test_Login_Invalid_Credentials(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.auth.loginErr = apperrors.ErrInvalidCredentials
	s := newTestServer(deps)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.c","password":"wrong"}`, "")

	req.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Admin_Requires_Token(t *testing.T) {
	req := require.New(t)
	s := newTestServer(defaultDeps())

	rec := doJSON(t, s, http.MethodGet, "/api/admin/stats", "", "")

	req.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Admin_Rejects_Non_Admin_Role(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	s := newTestServer(deps)

	token, err := deps.issuer.GenerateToken("u1", []string{"user"})
	req.NoError(err)

	rec := doJSON(t, s, http.MethodGet, "/api/admin/stats", "", token)
	req.Equal(http.StatusForbidden, rec.Code)
}

func Test_Admin_Stats(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.messages.total = 42
	deps.messages.today = 5
	s := newTestServer(deps)

	token, err := deps.issuer.GenerateToken("admin", []string{"user", "admin"})
	req.NoError(err)

	rec := doJSON(t, s, http.MethodGet, "/api/admin/stats", "", token)

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"total_messages":42`)
	req.Contains(rec.Body.String(), `"messages_today":5`)
}

func Test_Admin_Delete_Missing_Message_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.messages.deleteErr = apperrors.ErrMessageNotFound
	s := newTestServer(deps)

	token, err := deps.issuer.GenerateToken("admin", []string{"admin"})
	req.NoError(err)

	rec := doJSON(t, s, http.MethodDelete, "/api/admin/message/"+uuid.NewString(), "", token)
	req.Equal(http.StatusNotFound, rec.Code)
}

func Test_Admin_Cannot_Ban_Admin(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	deps.users.setErr = apperrors.ErrCannotBanAdmin
	s := newTestServer(deps)

	token, err := deps.issuer.GenerateToken("admin", []string{"admin"})
	req.NoError(err)

	rec := doJSON(t, s, http.MethodPost, "/api/admin/user/ban",
		`{"user_id":"other-admin","ban":true}`, token)
	req.Equal(http.StatusForbidden, rec.Code)
}

func Test_Admin_Update_Topic(t *testing.T) {
	req := require.New(t)
	deps := defaultDeps()
	s := newTestServer(deps)

	token, err := deps.issuer.GenerateToken("admin", []string{"admin"})
	req.NoError(err)

	rec := doJSON(t, s, http.MethodPost, "/api/admin/topic",
		`{"title":"Retro games","rules":"be kind"}`, token)

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("Retro games", deps.settings.topic.Title)
}
