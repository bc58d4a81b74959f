package services

import (
	"testing"
	"time"

	"daily-chat/auth"
	apperrors "daily-chat/errors"
	"daily-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Str0ng&LongPassword"

func newTestAuthService(t *testing.T) (*AuthService, repositories.UserRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	return NewAuthService(users, issuer), users
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestAuthService(t)

	user, err := svc.Register("alice@example.com", "alice", goodPassword)
	req.NoError(err)
	req.NotEmpty(user.ID)
	req.NotEqual(goodPassword, user.PasswordHash)

	token, err := svc.Login("alice@example.com", goodPassword)
	req.NoError(err)
	req.NotEmpty(token)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.Register("alice@example.com", "alice", "weakpassword")
	require.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestAuthService(t)

	_, err := svc.Register("alice@example.com", "alice", goodPassword)
	req.NoError(err)

	_, err = svc.Login("alice@example.com", "Wr0ng&Password!!")
	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.Login("ghost@example.com", goodPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_BannedUserCannotLogin(t *testing.T) {
	req := require.New(t)
	svc, users := newTestAuthService(t)

	user, err := svc.Register("bob@example.com", "bob", goodPassword)
	req.NoError(err)

	_, err = users.SetActive(user.ID, false)
	req.NoError(err)

	_, err = svc.Login("bob@example.com", goodPassword)
	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}
