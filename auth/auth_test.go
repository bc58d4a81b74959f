package auth

import (
	"testing"
	"time"

	apperrors "daily-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Sup3r$ecretPass!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong password", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	_, err := ComparePassword("anything", "not-an-encoded-hash")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken("user-123", []string{"user", "admin"})
	req.NoError(err)

	claims, err := issuer.ValidateToken(token)
	req.NoError(err)
	req.Equal("user-123", claims.UserID)
	req.True(claims.HasRole("admin"))
	req.False(claims.HasRole("moderator"))
}

func TestValidateToken_WrongSecret(t *testing.T) {
	req := require.New(t)
	token, err := NewIssuer("secret-a", time.Hour).GenerateToken("u", []string{"user"})
	req.NoError(err)

	_, err = NewIssuer("secret-b", time.Hour).ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("secret", -time.Minute)

	token, err := issuer.GenerateToken("u", []string{"user"})
	req.NoError(err)

	_, err = issuer.ValidateToken(token)
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Str0ng&LongPassword",
	}))

	req.Error(ValidateRegister(RegisterRequest{
		Email:    "not-an-email",
		Username: "alice",
		Password: "Str0ng&LongPassword",
	}))

	req.Error(ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "short",
	}))

	// Long enough but no complexity
	req.ErrorIs(ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "alllowercaseletters",
	}), apperrors.ErrInvalidPassword)
}
