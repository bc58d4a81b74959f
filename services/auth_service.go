package services

import (
	"fmt"

	"daily-chat/auth"
	apperrors "daily-chat/errors"
	"daily-chat/repositories"
)

type IAuthService interface {
	Register(email, username, password string) (repositories.User, error)
	Login(email, password string) (Token, error)
}

type Token string

type AuthService struct {
	users  repositories.IUserRepository
	issuer auth.Issuer
}

func NewAuthService(users repositories.IUserRepository, issuer auth.Issuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

func (s *AuthService) Register(email, username, password string) (repositories.User, error) {
	// 1. Validate business rules before any expensive cryptographic work.
	valReq := auth.RegisterRequest{Email: email, Username: username, Password: password}
	if err := auth.ValidateRegister(valReq); err != nil {
		return repositories.User{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
	}

	// 2. Hash in the service layer so the repository never sees plaintext.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return repositories.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist; propagates ErrUserAlreadyExists / ErrUsernameTaken.
	return s.users.CreateUser(email, username, hash)
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", apperrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", apperrors.ErrInvalidCredentials
	}

	// A banned account keeps its credentials but may not log in.
	if !user.IsActive {
		return "", apperrors.ErrInvalidCredentials
	}

	roles := []string{"user"}
	if user.IsAdmin {
		roles = append(roles, "admin")
	}
	token, err := s.issuer.GenerateToken(user.ID, roles)
	if err != nil {
		return "", apperrors.ErrTokenGeneration
	}
	return Token(token), nil
}
