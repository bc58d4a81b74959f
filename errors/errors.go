package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Inbound frame handling
	ErrMalformedPayload = fmt.Errorf("malformed payload")
	ErrEmptyMessage     = fmt.Errorf("empty message")
	ErrRateLimited      = fmt.Errorf("rate limited")

	// Connection lifecycle
	ErrServerFull       = fmt.Errorf("server full")
	ErrConnectionClosed = fmt.Errorf("connection closed")
	ErrWriteTimeout     = fmt.Errorf("write timeout")

	// Storage
	ErrMessageNotFound = fmt.Errorf("message not found")

	// Accounts
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUsernameTaken      = fmt.Errorf("username already taken")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrCannotBanAdmin     = fmt.Errorf("cannot ban admin users")
)
