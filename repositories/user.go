//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "daily-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, username, passwordHash string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	SetActive(id string, active bool) (User, error)
	GetAll(offset, limit int) ([]User, error)
	Count() (int, error)
}

// User is the repository-level representation of an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

// Key schema:
//
//	user:{email}          -> JSON user record
//	userid:{id}           -> email (secondary index for lookups by id)
//	username:{username}   -> email (uniqueness marker)
func emailKey(email string) []byte   { return []byte("user:" + email) }
func idKey(id string) []byte         { return []byte("userid:" + id) }
func usernameKey(name string) []byte { return []byte("username:" + name) }

// CreateUser persists a new account. Email and username must both be
// unique; the checks and the inserts share one transaction.
func (u UserRepository) CreateUser(email, username, passwordHash string) (User, error) {
	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return apperrors.ErrUsernameTaken
		}
		if err := txn.Set(emailKey(email), data); err != nil {
			return err
		}
		if err := txn.Set(idKey(user.ID), []byte(email)); err != nil {
			return err
		}
		return txn.Set(usernameKey(username), []byte(email))
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var email string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u.GetUserByEmail(email)
}

// SetActive flips the ban flag. A banned account keeps existing but can no
// longer log in. Admin accounts cannot be banned.
func (u UserRepository) SetActive(id string, active bool) (User, error) {
	user, err := u.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if user.IsAdmin && !active {
		return User{}, apperrors.ErrCannotBanAdmin
	}

	user.IsActive = active
	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(emailKey(user.Email), data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetAll lists accounts for the admin surface, insertion order by email key.
func (u UserRepository) GetAll(offset, limit int) ([]User, error) {
	var users []User
	prefix := []byte("user:")
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(users) >= limit {
				return nil
			}
			err := it.Item().Value(func(val []byte) error {
				var user User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}

func (u UserRepository) Count() (int, error) {
	count := 0
	prefix := []byte("user:")
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// EnsureAdmin creates the bootstrap admin account when it does not exist
// yet. Called once at startup with credentials from the environment.
func (u UserRepository) EnsureAdmin(email, username, passwordHash string) (User, error) {
	user, err := u.GetUserByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return User{}, err
	}

	user, err = u.CreateUser(email, username, passwordHash)
	if err != nil {
		return User{}, err
	}

	user.IsAdmin = true
	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(emailKey(email), data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
