package services

import (
	"context"
	"errors"
	"strings"

	"github.com/notdulain/OAuth-Learning/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// DefaultUsers returns the built-in demo accounts.
func DefaultUsers() []*models.User {
	return []*models.User{
		{
			ID:            "user-1",
			Username:      "alice",
			Password:      "password123",
			Name:          "Alice Johnson",
			Email:         "alice@example.com",
			EmailVerified: true,
		},
		{
			ID:            "user-2",
			Username:      "bob",
			Password:      "password123",
			Name:          "Bob Singh",
			Email:         "bob@example.com",
			EmailVerified: true,
		},
	}
}

// UserService is the read-only user directory.
type UserService struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
}

func NewUserService(users ...*models.User) *UserService {
	s := &UserService{
		byID:       make(map[string]*models.User, len(users)),
		byUsername: make(map[string]*models.User, len(users)),
	}
	for _, u := range users {
		s.byID[u.ID] = u
		s.byUsername[strings.ToLower(u.Username)] = u
	}
	return s
}

// Authenticate checks a username (case-insensitive) and password.
// Unknown users and wrong passwords yield the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !verifySecret(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok || id == "" {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	user, ok := s.byUsername[strings.ToLower(username)]
	if !ok || username == "" {
		return nil, ErrUserNotFound
	}
	return user, nil
}
