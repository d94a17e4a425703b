package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/samber/lo"
)

// NewUser holds the fields supplied at signup. Password must already be hashed.
type NewUser struct {
	Username string
	Email    string
	Password string
}

// GetUser returns the user with the given id. The lookup is served from the cache while fresh.
func (s *Storage) GetUser(ctx context.Context, id string) (*User, error) {
	user, found, err := s.users.FindOne(ctx, sheets.Query{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUserByUsername returns the first user whose username matches, ignoring case.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	users, err := s.users.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	user, found := lo.Find(users, func(u User) bool {
		return strings.EqualFold(u.Username, username)
	})
	if !found {
		return nil, ErrNotFound
	}
	return &user, nil
}

// CheckUsernameAvailable returns ErrUsernameTaken when username is registered, ignoring case.
func (s *Storage) CheckUsernameAvailable(ctx context.Context, username string) error {
	_, err := s.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

// CreateUser appends a new user. Uniqueness is not checked here, see CheckUsernameAvailable.
// The configured admin username, matched exactly, is granted admin rights.
func (s *Storage) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	user := User{
		ID:        newID(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		IsAdmin:   in.Username == s.adminUsername,
		CreatedAt: s.timestamp(),
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		log.Error("failed to create user", "username", in.Username, "error", err)
		return nil, err
	}
	if user.IsAdmin {
		log.Info("Created admin user", "username", user.Username)
	}
	return &user, nil
}

// GetUserCount returns the number of registered users.
func (s *Storage) GetUserCount(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}
