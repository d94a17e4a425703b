package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// NewEntry holds the fields of a giveaway counter signup.
type NewEntry struct {
	Name  string
	Email string
}

// GetEntryByEmail returns the entry submitted with email, ignoring case.
func (s *Storage) GetEntryByEmail(ctx context.Context, email string) (*Entry, error) {
	entries, err := s.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	entry, found := lo.Find(entries, func(e Entry) bool {
		return strings.EqualFold(e.Email, email)
	})
	if !found {
		return nil, ErrNotFound
	}
	return &entry, nil
}

// CreateEntry appends an entry unless the email was already used, in which case ErrDuplicateEntry is returned.
func (s *Storage) CreateEntry(ctx context.Context, in NewEntry) (*Entry, error) {
	_, err := s.GetEntryByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrDuplicateEntry
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	entry := Entry{
		ID:        newID(),
		Email:     in.Email,
		Name:      in.Name,
		EnteredAt: s.timestamp(),
	}
	if _, err := s.entries.Insert(ctx, entry); err != nil {
		log.Error("failed to create entry", "error", err)
		return nil, err
	}
	return &entry, nil
}

// GetAllEntries returns every entry in insertion order.
func (s *Storage) GetAllEntries(ctx context.Context) ([]Entry, error) {
	return s.entries.FindAll(ctx, nil)
}

// GetEntryCount returns the number of entries.
func (s *Storage) GetEntryCount(ctx context.Context) (int, error) {
	return s.entries.Count(ctx)
}
