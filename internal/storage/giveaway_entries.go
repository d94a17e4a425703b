package storage

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Fallbacks used when an entry references a row that no longer exists.
const (
	UnknownUser     = "Unknown User"
	UnknownEmail    = "Unknown Email"
	UnknownGiveaway = "Unknown Giveaway"
)

// DetailedGiveawayEntry is a giveaway entry joined with its user and giveaway.
type DetailedGiveawayEntry struct {
	GiveawayEntry
	Username      string
	Email         string
	GiveawayTitle string
}

// EnterGiveaway records that userID entered giveawayID.
// The giveaway must exist and be active, the user must not have entered it yet
// and the entry cap must not be reached.
func (s *Storage) EnterGiveaway(ctx context.Context, giveawayID, userID string) (*GiveawayEntry, error) {
	giveaway, err := s.currentGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if !giveaway.Status.IsActive() {
		return nil, ErrGiveawayInactive
	}

	existing, err := s.giveawayEntries.FindAll(ctx, sheets.Query{"giveawayId": giveawayID})
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(existing, func(e GiveawayEntry) bool { return e.UserID == userID }) {
		return nil, ErrAlreadyEntered
	}
	if giveaway.MaxEntries > 0 && len(existing) >= giveaway.MaxEntries {
		return nil, ErrGiveawayFull
	}

	entry := GiveawayEntry{
		ID:         newID(),
		GiveawayID: giveawayID,
		UserID:     userID,
		EnteredAt:  s.timestamp(),
	}
	if _, err := s.giveawayEntries.Insert(ctx, entry); err != nil {
		log.Error("failed to create giveaway entry", "giveaway", giveawayID, "user", userID, "error", err)
		return nil, err
	}
	return &entry, nil
}

// ListUserGiveawayEntries returns the giveaway entries of one user.
func (s *Storage) ListUserGiveawayEntries(ctx context.Context, userID string) ([]GiveawayEntry, error) {
	return s.giveawayEntries.FindAll(ctx, sheets.Query{"userId": userID})
}

// ListGiveawayEntriesDetailed returns every giveaway entry with the username, email and giveaway title resolved.
func (s *Storage) ListGiveawayEntriesDetailed(ctx context.Context) ([]DetailedGiveawayEntry, error) {
	var (
		entries   []GiveawayEntry
		users     []User
		giveaways []Giveaway
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.giveawayEntries.FindAll(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.FindAll(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		giveaways, err = s.giveaways.FindAll(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usersByID := lo.KeyBy(users, func(u User) string { return u.ID })
	giveawaysByID := lo.KeyBy(giveaways, func(g Giveaway) string { return g.ID })

	return lo.Map(entries, func(e GiveawayEntry, _ int) DetailedGiveawayEntry {
		detailed := DetailedGiveawayEntry{
			GiveawayEntry: e,
			Username:      UnknownUser,
			Email:         UnknownEmail,
			GiveawayTitle: UnknownGiveaway,
		}
		if u, ok := usersByID[e.UserID]; ok {
			detailed.Username = u.Username
			detailed.Email = u.Email
		}
		if g, ok := giveawaysByID[e.GiveawayID]; ok {
			detailed.GiveawayTitle = g.Title
		}
		return detailed
	}), nil
}
