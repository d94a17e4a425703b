// Package storage implements the giveaway domain on top of the table store.
//
// Uniqueness checks scan the table before appending. Two concurrent writers can both pass the
// check, so duplicate usernames or entries are possible under contention.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/pubzy/giveaways/internal/sheets"
)

// TimeFormat is the layout of every timestamp written by the store.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// DefaultAdminUsername is granted admin rights at signup unless configured otherwise.
const DefaultAdminUsername = "Pubzy"

// Storage exposes entity operations over the tables of a sheets.Store.
type Storage struct {
	store           *sheets.Store
	users           *sheets.Table[User]
	entries         *sheets.Table[Entry]
	giveaways       *sheets.Table[Giveaway]
	giveawayEntries *sheets.Table[GiveawayEntry]
	leaderboard     *sheets.Table[LeaderboardEntry]
	updates         *sheets.Table[Update]
	videos          *sheets.Table[Video]

	adminUsername string
	now           func() time.Time
}

// Option configures a Storage.
type Option func(*Storage)

// WithAdminUsername sets the username that is granted admin rights at signup.
func WithAdminUsername(username string) Option {
	return func(s *Storage) {
		if username != "" {
			s.adminUsername = username
		}
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// New creates a Storage on top of store.
func New(store *sheets.Store, opts ...Option) *Storage {
	s := &Storage{
		store:           store,
		users:           sheets.NewTable(store, userCodec),
		entries:         sheets.NewTable(store, entryCodec),
		giveaways:       sheets.NewTable(store, giveawayCodec),
		giveawayEntries: sheets.NewTable(store, giveawayEntryCodec),
		leaderboard:     sheets.NewTable(store, leaderboardCodec),
		updates:         sheets.NewTable(store, updateCodec),
		videos:          sheets.NewTable(store, videoCodec),
		adminUsername:   DefaultAdminUsername,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates missing tables with their header rows.
func (s *Storage) Initialize(ctx context.Context) error {
	return s.store.Initialize(ctx, Schemas()...)
}

// Ping checks that the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.store.Backend().Tables(ctx)
	return err
}

func (s *Storage) timestamp() string {
	return s.now().UTC().Format(TimeFormat)
}

// newID returns 16 random hex characters.
func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b) // crypto/rand.Read never returns an error
	return hex.EncodeToString(b)
}

// dateLayouts are tried in order when parsing free text dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	TimeFormat,
	time.DateTime,
	time.DateOnly,
	"2006-01-02T15:04",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// parseDate parses a date cell. The second return value is false when no layout matches.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByDateDesc sorts items newest first. Unparseable dates go last, keeping their relative order.
func sortByDateDesc[T any](items []T, date func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		ta, okA := parseDate(date(a))
		tb, okB := parseDate(date(b))
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}
