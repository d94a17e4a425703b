package storage

import (
	"context"

	"github.com/charmbracelet/log"
)

// NewLeaderboardEntry holds the fields of a recorded win.
type NewLeaderboardEntry struct {
	Username string
	Giveaway string
	Prize    string
}

// GetLeaderboard returns all wins, newest Date first. Rows whose Date cannot be parsed come last.
func (s *Storage) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	entries, err := s.leaderboard.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(entries, func(e LeaderboardEntry) string { return e.Date })
	return entries, nil
}

// AddLeaderboardEntry appends a win dated now.
func (s *Storage) AddLeaderboardEntry(ctx context.Context, in NewLeaderboardEntry) (*LeaderboardEntry, error) {
	entry := LeaderboardEntry{
		ID:       newID(),
		Username: in.Username,
		Giveaway: in.Giveaway,
		Prize:    in.Prize,
		Date:     s.timestamp(),
	}
	if _, err := s.leaderboard.Insert(ctx, entry); err != nil {
		log.Error("failed to add leaderboard entry", "username", in.Username, "error", err)
		return nil, err
	}
	return &entry, nil
}
