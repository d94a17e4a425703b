package storage

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes the community.
type Stats struct {
	Users           int
	Entries         int
	Giveaways       int
	ActiveGiveaways int
	GiveawayEntries int
	Winners         int
}

// GetStats counts the rows of every table concurrently.
func (s *Storage) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Entries, err = s.entries.Count(gctx)
		return err
	})
	g.Go(func() error {
		giveaways, err := s.giveaways.FindAll(gctx, nil)
		if err != nil {
			return err
		}
		stats.Giveaways = len(giveaways)
		stats.ActiveGiveaways = lo.CountBy(giveaways, func(g Giveaway) bool { return g.Status.IsActive() })
		return nil
	})
	g.Go(func() (err error) {
		stats.GiveawayEntries, err = s.giveawayEntries.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Winners, err = s.leaderboard.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
