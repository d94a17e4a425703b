package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/storage"
)

const statsInterval = 15 * time.Minute

// CacheSweepJob removes expired lookups from the in-memory cache.
func CacheSweepJob(store *cache.Store, interval time.Duration) Job {
	return Job{
		ID:          "cache-sweep",
		Name:        "Cache sweep",
		Description: "Remove expired lookups from the in-memory cache",
		Schedule:    "every " + interval.String(),
		Definition:  gocron.DurationJob(interval),
		Singleton:   true,
		Func: func(_ context.Context) error {
			before := store.Len()
			store.DeleteExpired()
			log.Debug("Swept lookup cache", "before", before, "after", store.Len())
			return nil
		},
	}
}

// CommunityStatsJob logs the size of the community.
func CommunityStatsJob(st *storage.Storage) Job {
	return Job{
		ID:          "community-stats",
		Name:        "Community stats",
		Description: "Log user, entry and giveaway counts",
		Schedule:    "every " + statsInterval.String(),
		Definition:  gocron.DurationJob(statsInterval),
		Singleton:   true,
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			stats, err := st.GetStats(ctx)
			if err != nil {
				return err
			}
			log.Info("Community stats",
				"users", stats.Users,
				"entries", stats.Entries,
				"giveaways", stats.Giveaways,
				"active_giveaways", stats.ActiveGiveaways,
				"giveaway_entries", stats.GiveawayEntries,
				"winners", stats.Winners,
			)
			return nil
		},
	}
}
