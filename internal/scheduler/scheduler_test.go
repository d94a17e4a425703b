package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/pubzy/giveaways/internal/sheets/memory"
	"github.com/pubzy/giveaways/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func waitForStatus(t *testing.T, s *Scheduler, id string, status JobStatus) JobInfo {
	t.Helper()
	var info JobInfo
	require.Eventually(t, func() bool {
		for _, j := range s.Jobs() {
			if j.ID == id && j.Status == status {
				info = j
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return info
}

func TestScheduler_RunJobNow(t *testing.T) {
	s := newScheduler(t)
	var runs atomic.Int32

	require.NoError(t, s.AddJob(Job{
		ID:         "count",
		Name:       "Count",
		Schedule:   "every hour",
		Definition: gocron.DurationJob(time.Hour),
		Func: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))
	s.Start()

	require.NoError(t, s.RunJobNow("count"))
	info := waitForStatus(t, s, "count", JobStatusCompleted)
	assert.Equal(t, 1, info.RunCount)
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, info.NextRun.IsZero())

	assert.Error(t, s.RunJobNow("missing"))
}

func TestScheduler_RecordsFailures(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddJob(Job{
		ID:         "broken",
		Definition: gocron.DurationJob(time.Hour),
		RunOnStart: true,
		Func: func(context.Context) error {
			return errors.New("backend unreachable")
		},
	}))
	s.Start()

	info := waitForStatus(t, s, "broken", JobStatusFailed)
	assert.Equal(t, 1, info.ErrorCount)
	assert.Equal(t, "backend unreachable", info.LastError)
}

func TestScheduler_DuplicateJob(t *testing.T) {
	s := newScheduler(t)
	j := Job{ID: "dup", Definition: gocron.DurationJob(time.Hour), Func: func(context.Context) error { return nil }}

	require.NoError(t, s.AddJob(j))
	assert.Error(t, s.AddJob(j))
}

func TestCacheSweepJob(t *testing.T) {
	store := cache.New(&config.CacheConfig{Type: config.CacheTypeMemory})
	lookups := cache.NewTTLCache[string](store, "lookup-", time.Millisecond)
	lookups.Set(context.Background(), "a", "1")
	time.Sleep(5 * time.Millisecond)

	j := CacheSweepJob(store, time.Minute)
	assert.Equal(t, "cache-sweep", j.ID)
	require.NoError(t, j.Func(context.Background()))
	assert.Equal(t, 0, store.Len())
}

func TestCommunityStatsJob(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	st := storage.New(sheets.New(backend, nil))
	require.NoError(t, st.Initialize(ctx))

	j := CommunityStatsJob(st)
	require.NoError(t, j.Func(ctx))

	backend.FailOn(memory.OpValues, errors.New("quota exceeded"))
	assert.Error(t, j.Func(ctx))
}
