package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/pubzy/giveaways/internal/database"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/pubzy/giveaways/internal/sheets/google"
	"github.com/pubzy/giveaways/internal/sheets/memory"
	"github.com/pubzy/giveaways/internal/storage"
)

// stack is the storage wired from the config, plus what must be closed on exit.
type stack struct {
	cache   *cache.Store
	storage *storage.Storage
	closers []func() error
}

func (s *stack) Close() {
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			log.Error("failed to close resource", "error", err)
		}
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (sheets.Backend, func() error, error) {
	switch cfg.Backend.Type {
	case config.BackendTypeSheets:
		b, err := google.New(ctx, cfg.Sheets)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		return b, nil, nil
	case config.BackendTypeSQLite:
		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, db.Close, nil
	case config.BackendTypeMemory:
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

func openStack(ctx context.Context, cfg *config.Config) (*stack, error) {
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &stack{cache: cache.New(cfg.Cache)}
	s.closers = append(s.closers, s.cache.Close)
	if closeBackend != nil {
		s.closers = append(s.closers, closeBackend)
	}

	lookups := cache.NewTTLCache[sheets.Lookup](s.cache, "lookup-", cfg.GetCacheTTL())
	s.storage = storage.New(sheets.New(backend, lookups), storage.WithAdminUsername(cfg.AdminUsername))

	// a memory backend always starts empty
	if cfg.Backend.Type == config.BackendTypeMemory {
		if err := s.storage.Initialize(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize tables: %w", err)
		}
	}

	log.Info("Storage ready", "backend", cfg.Backend.Type, "cache", s.cache.Type(), "ttl", lookups.TTL())
	return s, nil
}
