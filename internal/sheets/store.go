package sheets

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/cache"
)

// Lookup is the cached result of a FindOne call, including misses.
type Lookup struct {
	Record Record `json:"record"`
	Found  bool   `json:"found"`
}

// Store translates between tables of a Backend and records.
// There are no transactions: a scan followed by a write can race with other writers.
type Store struct {
	backend Backend
	lookups *cache.TTLCache[Lookup]
}

// New creates a store on top of backend. lookups may be nil to disable FindOne caching.
func New(backend Backend, lookups *cache.TTLCache[Lookup]) *Store {
	return &Store{
		backend: backend,
		lookups: lookups,
	}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// FindOne returns the first record of table matching q.
// Results, misses included, are served from the lookup cache while fresh. Writes don't invalidate it.
func (s *Store) FindOne(ctx context.Context, table string, q Query) (Record, bool, error) {
	key := cacheKey(table, q)
	if s.lookups != nil {
		if hit, ok := s.lookups.Get(ctx, key); ok {
			return hit.Record, hit.Found, nil
		}
	}

	records, err := s.fetch(ctx, table)
	if err != nil {
		return nil, false, err
	}

	var result Lookup
	for _, rec := range records {
		if q.Matches(rec) {
			result = Lookup{Record: rec, Found: true}
			break
		}
	}

	if s.lookups != nil {
		s.lookups.Set(ctx, key, result)
	}
	return result.Record, result.Found, nil
}

// FindAll returns all records of table, filtered by q when it is not empty. Never cached.
func (s *Store) FindAll(ctx context.Context, table string, q Query) ([]Record, error) {
	records, err := s.fetch(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(q) == 0 {
		return records, nil
	}
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if q.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// InsertOne appends rec as the new last row of table, laid out along the current header.
// It returns rec as given, so fields that are not header columns come back to the caller but are not stored.
func (s *Store) InsertOne(ctx context.Context, table string, rec Record) (Record, error) {
	header, err := s.backend.Header(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", table, err)
	}
	if len(header) == 0 {
		log.Warn("Table has no header, appending an empty row", "table", table)
	}
	if err := s.backend.Append(ctx, table, toRow(header, rec)); err != nil {
		return nil, fmt.Errorf("failed to append to %s: %w", table, err)
	}
	return rec, nil
}

// UpdateOne overwrites the first data row of table matching q.
// Header columns present in patch take the patch value, all others keep their cell.
// It reports false without writing when nothing matches, and returns a copy of patch otherwise.
func (s *Store) UpdateOne(ctx context.Context, table string, q Query, patch Record) (Record, bool, error) {
	rows, err := s.backend.Values(ctx, table)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	header := rows[0]
	index := -1
	for i := 1; i < len(rows); i++ {
		if q.Matches(toRecord(header, rows[i])) {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, false, nil
	}

	existing := rows[index]
	updated := make([]string, len(header))
	for i, column := range header {
		if value, ok := patch[column]; ok {
			updated[i] = value
		} else if i < len(existing) {
			updated[i] = existing[i]
		}
	}

	if err := s.backend.UpdateRow(ctx, table, index+1, updated); err != nil {
		return nil, false, fmt.Errorf("failed to update row %d of %s: %w", index+1, table, err)
	}
	return patch.Clone(), true, nil
}

// Initialize creates missing tables and writes their header rows.
// Existing tables without a header get one too; existing headers are left alone.
func (s *Store) Initialize(ctx context.Context, schemas ...Schema) error {
	existing, err := s.backend.Tables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	for _, schema := range schemas {
		if !slices.Contains(existing, schema.Table) {
			log.Info("Creating table", "table", schema.Table)
			if err := s.backend.AddTable(ctx, schema.Table); err != nil {
				return fmt.Errorf("failed to create table %s: %w", schema.Table, err)
			}
		} else {
			header, err := s.backend.Header(ctx, schema.Table)
			if err != nil {
				return fmt.Errorf("failed to read header of %s: %w", schema.Table, err)
			}
			if len(header) > 0 {
				continue
			}
		}
		if err := s.backend.SetHeader(ctx, schema.Table, schema.Columns); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", schema.Table, err)
		}
	}
	return nil
}

func (s *Store) fetch(ctx context.Context, table string) ([]Record, error) {
	rows, err := s.backend.Values(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return toRecords(rows), nil
}
