package sheets

import (
	"context"

	"github.com/charmbracelet/log"
)

// Schema is the declared layout of a table.
type Schema struct {
	Table   string
	Columns []string
}

// Codec converts between a typed row and its record for one schema.
type Codec[T any] struct {
	Schema Schema
	Encode func(T) Record
	Decode func(Record) (T, error)
}

// record encodes v and keeps only the declared columns.
func (c Codec[T]) record(v T) Record {
	encoded := c.Encode(v)
	rec := make(Record, len(c.Schema.Columns))
	for _, column := range c.Schema.Columns {
		if value, ok := encoded[column]; ok {
			rec[column] = value
		}
	}
	return rec
}

// Table is a typed view of one table of a Store.
type Table[T any] struct {
	store *Store
	codec Codec[T]
}

// NewTable binds codec to store.
func NewTable[T any](store *Store, codec Codec[T]) *Table[T] {
	return &Table[T]{
		store: store,
		codec: codec,
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.codec.Schema.Table
}

// Schema returns the declared layout.
func (t *Table[T]) Schema() Schema {
	return t.codec.Schema
}

// FindOne returns the first row matching q through the lookup cache.
func (t *Table[T]) FindOne(ctx context.Context, q Query) (T, bool, error) {
	rec, found, err := t.store.FindOne(ctx, t.Name(), q)
	if err != nil || !found {
		return *new(T), false, err
	}
	v, err := t.codec.Decode(rec)
	if err != nil {
		return *new(T), false, err
	}
	return v, true, nil
}

// FindAll returns all rows matching q. Rows that fail to decode are logged and skipped.
func (t *Table[T]) FindAll(ctx context.Context, q Query) ([]T, error) {
	records, err := t.store.FindAll(ctx, t.Name(), q)
	if err != nil {
		return nil, err
	}
	values := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := t.codec.Decode(rec)
		if err != nil {
			log.Warn("Skipping malformed row", "table", t.Name(), "id", rec["id"], "error", err)
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// Count returns the number of data rows.
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	records, err := t.store.FindAll(ctx, t.Name(), nil)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Insert appends v and returns it unchanged.
func (t *Table[T]) Insert(ctx context.Context, v T) (T, error) {
	if _, err := t.store.InsertOne(ctx, t.Name(), t.codec.record(v)); err != nil {
		return *new(T), err
	}
	return v, nil
}

// Patch overwrites the declared columns present in rec on the first row matching q.
// Other columns keep their stored cells. It reports false when nothing matched.
func (t *Table[T]) Patch(ctx context.Context, q Query, rec Record) (bool, error) {
	patch := make(Record, len(rec))
	for _, column := range t.codec.Schema.Columns {
		if value, ok := rec[column]; ok {
			patch[column] = value
		}
	}
	_, found, err := t.store.UpdateOne(ctx, t.Name(), q, patch)
	return found, err
}
