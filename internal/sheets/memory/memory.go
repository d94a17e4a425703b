// Package memory implements an in-process table backend.
// It is used for local development and as a test double with error injection.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Operation names counted by Calls.
const (
	OpTables    = "tables"
	OpAddTable  = "add_table"
	OpSetHeader = "set_header"
	OpHeader    = "header"
	OpValues    = "values"
	OpAppend    = "append"
	OpUpdateRow = "update_row"
)

// Backend keeps all tables in memory.
type Backend struct {
	mu     sync.Mutex
	tables map[string][][]string
	calls  map[string]int
	errs   map[string]error
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		tables: make(map[string][][]string),
		calls:  make(map[string]int),
		errs:   make(map[string]error),
	}
}

// Seed replaces the rows of table, creating it when needed.
func (b *Backend) Seed(table string, rows ...[]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[table] = cloneRows(rows)
}

// Rows returns a copy of every row of table.
func (b *Backend) Rows(table string) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneRows(b.tables[table])
}

// Calls returns how often op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// FailOn makes every following call of op return err. A nil err clears it.
func (b *Backend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.errs, op)
		return
	}
	b.errs[op] = err
}

func (b *Backend) enter(op string) error {
	b.calls[op]++
	return b.errs[op]
}

func (b *Backend) Tables(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpTables); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(b.tables))
	for name := range b.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (b *Backend) AddTable(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpAddTable); err != nil {
		return err
	}
	if _, ok := b.tables[name]; ok {
		return fmt.Errorf("table %s already exists", name)
	}
	b.tables[name] = nil
	return nil
}

func (b *Backend) SetHeader(_ context.Context, table string, header []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSetHeader); err != nil {
		return err
	}
	return b.writeRow(table, 1, header)
}

func (b *Backend) Header(_ context.Context, table string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpHeader); err != nil {
		return nil, err
	}
	rows, ok := b.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return slices.Clone(rows[0]), nil
}

func (b *Backend) Values(_ context.Context, table string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpValues); err != nil {
		return nil, err
	}
	rows, ok := b.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cloneRows(rows), nil
}

func (b *Backend) Append(_ context.Context, table string, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpAppend); err != nil {
		return err
	}
	rows, ok := b.tables[table]
	if !ok {
		return fmt.Errorf("table %s not found", table)
	}
	b.tables[table] = append(rows, slices.Clone(row))
	return nil
}

func (b *Backend) UpdateRow(_ context.Context, table string, rowNumber int, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdateRow); err != nil {
		return err
	}
	return b.writeRow(table, rowNumber, row)
}

// writeRow must be called with mu held.
func (b *Backend) writeRow(table string, rowNumber int, row []string) error {
	rows, ok := b.tables[table]
	if !ok {
		return fmt.Errorf("table %s not found", table)
	}
	if rowNumber < 1 {
		return fmt.Errorf("invalid row number %d", rowNumber)
	}
	for len(rows) < rowNumber {
		rows = append(rows, nil)
	}
	rows[rowNumber-1] = slices.Clone(row)
	b.tables[table] = rows
	return nil
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
