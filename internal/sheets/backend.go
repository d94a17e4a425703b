package sheets

import "context"

// Backend is a remote tabular data source made of named tables.
// Row numbers are 1-based and row 1 holds the header.
type Backend interface {
	// Tables lists the names of all existing tables.
	Tables(ctx context.Context) ([]string, error)
	// AddTable creates an empty table.
	AddTable(ctx context.Context, name string) error
	// SetHeader writes the header row of a table.
	SetHeader(ctx context.Context, table string, header []string) error
	// Header returns the header row of a table, or nil if it has none.
	Header(ctx context.Context, table string) ([]string, error)
	// Values returns every row of a table, header included.
	Values(ctx context.Context, table string) ([][]string, error)
	// Append adds a row after the last row of a table.
	Append(ctx context.Context, table string, row []string) error
	// UpdateRow overwrites the row at rowNumber.
	UpdateRow(ctx context.Context, table string, rowNumber int, row []string) error
}
