// Package google stores tables as sheets of one Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

// Backend talks to the Sheets v4 API with a service account.
type Backend struct {
	service       *sheets.Service
	spreadsheetID string
}

// New creates a backend from cfg. Inline credentials take precedence over the credentials file.
func New(ctx context.Context, cfg *config.SheetsConfig) (*Backend, error) {
	if cfg == nil || cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}

	opts := []option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsScope),
	}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		log.Warn("No service account credentials configured, falling back to application default credentials")
	}

	return newWithOptions(ctx, cfg.SpreadsheetID, opts...)
}

func newWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Backend, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Backend{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

func (b *Backend) Tables(ctx context.Context) ([]string, error) {
	spreadsheet, err := b.service.Spreadsheets.Get(b.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	names := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

func (b *Backend) AddTable(ctx context.Context, name string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			},
		},
	}
	if _, err := b.service.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return nil
}

func (b *Backend) SetHeader(ctx context.Context, table string, header []string) error {
	return b.UpdateRow(ctx, table, 1, header)
}

func (b *Backend) Header(ctx context.Context, table string) ([]string, error) {
	rows, err := b.get(ctx, quote(table)+"!A1:1")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (b *Backend) Values(ctx context.Context, table string) ([][]string, error) {
	return b.get(ctx, quote(table))
}

func (b *Backend) Append(ctx context.Context, table string, row []string) error {
	_, err := b.service.Spreadsheets.Values.Append(b.spreadsheetID, quote(table), valueRange(row)).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (b *Backend) UpdateRow(ctx context.Context, table string, rowNumber int, row []string) error {
	rng := fmt.Sprintf("%s!A%d", quote(table), rowNumber)
	_, err := b.service.Spreadsheets.Values.Update(b.spreadsheetID, rng, valueRange(row)).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", rng, err)
	}
	return nil
}

func (b *Backend) get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := b.service.Spreadsheets.Values.Get(b.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get range %s: %w", rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, cells := range resp.Values {
		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = cast.ToString(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

func valueRange(row []string) *sheets.ValueRange {
	cells := make([]any, len(row))
	for i, cell := range row {
		cells[i] = cell
	}
	return &sheets.ValueRange{Values: [][]any{cells}}
}

// quote wraps a sheet title for A1 notation.
func quote(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}
