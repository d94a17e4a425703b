package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Table is a named table.
type Table struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null"`
}

// Row is one row of a table. Position 1 holds the header.
type Row struct {
	ID       uint           `gorm:"primarykey"`
	Sheet    string         `gorm:"uniqueIndex:idx_sheet_position;not null"`
	Position int            `gorm:"uniqueIndex:idx_sheet_position;not null"`
	Cells    datatypes.JSON `gorm:"not null"`
}

func (c *Client) Tables(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.db.WithContext(ctx).Model(&Table{}).Order("id").Pluck("name", &names).Error; err != nil {
		log.Error("failed to list tables", "error", err)
		return nil, err
	}
	return names, nil
}

func (c *Client) AddTable(ctx context.Context, name string) error {
	if err := c.db.WithContext(ctx).Create(&Table{Name: name}).Error; err != nil {
		log.Error("failed to create table", "table", name, "error", err)
		return err
	}
	return nil
}

func (c *Client) SetHeader(ctx context.Context, table string, header []string) error {
	return c.UpdateRow(ctx, table, 1, header)
}

func (c *Client) Header(ctx context.Context, table string) ([]string, error) {
	if err := c.tableExists(ctx, c.db, table); err != nil {
		return nil, err
	}
	var row Row
	err := c.db.WithContext(ctx).Where("sheet = ? AND position = ?", table, 1).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCells(row.Cells)
}

func (c *Client) Values(ctx context.Context, table string) ([][]string, error) {
	if err := c.tableExists(ctx, c.db, table); err != nil {
		return nil, err
	}
	var rows []Row
	if err := c.db.WithContext(ctx).Where("sheet = ?", table).Order("position").Find(&rows).Error; err != nil {
		log.Error("failed to read table", "table", table, "error", err)
		return nil, err
	}

	values := make([][]string, 0, len(rows))
	for _, row := range rows {
		// gaps left by writes past the end read as empty rows
		for len(values) < row.Position-1 {
			values = append(values, nil)
		}
		cells, err := decodeCells(row.Cells)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", row.Position, table, err)
		}
		values = append(values, cells)
	}
	return values, nil
}

func (c *Client) Append(ctx context.Context, table string, cells []string) error {
	data, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := c.tableExists(ctx, tx, table); err != nil {
			return err
		}
		var last int
		if err := tx.Model(&Row{}).Where("sheet = ?", table).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
			return err
		}
		return tx.Create(&Row{Sheet: table, Position: last + 1, Cells: datatypes.JSON(data)}).Error
	})
}

func (c *Client) UpdateRow(ctx context.Context, table string, rowNumber int, cells []string) error {
	if rowNumber < 1 {
		return fmt.Errorf("invalid row number %d", rowNumber)
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := c.tableExists(ctx, tx, table); err != nil {
			return err
		}
		res := tx.Model(&Row{}).Where("sheet = ? AND position = ?", table, rowNumber).Update("cells", datatypes.JSON(data))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&Row{Sheet: table, Position: rowNumber, Cells: datatypes.JSON(data)}).Error
	})
}

func decodeCells(data datatypes.JSON) ([]string, error) {
	var cells []string
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

func (Table) TableName() string { return "sheet_tables" }

func (Row) TableName() string { return "sheet_rows" }
