package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pubzy/giveaways/internal/sheets"
	"gorm.io/gorm"
)

var _ sheets.Backend = (*Client)(nil) // Ensure Client implements sheets.Backend

// Client stores tables in a local sqlite database.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&Table{},
		&Row{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) tableExists(ctx context.Context, tx *gorm.DB, name string) error {
	var table Table
	if err := tx.WithContext(ctx).Where("name = ?", name).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("table %s not found", name)
		}
		return err
	}
	return nil
}
