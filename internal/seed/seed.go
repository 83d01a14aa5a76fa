// Package seed bootstraps the platform registry so a fresh install is
// usable without manual setup. Seeding is idempotent and keyed by
// platform name.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	"gorm.io/gorm"
)

type defaultPlatform struct {
	Name    string
	IsEbook bool
}

var defaultPlatforms = []defaultPlatform{
	{Name: "Amazon", IsEbook: false},
	{Name: "Flipkart", IsEbook: false},
	{Name: "Bookstore", IsEbook: false},
	{Name: "Kindle", IsEbook: true},
	{Name: "Google Play Books", IsEbook: true},
}

// EnsureDefaultPlatforms inserts the stock sales channels when they are
// missing. Existing rows are left untouched, including their ebook flag.
func EnsureDefaultPlatforms(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dp := range defaultPlatforms {
			if err := ensurePlatformTx(ctx, tx, node, dp); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensurePlatformTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, dp defaultPlatform) error {
	var existing platformdomain.Platform
	err := tx.WithContext(ctx).
		Where("name = ?", dp.Name).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	row := platformdomain.Platform{
		ID:        node.Generate(),
		Name:      dp.Name,
		IsEbook:   dp.IsEbook,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&row).Error
}
