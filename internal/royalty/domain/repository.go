package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	RecordsForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]ShareRecord, error)
	// ReplaceForTitle persists the full record set delete-then-insert so
	// repeated cascades stay idempotent at the storage layer.
	ReplaceForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID, records []*ShareRecord) error
}
