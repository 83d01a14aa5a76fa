package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertEntry(ctx context.Context, db *gorm.DB, entry *PricingEntry) error
	EntriesForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]PricingEntry, error)
	UpsertPrintingCost(ctx context.Context, db *gorm.DB, cost *PrintingCost) error
	PrintingCostFor(ctx context.Context, db *gorm.DB, titleID snowflake.ID) (*PrintingCost, error)
}
