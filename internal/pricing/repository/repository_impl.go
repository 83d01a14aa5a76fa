package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/pricing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertEntry(ctx context.Context, db *gorm.DB, entry *domain.PricingEntry) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title_id"}, {Name: "platform_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mrp", "sales_price", "updated_at",
		}),
	}).Create(entry).Error
}

func (r *repo) EntriesForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]domain.PricingEntry, error) {
	var entries []domain.PricingEntry
	err := db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Order("platform_name asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) UpsertPrintingCost(ctx context.Context, db *gorm.DB, cost *domain.PrintingCost) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"print_cost", "custom_print_cost", "updated_at",
		}),
	}).Create(cost).Error
}

func (r *repo) PrintingCostFor(ctx context.Context, db *gorm.DB, titleID snowflake.ID) (*domain.PrintingCost, error) {
	var cost domain.PrintingCost
	err := db.WithContext(ctx).
		Where("title_id = ?", titleID).
		First(&cost).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cost, nil
}
