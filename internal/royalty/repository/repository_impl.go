package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/royalty/domain"
	"github.com/smallpress/folio/pkg/db/option"
	"github.com/smallpress/folio/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[domain.ShareRecord] {
	return repository.ProvideStore[domain.ShareRecord](db)
}

func (r *repo) RecordsForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]domain.ShareRecord, error) {
	rows, err := store(db).Find(ctx, &domain.ShareRecord{TitleID: titleID},
		option.WithOrderBy("platform_name asc, id asc"))
	if err != nil {
		return nil, err
	}
	records := make([]domain.ShareRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row)
	}
	return records, nil
}

// ReplaceForTitle deletes and reinserts the title's full record set so the
// stored state always matches one cascade output exactly.
func (r *repo) ReplaceForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID, records []*domain.ShareRecord) error {
	s := store(db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := s.WithTrx(tx)
		if err := txStore.Delete(ctx, &domain.ShareRecord{TitleID: titleID}); err != nil {
			return err
		}
		return txStore.BatchCreate(ctx, records)
	})
}
