package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/platform/domain"
	"github.com/smallpress/folio/pkg/db/option"
	"github.com/smallpress/folio/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[domain.Platform] {
	return repository.ProvideStore[domain.Platform](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, platform *domain.Platform) error {
	return store(db).Create(ctx, platform)
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Platform, error) {
	return store(db).FindOne(ctx, &domain.Platform{Name: name})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Platform, error) {
	return store(db).FindOne(ctx, &domain.Platform{ID: id})
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Platform, error) {
	return store(db).Find(ctx, &domain.Platform{}, option.WithOrderBy("name asc"))
}
