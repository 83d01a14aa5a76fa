package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTitle(ctx context.Context, db *gorm.DB, title *Title) error
	FindTitleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Title, error)
	ListTitles(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Title, error)

	EnsureAuthor(ctx context.Context, db *gorm.DB, author *Author) error
	EnsurePublisher(ctx context.Context, db *gorm.DB, publisher *Publisher) (*Publisher, error)
	LinkAuthor(ctx context.Context, db *gorm.DB, link *TitleAuthor) error

	AuthorsForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]Author, error)
	PublisherByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Publisher, error)
}
