package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/catalog/domain"
	"github.com/smallpress/folio/pkg/db/option"
	"github.com/smallpress/folio/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTitle(ctx context.Context, db *gorm.DB, title *domain.Title) error {
	return db.WithContext(ctx).Create(title).Error
}

func (r *repo) FindTitleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Title, error) {
	var title domain.Title
	err := db.WithContext(ctx).Where("id = ?", id).First(&title).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &title, nil
}

func (r *repo) ListTitles(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Title, error) {
	var titles []*domain.Title
	stmt := db.WithContext(ctx).Model(&domain.Title{})

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		// Bind a typed timestamp so every dialect compares times, not
		// the cursor's string encoding.
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)",
			createdAt, createdAt, cursorID)
	}

	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *repo) EnsureAuthor(ctx context.Context, db *gorm.DB, author *domain.Author) error {
	var existing domain.Author
	err := db.WithContext(ctx).Where("name = ?", author.Name).First(&existing).Error
	if err == nil {
		*author = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.WithContext(ctx).Create(author).Error
}

func (r *repo) EnsurePublisher(ctx context.Context, db *gorm.DB, publisher *domain.Publisher) (*domain.Publisher, error) {
	var existing domain.Publisher
	err := db.WithContext(ctx).Where("name = ?", publisher.Name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(publisher).Error; err != nil {
		return nil, err
	}
	return publisher, nil
}

func (r *repo) LinkAuthor(ctx context.Context, db *gorm.DB, link *domain.TitleAuthor) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) AuthorsForTitle(ctx context.Context, db *gorm.DB, titleID snowflake.ID) ([]domain.Author, error) {
	var authors []domain.Author
	err := db.WithContext(ctx).
		Joins("JOIN title_authors ON title_authors.author_id = authors.id").
		Where("title_authors.title_id = ?", titleID).
		Order("title_authors.position asc").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *repo) PublisherByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Publisher, error) {
	var publisher domain.Publisher
	err := db.WithContext(ctx).Where("id = ?", id).First(&publisher).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &publisher, nil
}
