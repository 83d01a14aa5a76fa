package repository

import (
	"context"

	"github.com/smallpress/folio/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is the generic persistence contract shared by domain stores.
// Query parameters are model values; gorm builds conditions from their
// non-zero fields.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	BatchCreate(ctx context.Context, resources []*T) error
	Delete(ctx context.Context, query *T) error
}
