package option

import (
	"github.com/smallpress/folio/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption customizes a gorm statement built by the generic store.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WithOrderBy appends an ORDER BY clause.
func WithOrderBy(expr string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	})
}

// WithLimit caps the result set.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	})
}

// WithOffset skips rows for offset pagination.
func WithOffset(offset int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset)
	})
}

// ApplyPagination caps a list query at the page size plus one row so the
// caller can detect whether more rows remain.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 25
		}
		return db.Limit(size + 1)
	})
}
