package domain

import (
	"context"
	"errors"
)

type SetAuthorShareRequest struct {
	TitleID    string
	AuthorID   string
	Percentage float64
}

type Service interface {
	// SetAuthorShare applies an author edit and runs the full cascade:
	// propagation, publisher residual, validation, amount recompute.
	// An author not credited on the title is a no-op.
	SetAuthorShare(context.Context, SetAuthorShareRequest) (AllocationView, error)
	View(ctx context.Context, titleID string) (AllocationView, error)
	Amounts(ctx context.Context, titleID string) ([]AmountLine, error)
}

// CacheInvalidator evicts a title's cached allocation session when an input
// outside the share store (pricing, printing cost) changes.
type CacheInvalidator interface {
	InvalidateTitle(titleID int64)
}

var (
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidAuthor     = errors.New("invalid_author")
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrTitleNotFound     = errors.New("title_not_found")
)
