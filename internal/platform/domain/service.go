package domain

import (
	"context"
	"errors"
)

// Registry is the read-only platform lookup consumed by the allocation
// engine and the division calculator.
type Registry interface {
	List(context.Context) ([]*Platform, error)
	IsEbook(ctx context.Context, name string) (bool, error)
	ClassifyByID(ctx context.Context, ids []int64) (map[int64]bool, error)
}

var (
	ErrNotFound    = errors.New("platform_not_found")
	ErrInvalidName = errors.New("invalid_platform_name")
)
