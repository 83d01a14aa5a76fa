package domain

import (
	"context"
	"errors"
)

type UpsertEntryRequest struct {
	PlatformName string
	MRP          *float64
	SalesPrice   *float64
}

type UpsertPricingRequest struct {
	TitleID         string
	Entries         []UpsertEntryRequest
	PrintCost       *float64
	CustomPrintCost *float64
}

// Source is the read side consumed by the allocation engine.
type Source interface {
	EntriesForTitle(ctx context.Context, titleID int64) ([]PricingEntry, error)
	PrintingCostFor(ctx context.Context, titleID int64) (*PrintingCost, error)
}

type Service interface {
	Source
	Upsert(context.Context, UpsertPricingRequest) error
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidPlatform = errors.New("invalid_platform")
	ErrNegativePrice   = errors.New("negative_price")
	ErrNegativeCost    = errors.New("negative_cost")
)
