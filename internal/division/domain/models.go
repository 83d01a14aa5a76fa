// Package domain contains the standalone royalty calculator shapes. The
// calculator is decoupled from the author/publisher model: it splits a
// price over free-form percentage buckets.
package domain

import "context"

type Item struct {
	PlatformID int64    `json:"platformId"`
	Price      float64  `json:"price"`
	Division   []string `json:"division"`
}

type Request struct {
	PrintingPrice float64 `json:"printingPrice"`
	Items         []Item  `json:"items"`
}

// ItemResult maps each percentage token to its monetary amount. Duplicate
// tokens collapse to the last occurrence; they are not summed.
type ItemResult struct {
	PlatformID    int64              `json:"platformId"`
	DivisionValue map[string]float64 `json:"divisionValue"`
}

type Response struct {
	DivisionValue []ItemResult `json:"divisionValue"`
}

type Service interface {
	Calculate(context.Context, Request) (Response, error)
}
