package domain

import (
	"context"
	"errors"

	"github.com/smallpress/folio/pkg/db/pagination"
)

type CreateTitleRequest struct {
	Name      string
	Publisher string
	Authors   []string
}

type ListTitleRequest struct {
	PageToken string
	PageSize  int
}

type ListTitleResponse struct {
	pagination.PageInfo
	Titles []Title `json:"titles"`
}

// TitleDetail is a title joined with its credited authors and publisher.
type TitleDetail struct {
	Title     Title      `json:"title"`
	Authors   []Author   `json:"authors"`
	Publisher *Publisher `json:"publisher,omitempty"`
}

type Service interface {
	CreateTitle(context.Context, CreateTitleRequest) (TitleDetail, error)
	ListTitles(context.Context, ListTitleRequest) (ListTitleResponse, error)
	GetTitle(ctx context.Context, id string) (TitleDetail, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrDuplicateSlug = errors.New("duplicate_slug")
	ErrNoAuthors     = errors.New("no_authors")
)
