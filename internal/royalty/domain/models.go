// Package domain contains the royalty allocation models. A ShareRecord is
// one owner's percentage of net revenue on one platform; the full set for a
// title is the source of truth the engine derives everything else from.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OwnerKind distinguishes author shares from the publisher residual.
type OwnerKind string

const (
	OwnerAuthor    OwnerKind = "author"
	OwnerPublisher OwnerKind = "publisher"
)

// ShareRecord is the persisted allocation row. Exactly one of AuthorID and
// PublisherID is set. Percentage is nil until the owner first receives a
// share on the platform.
type ShareRecord struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	TitleID      snowflake.ID  `gorm:"not null;index" json:"title_id"`
	PlatformName string        `gorm:"not null;index" json:"platform"`
	AuthorID     *snowflake.ID `gorm:"index" json:"author_id,omitempty"`
	PublisherID  *snowflake.ID `gorm:"index" json:"publisher_id,omitempty"`
	OwnerName    string        `gorm:"not null" json:"owner_name"`
	Percentage   *int          `json:"percentage,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ShareRecord) TableName() string { return "share_records" }

// Allocation is the flat storage/transport view of one record.
type Allocation struct {
	TitleID     int64  `json:"title_id"`
	AuthorID    *int64 `json:"author_id"`
	PublisherID *int64 `json:"publisher_id"`
	Platform    string `json:"platform"`
	Percentage  *int   `json:"percentage"`
}

// IntegrityWarning flags imported records that disagree across platforms
// for the same author. The engine does not guess which value is right; it
// keeps the first and reports the divergence.
type IntegrityWarning struct {
	AuthorID  int64    `json:"author_id"`
	Platforms []string `json:"platforms"`
	Values    []int    `json:"values"`
	Message   string   `json:"message"`
}

// AmountLine is one owner's computed monetary amount on one platform.
type AmountLine struct {
	Platform   string    `json:"platform"`
	IsEbook    bool      `json:"is_ebook_platform"`
	OwnerKind  OwnerKind `json:"owner_kind"`
	OwnerID    int64     `json:"owner_id"`
	OwnerName  string    `json:"owner_name"`
	Percentage int       `json:"percentage"`
	Amount     float64   `json:"amount"`
}

// AllocationView is the structured allocation state returned to callers
// after every read or edit.
type AllocationView struct {
	TitleID     int64              `json:"title_id"`
	Allocations []Allocation       `json:"allocations"`
	Totals      map[string]int     `json:"totals"`
	Errors      map[string]string  `json:"errors,omitempty"`
	Warnings    []IntegrityWarning `json:"warnings,omitempty"`
}
