// Package domain contains the catalog models: titles, authors and the
// publisher they are contracted with.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Title struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Slug        string        `gorm:"not null;uniqueIndex" json:"slug"`
	PublisherID *snowflake.ID `gorm:"index" json:"publisher_id,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Title) TableName() string { return "titles" }

type Author struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Author) TableName() string { return "authors" }

type Publisher struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Publisher) TableName() string { return "publishers" }

// TitleAuthor links an author to a title. Position preserves the credited
// order on the cover.
type TitleAuthor struct {
	TitleID   snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"title_id"`
	AuthorID  snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"author_id"`
	Position  int          `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TitleAuthor) TableName() string { return "title_authors" }
