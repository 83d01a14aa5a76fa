// Package domain contains the sales platform registry models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Platform is a sales channel a title can be distributed on. Digital
// platforms never carry physical production cost.
type Platform struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;uniqueIndex" json:"name"`
	IsEbook   bool         `gorm:"not null;default:false" json:"is_ebook_platform"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Platform) TableName() string { return "platforms" }
