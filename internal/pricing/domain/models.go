// Package domain contains per-platform pricing and production cost models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PricingEntry is the market price of a title on one platform. MRP is the
// shelf price; SalesPrice is the net price royalty math runs on. Either may
// be unset while a title is still being listed.
type PricingEntry struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TitleID      snowflake.ID `gorm:"not null;index;uniqueIndex:idx_pricing_title_platform" json:"title_id"`
	PlatformName string       `gorm:"not null;uniqueIndex:idx_pricing_title_platform" json:"platform_name"`
	MRP          *float64     `gorm:"column:mrp" json:"mrp,omitempty"`
	SalesPrice   *float64     `json:"sales_price,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PricingEntry) TableName() string { return "pricing_entries" }

// PrintingCost is the per-unit production cost of a title's physical
// formats. CustomPrintCost above PrintCost is publisher-only margin.
type PrintingCost struct {
	TitleID         snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"title_id"`
	PrintCost       float64      `gorm:"not null;default:0" json:"print_cost"`
	CustomPrintCost *float64     `json:"custom_print_cost,omitempty"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PrintingCost) TableName() string { return "printing_costs" }

// Margin returns the publisher markup above actual printing cost, zero when
// no custom cost is set or it does not exceed the real cost.
func (p PrintingCost) Margin() float64 {
	if p.CustomPrintCost == nil {
		return 0
	}
	if *p.CustomPrintCost <= p.PrintCost {
		return 0
	}
	return *p.CustomPrintCost - p.PrintCost
}
