// Package migration creates the schema on startup so Folio is usable
// out of the box for local and self-hosted environments.
package migration

import (
	"errors"

	catalogdomain "github.com/smallpress/folio/internal/catalog/domain"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	pricingdomain "github.com/smallpress/folio/internal/pricing/domain"
	royaltydomain "github.com/smallpress/folio/internal/royalty/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&platformdomain.Platform{},
		&catalogdomain.Publisher{},
		&catalogdomain.Author{},
		&catalogdomain.Title{},
		&catalogdomain.TitleAuthor{},
		&pricingdomain.PricingEntry{},
		&pricingdomain.PrintingCost{},
		&royaltydomain.ShareRecord{},
	)
}
