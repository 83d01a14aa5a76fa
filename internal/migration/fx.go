package migration

import (
	"github.com/smallpress/folio/internal/config"
	"github.com/smallpress/folio/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}

		if cfg.SeedPlatforms {
			return seed.EnsureDefaultPlatforms(conn)
		}
		return nil
	}),
)
