package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/pricing/domain"
	royaltydomain "github.com/smallpress/folio/internal/royalty/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository

	// invalidator evicts cached allocation sessions whose amounts depend
	// on the prices written here. nil outside the full fx graph.
	invalidator royaltydomain.CacheInvalidator
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Invalidator royaltydomain.CacheInvalidator `optional:"true"`
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pricing.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invalidator: p.Invalidator,
	}
}

func (s *Service) EntriesForTitle(ctx context.Context, titleID int64) ([]domain.PricingEntry, error) {
	return s.repo.EntriesForTitle(ctx, s.db, snowflake.ID(titleID))
}

func (s *Service) PrintingCostFor(ctx context.Context, titleID int64) (*domain.PrintingCost, error) {
	return s.repo.PrintingCostFor(ctx, s.db, snowflake.ID(titleID))
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertPricingRequest) error {
	titleID, err := snowflake.ParseString(strings.TrimSpace(req.TitleID))
	if err != nil {
		return domain.ErrInvalidTitle
	}

	for _, entry := range req.Entries {
		if strings.TrimSpace(entry.PlatformName) == "" {
			return domain.ErrInvalidPlatform
		}
		if entry.MRP != nil && *entry.MRP < 0 {
			return domain.ErrNegativePrice
		}
		if entry.SalesPrice != nil && *entry.SalesPrice < 0 {
			return domain.ErrNegativePrice
		}
	}
	if req.PrintCost != nil && *req.PrintCost < 0 {
		return domain.ErrNegativeCost
	}
	if req.CustomPrintCost != nil && *req.CustomPrintCost < 0 {
		return domain.ErrNegativeCost
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, entry := range req.Entries {
			record := &domain.PricingEntry{
				ID:           s.genID.Generate(),
				TitleID:      titleID,
				PlatformName: strings.TrimSpace(entry.PlatformName),
				MRP:          entry.MRP,
				SalesPrice:   entry.SalesPrice,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.repo.UpsertEntry(ctx, tx, record); err != nil {
				return err
			}
		}

		if req.PrintCost != nil || req.CustomPrintCost != nil {
			cost := &domain.PrintingCost{
				TitleID:         titleID,
				CustomPrintCost: req.CustomPrintCost,
				UpdatedAt:       now,
			}
			if req.PrintCost != nil {
				cost.PrintCost = *req.PrintCost
			} else if existing, err := s.repo.PrintingCostFor(ctx, tx, titleID); err != nil {
				return err
			} else if existing != nil {
				cost.PrintCost = existing.PrintCost
			}
			if err := s.repo.UpsertPrintingCost(ctx, tx, cost); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateTitle(int64(titleID))
	}

	s.log.Info("pricing updated",
		zap.String("title_id", titleID.String()),
		zap.Int("entries", len(req.Entries)),
	)
	return nil
}
