package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallpress/folio/internal/catalog/domain"
	"github.com/smallpress/folio/internal/config"
	"github.com/smallpress/folio/internal/observability/metrics"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	pricingdomain "github.com/smallpress/folio/internal/pricing/domain"
	"github.com/smallpress/folio/internal/royalty/domain"
	"github.com/smallpress/folio/internal/royalty/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service loads a title's allocation state into an engine session, applies
// edits through the cascade and persists the resulting record set. Engine
// access is serialized; the engine itself is single-threaded.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	registry    platformdomain.Registry
	pricing     pricingdomain.Source
	royaltyCfg  *config.RoyaltyConfigHolder
	metrics     *metrics.EngineMetrics

	sessions *SessionCache
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Registry    platformdomain.Registry
	Pricing     pricingdomain.Source
	RoyaltyCfg  *config.RoyaltyConfigHolder
	Metrics     *metrics.EngineMetrics `optional:"true"`
	Sessions    *SessionCache
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("royalty.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		registry:    p.Registry,
		pricing:     p.Pricing,
		royaltyCfg:  p.RoyaltyCfg,
		metrics:     p.Metrics,
		sessions:    p.Sessions,
	}
}

func (s *Service) SetAuthorShare(ctx context.Context, req domain.SetAuthorShareRequest) (domain.AllocationView, error) {
	titleID, err := snowflake.ParseString(strings.TrimSpace(req.TitleID))
	if err != nil {
		return domain.AllocationView{}, domain.ErrInvalidTitle
	}
	authorID, err := snowflake.ParseString(strings.TrimSpace(req.AuthorID))
	if err != nil {
		return domain.AllocationView{}, domain.ErrInvalidAuthor
	}
	if math.IsNaN(req.Percentage) || req.Percentage < 0 || req.Percentage > 100 {
		return domain.AllocationView{}, domain.ErrInvalidPercentage
	}

	sess, err := s.loadSession(ctx, titleID)
	if err != nil {
		return domain.AllocationView{}, err
	}

	sess.Mu.Lock()
	changed := sess.Engine.SetAuthorShare(int64(authorID), req.Percentage)
	if changed {
		if err := s.persist(ctx, titleID, sess.Engine); err != nil {
			sess.Mu.Unlock()
			return domain.AllocationView{}, err
		}
	}
	view := s.viewOf(titleID, sess.Engine)
	sess.Mu.Unlock()

	if changed {
		// warm the amount cache once the edit burst settles
		sess.Debounce.Trigger(func() {
			sess.Mu.Lock()
			defer sess.Mu.Unlock()
			_ = sess.Engine.Amounts()
		})
	}

	return view, nil
}

func (s *Service) View(ctx context.Context, rawTitleID string) (domain.AllocationView, error) {
	titleID, err := snowflake.ParseString(strings.TrimSpace(rawTitleID))
	if err != nil {
		return domain.AllocationView{}, domain.ErrInvalidTitle
	}

	sess, err := s.loadSession(ctx, titleID)
	if err != nil {
		return domain.AllocationView{}, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return s.viewOf(titleID, sess.Engine), nil
}

func (s *Service) Amounts(ctx context.Context, rawTitleID string) ([]domain.AmountLine, error) {
	titleID, err := snowflake.ParseString(strings.TrimSpace(rawTitleID))
	if err != nil {
		return nil, domain.ErrInvalidTitle
	}

	sess, err := s.loadSession(ctx, titleID)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return sess.Engine.Amounts(), nil
}

func (s *Service) viewOf(titleID snowflake.ID, eng *engine.Engine) domain.AllocationView {
	return domain.AllocationView{
		TitleID:     int64(titleID),
		Allocations: eng.Allocations(),
		Totals:      eng.Totals(),
		Errors:      eng.ValidateTotals(),
		Warnings:    eng.Warnings(),
	}
}

func (s *Service) loadSession(ctx context.Context, titleID snowflake.ID) (*Session, error) {
	if sess, ok := s.sessions.Get(int64(titleID)); ok {
		return sess, nil
	}

	title, err := s.catalogRepo.FindTitleByID(ctx, s.db, titleID)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, domain.ErrTitleNotFound
	}

	authors, err := s.catalogRepo.AuthorsForTitle(ctx, s.db, titleID)
	if err != nil {
		return nil, err
	}

	var publisher *engine.Publisher
	if title.PublisherID != nil {
		p, err := s.catalogRepo.PublisherByID(ctx, s.db, *title.PublisherID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			publisher = &engine.Publisher{ID: int64(p.ID), Name: p.Name}
		}
	}

	platforms, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.RecordsForTitle(ctx, s.db, titleID)
	if err != nil {
		return nil, err
	}

	cfg := s.royaltyCfg.Get()

	engCfg := engine.Config{
		TitleID:            int64(titleID),
		DefaultAuthorShare: cfg.DefaultAuthorShare,
		Metrics:            s.metrics,
		Publisher:          publisher,
	}
	for _, p := range platforms {
		engCfg.Platforms = append(engCfg.Platforms, engine.Platform{
			ID:      int64(p.ID),
			Name:    p.Name,
			IsEbook: p.IsEbook,
		})
	}
	for _, a := range authors {
		engCfg.Authors = append(engCfg.Authors, engine.Author{ID: int64(a.ID), Name: a.Name})
	}
	for _, r := range records {
		rec := engine.Record{
			Platform:   r.PlatformName,
			OwnerName:  r.OwnerName,
			Percentage: r.Percentage,
		}
		if r.AuthorID != nil {
			id := int64(*r.AuthorID)
			rec.AuthorID = &id
		}
		if r.PublisherID != nil {
			id := int64(*r.PublisherID)
			rec.PublisherID = &id
		}
		engCfg.Records = append(engCfg.Records, rec)
	}

	eng := engine.New(engCfg)

	pricing, err := s.loadPricing(ctx, titleID)
	if err != nil {
		return nil, err
	}
	eng.SetPricing(pricing)

	if !cfg.StrictAggregateCheck && len(eng.Warnings()) > 0 {
		s.log.Warn("suppressing allocation integrity warnings",
			zap.String("title_id", titleID.String()),
			zap.Int("warnings", len(eng.Warnings())),
		)
	}
	for _, w := range eng.Warnings() {
		s.log.Warn("allocation integrity warning",
			zap.String("title_id", titleID.String()),
			zap.Int64("author_id", w.AuthorID),
			zap.Strings("platforms", w.Platforms),
		)
	}

	sess := &Session{
		Engine:   eng,
		Debounce: engine.NewDebouncer(time.Duration(cfg.DebounceWindowMS) * time.Millisecond),
	}
	s.sessions.Put(int64(titleID), sess)
	return sess, nil
}

func (s *Service) loadPricing(ctx context.Context, titleID snowflake.ID) (engine.Pricing, error) {
	entries, err := s.pricing.EntriesForTitle(ctx, int64(titleID))
	if err != nil {
		return engine.Pricing{}, err
	}

	pricing := engine.Pricing{SalesPrice: make(map[string]*float64, len(entries))}
	for _, e := range entries {
		pricing.SalesPrice[e.PlatformName] = e.SalesPrice
	}

	cost, err := s.pricing.PrintingCostFor(ctx, int64(titleID))
	if err != nil {
		return engine.Pricing{}, err
	}
	if cost != nil {
		pricing.PrintCost = cost.PrintCost
		pricing.Margin = cost.Margin()
	}

	return pricing, nil
}

func (s *Service) persist(ctx context.Context, titleID snowflake.ID, eng *engine.Engine) error {
	now := time.Now().UTC()

	var rows []*domain.ShareRecord
	for _, rec := range eng.Records() {
		row := &domain.ShareRecord{
			ID:           s.genID.Generate(),
			TitleID:      titleID,
			PlatformName: rec.Platform,
			OwnerName:    rec.OwnerName,
			Percentage:   rec.Percentage,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if rec.AuthorID != nil {
			id := snowflake.ID(*rec.AuthorID)
			row.AuthorID = &id
		}
		if rec.PublisherID != nil {
			id := snowflake.ID(*rec.PublisherID)
			row.PublisherID = &id
		}
		rows = append(rows, row)
	}

	return s.repo.ReplaceForTitle(ctx, s.db, titleID, rows)
}
