package service

import (
	"context"
	"strings"

	"github.com/smallpress/folio/internal/platform/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Registry struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

type RegistryParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

func NewRegistry(p RegistryParam) domain.Registry {
	return &Registry{
		db:   p.DB,
		log:  p.Log.Named("platform.registry"),
		repo: p.Repo,
	}
}

func (s *Registry) List(ctx context.Context) ([]*domain.Platform, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Registry) IsEbook(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, domain.ErrInvalidName
	}

	platform, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return false, err
	}
	if platform == nil {
		return false, domain.ErrNotFound
	}
	return platform.IsEbook, nil
}

// ClassifyByID resolves the digital flag for a batch of platform ids.
// Unknown ids are absent from the result rather than an error.
func (s *Registry) ClassifyByID(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var platforms []*domain.Platform
	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&platforms).Error
	if err != nil {
		return nil, err
	}

	for _, p := range platforms {
		out[int64(p.ID)] = p.IsEbook
	}
	return out, nil
}
