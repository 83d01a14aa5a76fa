package pricing

import (
	"github.com/smallpress/folio/internal/pricing/domain"
	"github.com/smallpress/folio/internal/pricing/repository"
	"github.com/smallpress/folio/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s domain.Service) domain.Source { return s }),
)
