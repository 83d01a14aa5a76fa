package platform

import (
	"github.com/smallpress/folio/internal/platform/repository"
	"github.com/smallpress/folio/internal/platform/service"
	"go.uber.org/fx"
)

var Module = fx.Module("platform.registry",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewRegistry),
)
