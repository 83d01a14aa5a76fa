package catalog

import (
	"github.com/smallpress/folio/internal/catalog/repository"
	"github.com/smallpress/folio/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
