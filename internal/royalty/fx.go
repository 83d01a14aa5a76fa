package royalty

import (
	"github.com/smallpress/folio/internal/royalty/repository"
	"github.com/smallpress/folio/internal/royalty/service"
	"go.uber.org/fx"
)

var Module = fx.Module("royalty.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewSessionCache),
	fx.Provide(service.ProvideInvalidator),
	fx.Provide(service.New),
)
