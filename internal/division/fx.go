package division

import (
	"github.com/smallpress/folio/internal/division/service"
	"go.uber.org/fx"
)

var Module = fx.Module("division.service",
	fx.Provide(service.New),
)
