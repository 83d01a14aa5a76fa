package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallpress/folio/internal/catalog"
	catalogdomain "github.com/smallpress/folio/internal/catalog/domain"
	"github.com/smallpress/folio/internal/config"
	"github.com/smallpress/folio/internal/division"
	divisiondomain "github.com/smallpress/folio/internal/division/domain"
	"github.com/smallpress/folio/internal/observability"
	obsmiddleware "github.com/smallpress/folio/internal/observability/logger"
	obsmetrics "github.com/smallpress/folio/internal/observability/metrics"
	"github.com/smallpress/folio/internal/platform"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	"github.com/smallpress/folio/internal/pricing"
	pricingdomain "github.com/smallpress/folio/internal/pricing/domain"
	"github.com/smallpress/folio/internal/royalty"
	royaltydomain "github.com/smallpress/folio/internal/royalty/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	config.Module,
	platform.Module,
	catalog.Module,
	pricing.Module,
	royalty.Module,
	division.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	registry    platformdomain.Registry
	catalogSvc  catalogdomain.Service
	pricingSvc  pricingdomain.Service
	royaltySvc  royaltydomain.Service
	divisionSvc divisiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Registry    platformdomain.Registry
	CatalogSvc  catalogdomain.Service
	PricingSvc  pricingdomain.Service
	RoyaltySvc  royaltydomain.Service
	DivisionSvc divisiondomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		registry:    p.Registry,
		catalogSvc:  p.CatalogSvc,
		pricingSvc:  p.PricingSvc,
		royaltySvc:  p.RoyaltySvc,
		divisionSvc: p.DivisionSvc,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/platforms", s.ListPlatforms)

	api.POST("/titles", s.CreateTitle)
	api.GET("/titles", s.ListTitles)
	api.GET("/titles/:id", s.GetTitle)
	api.PUT("/titles/:id/pricing", s.UpsertPricing)

	api.GET("/titles/:id/royalties", s.GetRoyalties)
	api.PUT("/titles/:id/royalties/authors/:authorId", s.SetAuthorShare)
	api.GET("/titles/:id/royalties/amounts", s.GetRoyaltyAmounts)

	api.POST("/royalty-calculator", s.CalculateDivision)
}
