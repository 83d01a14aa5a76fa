package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/smallpress/folio/internal/division/domain"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	registry platformdomain.Registry
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Registry platformdomain.Registry
}

func New(p ServiceParam) domain.Service {
	return &Service{
		log:      p.Log.Named("division.service"),
		registry: p.Registry,
	}
}

// Calculate splits each item's price over its percentage tokens. Empty
// tokens are dropped silently, items left with no tokens or an unknown
// platform are omitted from the response, and unparseable tokens keep
// their key with a zero amount.
func (s *Service) Calculate(ctx context.Context, req domain.Request) (domain.Response, error) {
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.PlatformID)
	}

	ebookByID, err := s.registry.ClassifyByID(ctx, ids)
	if err != nil {
		return domain.Response{}, err
	}

	// Dropped items must still yield a JSON array, not null.
	resp := domain.Response{DivisionValue: []domain.ItemResult{}}
	for _, item := range req.Items {
		isEbook, known := ebookByID[item.PlatformID]
		if !known {
			continue
		}

		tokens := make([]string, 0, len(item.Division))
		for _, raw := range item.Division {
			token := strings.TrimSpace(raw)
			if token == "" {
				continue
			}
			tokens = append(tokens, token)
		}
		if len(tokens) == 0 {
			continue
		}

		effective := item.Price
		if !isEbook {
			effective = math.Max(0, effective-req.PrintingPrice)
		}

		values := make(map[string]float64, len(tokens))
		for _, token := range tokens {
			pct, err := strconv.ParseFloat(token, 64)
			if err != nil {
				values[token] = 0
				continue
			}
			values[token] = round2(effective * (pct / 100))
		}

		resp.DivisionValue = append(resp.DivisionValue, domain.ItemResult{
			PlatformID:    item.PlatformID,
			DivisionValue: values,
		})
	}

	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
