package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/smallpress/folio/internal/division/domain"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type registryStub struct {
	ebookByID map[int64]bool
}

func (r *registryStub) List(context.Context) ([]*platformdomain.Platform, error) {
	return nil, nil
}

func (r *registryStub) IsEbook(ctx context.Context, name string) (bool, error) {
	return false, platformdomain.ErrNotFound
}

func (r *registryStub) ClassifyByID(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range ids {
		if v, ok := r.ebookByID[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func newTestService(ebookByID map[int64]bool) domain.Service {
	return New(ServiceParam{
		Log:      zap.NewNop(),
		Registry: &registryStub{ebookByID: ebookByID},
	})
}

func TestCalculate_EbookKeepsFullPrice(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		PrintingPrice: 40,
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"50", "30"}},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.DivisionValue, 1)
	assert.InDelta(t, 50.0, resp.DivisionValue[0].DivisionValue["50"], 0.001)
	assert.InDelta(t, 30.0, resp.DivisionValue[0].DivisionValue["30"], 0.001)
}

func TestCalculate_PhysicalSubtractsPrintingPrice(t *testing.T) {
	svc := newTestService(map[int64]bool{1: false})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		PrintingPrice: 40,
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"50"}},
		},
	})
	assert.NoError(t, err)
	assert.InDelta(t, 30.0, resp.DivisionValue[0].DivisionValue["50"], 0.001)
}

func TestCalculate_EffectivePriceFloorsAtZero(t *testing.T) {
	svc := newTestService(map[int64]bool{1: false})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		PrintingPrice: 150,
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"50"}},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, resp.DivisionValue[0].DivisionValue["50"])
}

func TestCalculate_TokensTrimmedAndEmptyDropped(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{" 25 ", "", "   "}},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.DivisionValue, 1)
	values := resp.DivisionValue[0].DivisionValue
	assert.Len(t, values, 1)
	assert.InDelta(t, 25.0, values["25"], 0.001)
}

func TestCalculate_AllTokensEmptyOmitsItem(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"", " "}},
		},
	})
	assert.NoError(t, err)
	assert.Empty(t, resp.DivisionValue)
	assert.NotNil(t, resp.DivisionValue)

	body, err := json.Marshal(resp)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"divisionValue": []}`, string(body))
}

func TestCalculate_DuplicateTokensCollapse(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"50", "50"}},
		},
	})
	assert.NoError(t, err)
	values := resp.DivisionValue[0].DivisionValue
	assert.Len(t, values, 1)
	assert.InDelta(t, 50.0, values["50"], 0.001)
}

func TestCalculate_UnknownPlatformOmitted(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"10"}},
			{PlatformID: 99, Price: 100, Division: []string{"10"}},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.DivisionValue, 1)
	assert.Equal(t, int64(1), resp.DivisionValue[0].PlatformID)
}

func TestCalculate_UnparseableTokenKeptWithZero(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 100, Division: []string{"abc", "20"}},
		},
	})
	assert.NoError(t, err)
	values := resp.DivisionValue[0].DivisionValue
	assert.Equal(t, 0.0, values["abc"])
	assert.InDelta(t, 20.0, values["20"], 0.001)
}

func TestCalculate_FractionalPercentage(t *testing.T) {
	svc := newTestService(map[int64]bool{1: true})

	resp, err := svc.Calculate(context.Background(), domain.Request{
		Items: []domain.Item{
			{PlatformID: 1, Price: 99.99, Division: []string{"12.5"}},
		},
	})
	assert.NoError(t, err)
	assert.InDelta(t, 12.50, resp.DivisionValue[0].DivisionValue["12.5"], 0.001)
}
