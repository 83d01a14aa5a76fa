package engine

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallpress/folio/internal/observability/metrics"
	"github.com/smallpress/folio/internal/royalty/domain"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func twoAuthorConfig() Config {
	return Config{
		TitleID: 10,
		Platforms: []Platform{
			{ID: 1, Name: "Amazon", IsEbook: false},
			{ID: 2, Name: "Kindle", IsEbook: true},
		},
		Authors: []Author{
			{ID: 100, Name: "First Author"},
			{ID: 101, Name: "Second Author"},
		},
		Publisher: &Publisher{ID: 200, Name: "Small Press"},
	}
}

func TestEngine_DefaultInitialization(t *testing.T) {
	e := New(twoAuthorConfig())

	// First credited author owns the full share, the rest start at zero.
	first, ok := e.AuthorAggregate(100)
	assert.True(t, ok)
	assert.Equal(t, 100, first)

	second, ok := e.AuthorAggregate(101)
	assert.True(t, ok)
	assert.Equal(t, 0, second)

	assert.Equal(t, 0, e.PublisherShare())

	totals := e.Totals()
	assert.Equal(t, 100, totals["Amazon"])
	assert.Equal(t, 100, totals["Kindle"])
	assert.Empty(t, e.ValidateTotals())
}

func TestEngine_EditPropagatesToAllPlatforms(t *testing.T) {
	e := New(twoAuthorConfig())

	changed := e.SetAuthorShare(100, 60)
	assert.True(t, changed)

	for _, rec := range e.Records() {
		if rec.AuthorID != nil && *rec.AuthorID == 100 {
			assert.Equal(t, 60, *rec.Percentage)
		}
	}
}

func TestEngine_PublisherResidual(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 60)
	e.SetAuthorShare(101, 25)

	assert.Equal(t, 15, e.PublisherShare())

	totals := e.Totals()
	assert.Equal(t, 100, totals["Amazon"])
	assert.Equal(t, 100, totals["Kindle"])
	assert.Empty(t, e.ValidateTotals())
}

func TestEngine_ResidualClampedAtZero(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 70)
	e.SetAuthorShare(101, 50)

	// Authors sum to 120; the residual never goes negative.
	assert.Equal(t, 0, e.PublisherShare())

	flagged := e.ValidateTotals()
	assert.Len(t, flagged, 2)
	assert.Contains(t, flagged["Amazon"], "120%")
}

func TestEngine_PartialAllocationNotFlagged(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 30)
	e.SetAuthorShare(101, 20)

	// Publisher absorbs the remainder, totals land exactly on 100.
	assert.Equal(t, 50, e.PublisherShare())
	assert.Empty(t, e.ValidateTotals())
}

func TestEngine_NoPublisher(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Publisher = nil
	e := New(cfg)

	e.SetAuthorShare(100, 40)

	assert.Equal(t, 0, e.PublisherShare())
	totals := e.Totals()
	assert.Equal(t, 40, totals["Amazon"])
}

func TestEngine_NoAuthorsPublisherOwnsAll(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Authors = nil
	e := New(cfg)

	assert.Equal(t, 100, e.PublisherShare())
}

func TestEngine_UnknownAuthorIsNoOp(t *testing.T) {
	e := New(twoAuthorConfig())
	before := e.Totals()

	changed := e.SetAuthorShare(999, 50)

	assert.False(t, changed)
	assert.Equal(t, before, e.Totals())
}

func TestEngine_EditIsIdempotent(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 45)
	first := e.Records()

	e.SetAuthorShare(100, 45)
	second := e.Records()

	assert.Equal(t, first, second)
	assert.Equal(t, 55, e.PublisherShare())
}

func TestEngine_RoundsToWholePercent(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 33.4)
	v, _ := e.AuthorAggregate(100)
	assert.Equal(t, 33, v)

	e.SetAuthorShare(100, 33.5)
	v, _ = e.AuthorAggregate(100)
	assert.Equal(t, 34, v)
}

func TestEngine_LoadFromRecords(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Records = []Record{
		{Platform: "Amazon", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(55)},
		{Platform: "Kindle", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(55)},
		{Platform: "Amazon", AuthorID: int64Ptr(101), OwnerName: "Second Author", Percentage: intPtr(20)},
		{Platform: "Kindle", AuthorID: int64Ptr(101), OwnerName: "Second Author", Percentage: intPtr(20)},
	}
	e := New(cfg)

	first, _ := e.AuthorAggregate(100)
	second, _ := e.AuthorAggregate(101)
	assert.Equal(t, 55, first)
	assert.Equal(t, 20, second)
	assert.Equal(t, 25, e.PublisherShare())
	assert.Empty(t, e.Warnings())
}

func TestEngine_DivergentRecordsWarnFirstPlatformWins(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Records = []Record{
		{Platform: "Amazon", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(60)},
		{Platform: "Kindle", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(40)},
	}
	e := New(cfg)

	v, _ := e.AuthorAggregate(100)
	assert.Equal(t, 60, v)

	warnings := e.Warnings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, int64(100), warnings[0].AuthorID)
	assert.ElementsMatch(t, []int{60, 40}, warnings[0].Values)
}

func TestEngine_DropsRecordsForRemovedOwnersAndPlatforms(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Records = []Record{
		{Platform: "Amazon", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(50)},
		{Platform: "Defunct Shop", AuthorID: int64Ptr(100), OwnerName: "First Author", Percentage: intPtr(50)},
		{Platform: "Amazon", AuthorID: int64Ptr(999), OwnerName: "Removed Author", Percentage: intPtr(10)},
		{Platform: "Amazon", PublisherID: int64Ptr(999), OwnerName: "Old Press", Percentage: intPtr(10)},
	}
	e := New(cfg)

	for _, rec := range e.Records() {
		assert.Contains(t, []string{"Amazon", "Kindle"}, rec.Platform)
		if rec.AuthorID != nil {
			assert.Contains(t, []int64{100, 101}, *rec.AuthorID)
		}
		if rec.PublisherID != nil {
			assert.Equal(t, int64(200), *rec.PublisherID)
		}
	}
}

func TestEngine_AllocationsOrdering(t *testing.T) {
	e := New(twoAuthorConfig())
	e.SetAuthorShare(100, 60)
	e.SetAuthorShare(101, 20)

	allocs := e.Allocations()

	// Per platform: credited authors in order, publisher last.
	assert.Equal(t, "Amazon", allocs[0].Platform)
	assert.Equal(t, int64(100), *allocs[0].AuthorID)
	assert.Equal(t, int64(101), *allocs[1].AuthorID)
	assert.Equal(t, int64(200), *allocs[2].PublisherID)
	assert.Equal(t, "Kindle", allocs[3].Platform)
}

func TestEngine_EndToEndTwoAuthors(t *testing.T) {
	e := New(twoAuthorConfig())
	e.SetPricing(Pricing{
		SalesPrice: map[string]*float64{
			"Amazon": float64Ptr(200),
			"Kindle": float64Ptr(150),
		},
		PrintCost: 50,
	})

	// Initial state: first author 100, second 0, publisher 0.
	e.SetAuthorShare(100, 60)
	assert.Equal(t, 40, e.PublisherShare())

	e.SetAuthorShare(101, 30)
	assert.Equal(t, 10, e.PublisherShare())
	assert.Empty(t, e.ValidateTotals())

	// Over-allocate, then come back down.
	e.SetAuthorShare(101, 50)
	assert.Equal(t, 0, e.PublisherShare())
	assert.NotEmpty(t, e.ValidateTotals())

	e.SetAuthorShare(101, 40)
	assert.Equal(t, 0, e.PublisherShare())
	assert.Empty(t, e.ValidateTotals())

	lines := e.Amounts()
	byKey := make(map[string]domain.AmountLine, len(lines))
	for _, l := range lines {
		byKey[l.Platform+"/"+l.OwnerName] = l
	}

	// Amazon is physical: effective price 150.
	assert.InDelta(t, 90.0, byKey["Amazon/First Author"].Amount, 0.001)
	assert.InDelta(t, 60.0, byKey["Amazon/Second Author"].Amount, 0.001)
	// Kindle is digital: full price 150.
	assert.InDelta(t, 90.0, byKey["Kindle/First Author"].Amount, 0.001)
	assert.InDelta(t, 60.0, byKey["Kindle/Second Author"].Amount, 0.001)
}

var (
	staleMetricsOnce sync.Once
	staleMetrics     *metrics.EngineMetrics
)

// registeredEngineMetrics returns process-wide engine instruments; the
// default registry rejects a second registration.
func registeredEngineMetrics() *metrics.EngineMetrics {
	staleMetricsOnce.Do(func() {
		staleMetrics = metrics.NewEngineMetrics()
	})
	return staleMetrics
}

func staleDiscardCount(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "folio_royalty_stale_pass_discards_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestStaleCascadePassIsDiscarded(t *testing.T) {
	cfg := twoAuthorConfig()
	cfg.Metrics = registeredEngineMetrics()
	e := New(cfg)

	e.SetAuthorShare(100, 60)
	assert.Equal(t, 40, e.PublisherShare())

	// A newer edit lands while a recomputation pass is still in flight:
	// the in-flight pass carries the superseded generation.
	superseded := e.generation.Load()
	e.aggregates[100] = 80
	current := e.generation.Add(1)

	before := e.Records()
	discardsBefore := staleDiscardCount(t)

	e.cascade(superseded, "author_edit")

	assert.Equal(t, 40, e.PublisherShare())
	assert.Equal(t, before, e.Records())
	assert.Equal(t, discardsBefore+1, staleDiscardCount(t))

	// The pass holding the current generation applies the pending value.
	e.cascade(current, "author_edit")
	assert.Equal(t, 20, e.PublisherShare())
}

func TestStaleResidualRecomputeIsNoOp(t *testing.T) {
	e := New(twoAuthorConfig())

	e.SetAuthorShare(100, 70)
	assert.Equal(t, 30, e.PublisherShare())

	superseded := e.generation.Load()
	e.aggregates[100] = 10
	e.generation.Add(1)

	e.recomputePublisherShare(superseded)
	assert.Equal(t, 30, e.PublisherShare())

	pct, ok := e.AuthorAggregate(100)
	assert.True(t, ok)
	assert.Equal(t, 10, pct)
	for _, rec := range e.Records() {
		if rec.PublisherID != nil {
			assert.Equal(t, 30, *rec.Percentage)
		}
	}
}
