// Package engine implements the in-memory royalty allocation core: the
// share record store, per-author aggregates, the publisher residual, the
// per-platform validator and the amount calculator. The engine performs no
// I/O; callers load state in, edit, and read the derived views back out.
package engine

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/smallpress/folio/internal/observability/metrics"
	"github.com/smallpress/folio/internal/royalty/domain"
)

type Platform struct {
	ID      int64
	Name    string
	IsEbook bool
}

type Author struct {
	ID   int64
	Name string
}

type Publisher struct {
	ID   int64
	Name string
}

// Record mirrors one persisted share record. Exactly one of AuthorID and
// PublisherID is set.
type Record struct {
	Platform    string
	AuthorID    *int64
	PublisherID *int64
	OwnerName   string
	Percentage  *int
}

// Pricing carries the per-platform sales price and the title's production
// cost inputs for amount computation.
type Pricing struct {
	SalesPrice map[string]*float64
	PrintCost  float64
	// Margin is the publisher markup above actual printing cost, passed
	// through to the publisher's amount on physical platforms only.
	Margin float64
}

type Config struct {
	TitleID            int64
	Platforms          []Platform
	Authors            []Author
	Publisher          *Publisher
	Records            []Record
	DefaultAuthorShare int
	Metrics            *metrics.EngineMetrics
}

type ownerKey struct {
	kind domain.OwnerKind
	id   int64
}

type recordKey struct {
	platform string
	owner    ownerKey
}

// Engine owns a single title's allocation state. It is not safe for
// concurrent use; the owning service serializes access.
type Engine struct {
	titleID   int64
	platforms []Platform
	authors   []Author
	publisher *Publisher

	records        map[recordKey]*Record
	aggregates     map[int64]int
	publisherShare int
	warnings       []domain.IntegrityWarning

	pricing Pricing
	cache   map[string]float64

	generation atomic.Uint64
	metrics    *metrics.EngineMetrics

	defaultShare int
}

// New builds the engine from loaded state. Records whose owner or platform
// is no longer on the title are dropped, which rebuilds the set whenever
// the author or platform list changed since last save.
func New(cfg Config) *Engine {
	defaultShare := cfg.DefaultAuthorShare
	if defaultShare <= 0 || defaultShare > 100 {
		defaultShare = 100
	}

	e := &Engine{
		titleID:      cfg.TitleID,
		platforms:    cfg.Platforms,
		authors:      cfg.Authors,
		publisher:    cfg.Publisher,
		records:      make(map[recordKey]*Record),
		aggregates:   make(map[int64]int),
		cache:        make(map[string]float64),
		metrics:      cfg.Metrics,
		defaultShare: defaultShare,
	}

	known := make(map[string]bool, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		known[p.Name] = true
	}
	authorByID := make(map[int64]Author, len(cfg.Authors))
	for _, a := range cfg.Authors {
		authorByID[a.ID] = a
	}

	for _, r := range cfg.Records {
		if !known[r.Platform] {
			continue
		}
		key, ok := e.keyFor(r)
		if !ok {
			continue
		}
		if key.owner.kind == domain.OwnerAuthor {
			if _, credited := authorByID[key.owner.id]; !credited {
				continue
			}
		}
		rec := r
		e.records[key] = &rec
	}

	e.initAggregates()
	e.materializeAggregates()

	gen := e.generation.Add(1)
	e.cascade(gen, "load")

	return e
}

func (e *Engine) keyFor(r Record) (recordKey, bool) {
	switch {
	case r.AuthorID != nil && r.PublisherID == nil:
		return recordKey{platform: r.Platform, owner: ownerKey{kind: domain.OwnerAuthor, id: *r.AuthorID}}, true
	case r.PublisherID != nil && r.AuthorID == nil:
		if e.publisher == nil || *r.PublisherID != e.publisher.ID {
			return recordKey{}, false
		}
		return recordKey{platform: r.Platform, owner: ownerKey{kind: domain.OwnerPublisher, id: *r.PublisherID}}, true
	default:
		// never both, never neither
		return recordKey{}, false
	}
}

// initAggregates derives each author's single editable value from whatever
// per-platform records were loaded. The first platform carrying a value
// wins; divergent platforms are flagged, not silently reconciled.
func (e *Engine) initAggregates() {
	anyAuthorRecord := false
	for key, rec := range e.records {
		if key.owner.kind == domain.OwnerAuthor && rec.Percentage != nil {
			anyAuthorRecord = true
			break
		}
	}

	for i, author := range e.authors {
		var values []int
		var platforms []string
		for _, p := range e.platforms {
			key := recordKey{platform: p.Name, owner: ownerKey{kind: domain.OwnerAuthor, id: author.ID}}
			rec, ok := e.records[key]
			if !ok || rec.Percentage == nil {
				continue
			}
			values = append(values, *rec.Percentage)
			platforms = append(platforms, p.Name)
		}

		switch {
		case len(values) == 0 && !anyAuthorRecord && i == 0:
			// first credited author of an unallocated title owns
			// the full share until edited
			e.aggregates[author.ID] = e.defaultShare
		case len(values) == 0:
			e.aggregates[author.ID] = 0
		default:
			e.aggregates[author.ID] = values[0]
			if divergent(values) {
				e.warnings = append(e.warnings, domain.IntegrityWarning{
					AuthorID:  author.ID,
					Platforms: platforms,
					Values:    values,
					Message: fmt.Sprintf(
						"share for author %d differs across platforms; keeping %d%% from %s",
						author.ID, values[0], platforms[0],
					),
				})
			}
		}
	}
}

// materializeAggregates writes each author's aggregate back to every
// platform record, filling gaps and reconciling divergent platforms to the
// kept value.
func (e *Engine) materializeAggregates() {
	for _, author := range e.authors {
		pct := e.aggregates[author.ID]
		for _, p := range e.platforms {
			rec := e.ensureRecord(p.Name, ownerKey{kind: domain.OwnerAuthor, id: author.ID}, author.Name)
			v := pct
			rec.Percentage = &v
		}
	}
}

func divergent(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}

// SetAuthorShare is the single edit entry point. It rounds the raw value to
// a whole percentage, propagates it to every platform record for the author
// and synchronously runs the derivation cascade. An author not credited on
// the title is a no-op. Returns whether anything changed.
func (e *Engine) SetAuthorShare(authorID int64, raw float64) bool {
	author, ok := e.authorByID(authorID)
	if !ok {
		return false
	}

	pct := int(math.Round(raw))
	gen := e.generation.Add(1)

	e.aggregates[author.ID] = pct
	for _, p := range e.platforms {
		rec := e.ensureRecord(p.Name, ownerKey{kind: domain.OwnerAuthor, id: author.ID}, author.Name)
		v := pct
		rec.Percentage = &v
	}

	e.cascade(gen, "author_edit")
	return true
}

// cascade runs the derived steps after a top-level change: publisher
// residual, validation, amount cache invalidation. A pass that lost the
// generation race discards its output instead of writing stale values.
func (e *Engine) cascade(gen uint64, trigger string) {
	start := time.Now()

	if e.stale(gen) {
		e.metrics.RecordStaleDiscard()
		return
	}

	e.recomputePublisherShare(gen)
	flagged := len(e.ValidateTotals()) > 0
	e.invalidateAmounts()

	e.metrics.RecordValidation(flagged)
	e.metrics.ObserveCascade(trigger, time.Since(start))
}

func (e *Engine) stale(gen uint64) bool {
	return gen != e.generation.Load()
}

// recomputePublisherShare derives the publisher residual and writes it to
// every platform record. Without a publisher this is a no-op; without
// authors the publisher owns the full share. Integer math keeps repeated
// runs drift-free.
func (e *Engine) recomputePublisherShare(gen uint64) {
	if e.publisher == nil || e.stale(gen) {
		return
	}

	sum := 0
	for _, a := range e.authors {
		sum += e.aggregates[a.ID]
	}

	share := 100 - sum
	if share < 0 {
		share = 0
	}
	e.publisherShare = share

	for _, p := range e.platforms {
		rec := e.ensureRecord(p.Name, ownerKey{kind: domain.OwnerPublisher, id: e.publisher.ID}, e.publisher.Name)
		v := share
		rec.Percentage = &v
	}
}

func (e *Engine) ensureRecord(platform string, owner ownerKey, ownerName string) *Record {
	key := recordKey{platform: platform, owner: owner}
	if rec, ok := e.records[key]; ok {
		return rec
	}

	rec := &Record{Platform: platform, OwnerName: ownerName}
	if owner.kind == domain.OwnerAuthor {
		id := owner.id
		rec.AuthorID = &id
	} else {
		id := owner.id
		rec.PublisherID = &id
	}
	e.records[key] = rec
	return rec
}

// ValidateTotals reports every platform whose summed percentage exceeds
// 100. Partial allocation below 100 is legal while editing is in progress.
func (e *Engine) ValidateTotals() map[string]string {
	flagged := make(map[string]string)
	for name, total := range e.Totals() {
		if total > 100 {
			flagged[name] = fmt.Sprintf("total share on %s is %d%%, exceeding 100%%", name, total)
		}
	}
	return flagged
}

// Totals sums the non-nil percentages per platform.
func (e *Engine) Totals() map[string]int {
	totals := make(map[string]int, len(e.platforms))
	for _, p := range e.platforms {
		totals[p.Name] = 0
	}
	for key, rec := range e.records {
		if rec.Percentage == nil {
			continue
		}
		totals[key.platform] += *rec.Percentage
	}
	return totals
}

// AuthorAggregate returns an author's single editable share value.
func (e *Engine) AuthorAggregate(authorID int64) (int, bool) {
	v, ok := e.aggregates[authorID]
	return v, ok
}

// PublisherShare returns the derived residual, zero when no publisher.
func (e *Engine) PublisherShare() int {
	return e.publisherShare
}

// Warnings returns load-time data-integrity warnings.
func (e *Engine) Warnings() []domain.IntegrityWarning {
	return e.warnings
}

// Allocations returns the flat storage view, ordered by platform then by
// credited author order with the publisher last.
func (e *Engine) Allocations() []domain.Allocation {
	out := make([]domain.Allocation, 0, len(e.records))
	for _, p := range e.platforms {
		for _, rec := range e.orderedRecords(p.Name) {
			a := domain.Allocation{
				TitleID:    e.titleID,
				Platform:   rec.Platform,
				Percentage: rec.Percentage,
			}
			if rec.AuthorID != nil {
				id := *rec.AuthorID
				a.AuthorID = &id
			}
			if rec.PublisherID != nil {
				id := *rec.PublisherID
				a.PublisherID = &id
			}
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) orderedRecords(platform string) []*Record {
	var recs []*Record
	for _, a := range e.authors {
		key := recordKey{platform: platform, owner: ownerKey{kind: domain.OwnerAuthor, id: a.ID}}
		if rec, ok := e.records[key]; ok {
			recs = append(recs, rec)
		}
	}
	if e.publisher != nil {
		key := recordKey{platform: platform, owner: ownerKey{kind: domain.OwnerPublisher, id: e.publisher.ID}}
		if rec, ok := e.records[key]; ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

// Records returns every record in deterministic order for persistence.
func (e *Engine) Records() []Record {
	keys := make([]recordKey, 0, len(e.records))
	for key := range e.records {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].platform != keys[j].platform {
			return keys[i].platform < keys[j].platform
		}
		if keys[i].owner.kind != keys[j].owner.kind {
			return keys[i].owner.kind < keys[j].owner.kind
		}
		return keys[i].owner.id < keys[j].owner.id
	})

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, *e.records[key])
	}
	return out
}

func (e *Engine) authorByID(id int64) (Author, bool) {
	for _, a := range e.authors {
		if a.ID == id {
			return a, true
		}
	}
	return Author{}, false
}
