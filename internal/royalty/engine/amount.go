package engine

import (
	"fmt"
	"math"

	"github.com/smallpress/folio/internal/royalty/domain"
)

// AmountFor converts a percentage share into a monetary amount. Digital
// platforms keep the full sales price; physical platforms subtract the
// printing cost first (never below zero). A missing price yields zero, not
// an error — pricing may simply not be set yet. The publisher margin is
// added in full on physical platforms only, and only for the publisher.
func AmountFor(pct int, ownerKind domain.OwnerKind, price *float64, printingCost float64, isEbook bool, margin float64) float64 {
	if price == nil {
		return 0
	}

	effective := *price
	if !isEbook {
		effective = math.Max(0, effective-printingCost)
	}

	amount := round2(effective * float64(pct) / 100)
	if ownerKind == domain.OwnerPublisher && !isEbook && margin > 0 {
		amount = round2(amount + margin)
	}
	return amount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SetPricing swaps the pricing inputs and drops every cached amount.
func (e *Engine) SetPricing(p Pricing) {
	e.pricing = p
	e.invalidateAmounts()
}

func (e *Engine) invalidateAmounts() {
	e.cache = make(map[string]float64)
}

// Amounts computes the monetary value of every non-nil share, ordered by
// platform then owner. Amounts are still produced for over-allocated
// platforms so callers can show the consequence of an invalid total.
func (e *Engine) Amounts() []domain.AmountLine {
	var out []domain.AmountLine
	for _, p := range e.platforms {
		price := e.pricing.SalesPrice[p.Name]
		for _, rec := range e.orderedRecords(p.Name) {
			if rec.Percentage == nil {
				continue
			}

			line := domain.AmountLine{
				Platform:   p.Name,
				IsEbook:    p.IsEbook,
				Percentage: *rec.Percentage,
				OwnerName:  rec.OwnerName,
			}
			if rec.AuthorID != nil {
				line.OwnerKind = domain.OwnerAuthor
				line.OwnerID = *rec.AuthorID
			} else {
				line.OwnerKind = domain.OwnerPublisher
				line.OwnerID = *rec.PublisherID
			}

			line.Amount = e.cachedAmount(p, line.OwnerKind, line.OwnerID, *rec.Percentage, price)
			out = append(out, line)
		}
	}
	return out
}

func (e *Engine) cachedAmount(p Platform, kind domain.OwnerKind, ownerID int64, pct int, price *float64) float64 {
	key := fmt.Sprintf("%s|%s:%d|%d", p.Name, kind, ownerID, pct)
	if amount, ok := e.cache[key]; ok {
		e.metrics.RecordAmountCache(true)
		return amount
	}

	amount := AmountFor(pct, kind, price, e.pricing.PrintCost, p.IsEbook, e.pricing.Margin)
	e.cache[key] = amount
	e.metrics.RecordAmountCache(false)
	return amount
}
