package fanout

import (
	"github.com/shopspring/decimal"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

// Merge nests breakdown and component rows under their summary entity. Rows for an entity
// missing from the summary still get an entry so no amount is silently dropped.
func Merge(summary []domain.EntitySummary, breakdowns []domain.BreakdownRow, components []domain.ComponentRow) map[int64]*domain.EntityReport {
	out := make(map[int64]*domain.EntityReport, len(summary))

	entry := func(id int64) *domain.EntityReport {
		if r, ok := out[id]; ok {
			return r
		}
		r := &domain.EntityReport{
			EntitySummary:    domain.EntitySummary{EntityID: id},
			ByTicketCategory: map[string]domain.BreakdownEntry{},
			ByPromoCode:      map[string]domain.BreakdownEntry{},
			ByPaymentMethod:  map[string]domain.BreakdownEntry{},
			ByComponent:      map[string]decimal.Decimal{},
		}
		out[id] = r
		return r
	}

	for _, s := range summary {
		entry(s.EntityID).EntitySummary = s
	}
	for _, b := range breakdowns {
		nested := entry(b.EntityID).Breakdown(b.Dimension)
		if nested == nil {
			continue
		}
		existing, ok := nested[b.Key]
		if !ok {
			nested[b.Key] = domain.BreakdownEntry{Label: b.Label, Amounts: b.Amounts}
			continue
		}
		existing.Amounts = addAmounts(existing.Amounts, b.Amounts)
		nested[b.Key] = existing
	}
	for _, c := range components {
		r := entry(c.EntityID)
		r.ByComponent[c.Component] = r.ByComponent[c.Component].Add(c.Amount)
	}
	return out
}

func addAmounts(a, b domain.Amounts) domain.Amounts {
	return domain.Amounts{
		Gross:    a.Gross.Add(b.Gross),
		Net:      a.Net.Add(b.Net),
		Discount: a.Discount.Add(b.Discount),
		Tickets:  a.Tickets + b.Tickets,
		Bookings: a.Bookings + b.Bookings,
	}
}
