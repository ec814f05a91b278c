package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BreakdownDimension names a secondary grouping under each top-level entity.
type BreakdownDimension string

const (
	BreakdownTicketCategory BreakdownDimension = "ticket_category"
	BreakdownPromoCode      BreakdownDimension = "promo_code"
	BreakdownPaymentMethod  BreakdownDimension = "payment_method"
)

// BreakdownDimensions lists the per-dimension breakdowns in report order.
var BreakdownDimensions = []BreakdownDimension{
	BreakdownTicketCategory,
	BreakdownPromoCode,
	BreakdownPaymentMethod,
}

// Amounts are the aggregates shared by summary and breakdown rows.
type Amounts struct {
	Gross    decimal.Decimal `json:"gross"`
	Net      decimal.Decimal `json:"net"`
	Discount decimal.Decimal `json:"discount"`
	Tickets  int64           `json:"tickets"`
	Bookings int64           `json:"bookings"`
}

// EntitySummary is one row of the summary query.
type EntitySummary struct {
	EntityID   int64  `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Amounts
}

// BreakdownRow is one (entity, dimension value) row of a breakdown query.
type BreakdownRow struct {
	EntityID  int64              `json:"entity_id"`
	Dimension BreakdownDimension `json:"dimension"`
	Key       string             `json:"key"`
	Label     string             `json:"label"`
	Amounts
}

// ComponentRow is one (entity, revenue component) total.
type ComponentRow struct {
	EntityID  int64           `json:"entity_id"`
	Component string          `json:"component"`
	Amount    decimal.Decimal `json:"amount"`
}

// BreakdownEntry is a breakdown row as nested under its entity.
type BreakdownEntry struct {
	Label string `json:"label"`
	Amounts
}

// EntityReport is a summary row with its nested breakdowns.
type EntityReport struct {
	EntitySummary
	ByTicketCategory map[string]BreakdownEntry  `json:"by_ticket_category"`
	ByPromoCode      map[string]BreakdownEntry  `json:"by_promo_code"`
	ByPaymentMethod  map[string]BreakdownEntry  `json:"by_payment_method"`
	ByComponent      map[string]decimal.Decimal `json:"by_component"`
}

// Breakdown returns the nested map for a dimension.
func (r *EntityReport) Breakdown(dim BreakdownDimension) map[string]BreakdownEntry {
	switch dim {
	case BreakdownTicketCategory:
		return r.ByTicketCategory
	case BreakdownPromoCode:
		return r.ByPromoCode
	case BreakdownPaymentMethod:
		return r.ByPaymentMethod
	}
	return nil
}

// DetailRow is one booking reference on the paginated detail page.
type DetailRow struct {
	BookingReference string                     `json:"booking_reference"`
	EntityID         int64                      `json:"entity_id"`
	EntityName       string                     `json:"entity_name"`
	BookedAt         time.Time                  `json:"booked_at"`
	PaymentMethod    string                     `json:"payment_method"`
	Tickets          int64                      `json:"tickets"`
	Gross            decimal.Decimal            `json:"gross"`
	Net              decimal.Decimal            `json:"net"`
	Discount         decimal.Decimal            `json:"discount"`
	TicketSummary    string                     `json:"ticket_summary"`
	Components       map[string]decimal.Decimal `json:"components"`
	CommissionTotal  decimal.Decimal            `json:"commission_total"`
}

// FilterUsed reports the filter that was actually applied, including date fallbacks.
type FilterUsed struct {
	TenantID int64                    `json:"tenant_id"`
	Range    DateRange                `json:"range"`
	Facets   map[FacetName]FacetUsage `json:"facets"`
}

// FacetUsage is the JSON view of a FacetSelection.
type FacetUsage struct {
	Mode   string   `json:"mode"`
	Values []string `json:"values,omitempty"`
}

// Report is the structured result handed to presentation.
type Report struct {
	ID       uuid.UUID               `json:"id"`
	Kind     ReportKind              `json:"kind"`
	Filter   FilterUsed              `json:"filter"`
	Summary  map[int64]*EntityReport `json:"summary"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Rows     []DetailRow             `json:"rows"`
	// Components lists the commission components pivoted into each row, in column order.
	Components []string `json:"components"`
}

// NewFilterUsed snapshots a FilterState for reporting back to the caller.
func NewFilterUsed(state FilterState) FilterUsed {
	used := FilterUsed{
		TenantID: state.TenantID,
		Range:    state.Range,
		Facets:   make(map[FacetName]FacetUsage, len(state.Facets)),
	}
	for name, sel := range state.Facets {
		used.Facets[name] = FacetUsage{Mode: sel.Mode().String(), Values: sel.Values()}
	}
	return used
}
