package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/facet"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

// Parameter names shared by every report query.
const (
	ParamTenant     = "tenant"
	ParamRangeStart = "range_start"
	ParamRangeEnd   = "range_end"
	ParamSlotNow    = "slot_now"
	ParamCheckedIn  = "checked_in"
)

// ListFacet maps a multi-select facet to the column its values restrict.
type ListFacet struct {
	Facet  domain.FacetName
	Column Column
	// Numeric values are bound as int64.
	Numeric bool
}

// BookingFacets are the multi-select facets of the booking schema.
var BookingFacets = []ListFacet{
	{Facet: domain.FacetEvent, Column: Column{Alias: joingraph.Tickets, Name: "event_id"}, Numeric: true},
	{Facet: domain.FacetVenue, Column: Column{Alias: joingraph.Schedules, Name: "venue_id"}, Numeric: true},
	{Facet: domain.FacetCity, Column: Column{Alias: joingraph.Venues, Name: "city_id"}, Numeric: true},
	{Facet: domain.FacetCategory, Column: Column{Alias: joingraph.Events, Name: "category_id"}, Numeric: true},
	{Facet: domain.FacetTicketType, Column: Column{Alias: joingraph.Tickets, Name: "ticket_type"}},
}

var (
	bookedAt  = Column{Alias: joingraph.Tickets, Name: "booked_at"}
	startsAt  = Column{Alias: joingraph.Schedules, Name: "starts_at"}
	checkedIn = Column{Alias: joingraph.Tickets, Name: "checked_in"}
)

// Builder turns a FilterState into a predicate Set.
type Builder struct {
	dialect sqldialect.Dialect
	facets  []ListFacet
}

func NewBuilder(dialect sqldialect.Dialect, facets []ListFacet) *Builder {
	if facets == nil {
		facets = BookingFacets
	}
	return &Builder{dialect: dialect, facets: facets}
}

// Build compiles the state. tenant is the owner column of the report's top-level entity; its
// predicate comes first and no facet can remove it.
func (b *Builder) Build(state domain.FilterState, tenant Column) (Set, error) {
	if state.TenantID <= 0 {
		return Set{}, domain.NewError(domain.KindMissingTenant, "tenant id is required")
	}

	preds := []Predicate{
		Tenant(tenant, state.TenantID),
		b.DateRange(state.Range),
	}
	for _, f := range b.facets {
		p, ok, err := List(f, state.Selection(f.Facet))
		if err != nil {
			return Set{}, err
		}
		if ok {
			preds = append(preds, p)
		}
	}
	if p, ok := b.SlotStatus(state.Selection(domain.FacetSlotStatus), state); ok {
		preds = append(preds, p)
	}
	if p, ok := CheckedIn(state.Selection(domain.FacetCheckedIn)); ok {
		preds = append(preds, p)
	}
	return NewSet(preds...), nil
}

// Tenant restricts rows to one owner.
func Tenant(col Column, tenantID int64) Predicate {
	return Predicate{
		SQL:     col.Template() + " = @{" + ParamTenant + "}",
		Params:  []NamedParam{{Name: ParamTenant, Value: tenantID}},
		Aliases: []joingraph.Alias{col.Alias},
	}
}

// DateRange restricts booking time to the half-open range.
func (b *Builder) DateRange(r domain.DateRange) Predicate {
	col := bookedAt.Template()
	return Predicate{
		SQL: col + " >= @{" + ParamRangeStart + "} AND " + col + " < @{" + ParamRangeEnd + "}",
		Params: []NamedParam{
			{Name: ParamRangeStart, Value: b.dialect.BindTime(r.Start)},
			{Name: ParamRangeEnd, Value: b.dialect.BindTime(r.End)},
		},
		Aliases: []joingraph.Alias{bookedAt.Alias},
	}
}

// List compiles a multi-select facet. ALL yields no predicate, NONE the unsatisfiable one.
func List(f ListFacet, sel domain.FacetSelection) (Predicate, bool, error) {
	switch sel.Mode() {
	case domain.SelectAll:
		return Predicate{}, false, nil
	case domain.SelectNone:
		return Predicate{SQL: Unsatisfiable}, true, nil
	}

	values := sel.Values()
	placeholders := make([]string, len(values))
	params := make([]NamedParam, len(values))
	for i, v := range values {
		name := fmt.Sprintf("%s_%d", f.Facet, i)
		var bound any = v
		if f.Numeric {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Predicate{}, false, domain.NewError(domain.KindInvalidFacetValue, "facet %s value %q is not an id", f.Facet, v)
			}
			bound = id
		}
		placeholders[i] = "@{" + name + "}"
		params[i] = NamedParam{Name: name, Value: bound}
	}
	return Predicate{
		SQL:     f.Column.Template() + " IN (" + strings.Join(placeholders, ", ") + ")",
		Params:  params,
		Aliases: []joingraph.Alias{f.Column.Alias},
	}, true, nil
}

// SlotStatus compares the schedule start with the request clock. Only a single explicit
// status restricts; NONE matches nothing.
func (b *Builder) SlotStatus(sel domain.FacetSelection, state domain.FilterState) (Predicate, bool) {
	if sel.Mode() == domain.SelectNone {
		return Predicate{SQL: Unsatisfiable}, true
	}
	status, ok := single(sel)
	if !ok {
		return Predicate{}, false
	}
	op := " >= "
	if status == facet.StatusInactive {
		op = " < "
	}
	return Predicate{
		SQL:     startsAt.Template() + op + "@{" + ParamSlotNow + "}",
		Params:  []NamedParam{{Name: ParamSlotNow, Value: b.dialect.BindTime(state.Now)}},
		Aliases: []joingraph.Alias{startsAt.Alias},
	}, true
}

// CheckedIn restricts ticket lines by attendance.
func CheckedIn(sel domain.FacetSelection) (Predicate, bool) {
	if sel.Mode() == domain.SelectNone {
		return Predicate{SQL: Unsatisfiable}, true
	}
	status, ok := single(sel)
	if !ok {
		return Predicate{}, false
	}
	return Predicate{
		SQL:     checkedIn.Template() + " = @{" + ParamCheckedIn + "}",
		Params:  []NamedParam{{Name: ParamCheckedIn, Value: status == facet.CheckedInYes}},
		Aliases: []joingraph.Alias{checkedIn.Alias},
	}, true
}

func single(sel domain.FacetSelection) (string, bool) {
	if sel.Mode() != domain.SelectExplicit {
		return "", false
	}
	values := sel.Values()
	if len(values) != 1 {
		return "", false
	}
	return values[0], true
}
