package querybuild

import (
	"fmt"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/fanout"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

// DefaultPageSize is used when the assembler is configured without one.
const DefaultPageSize = 25

// Parameter names of the detail page window.
const (
	ParamPageLimit  = "page_limit"
	ParamPageOffset = "page_offset"
)

// Scopes of the nested foundation copies.
var (
	componentsScope = joingraph.Nested(1)
	ticketScope     = joingraph.Nested(2)
	commissionScope = joingraph.Nested(3)
)

// Compiled is one ready-to-run statement with named arguments.
type Compiled struct {
	Name string
	SQL  string
	Args predicate.Params
	// Aliases lists the joins of the outer foundation, in plan order.
	Aliases []joingraph.Alias
}

// BreakdownQuery is a compiled breakdown with its dimension.
type BreakdownQuery struct {
	Dimension domain.BreakdownDimension
	Compiled
}

// Family is every query of one report, all compiled from the same filter state.
type Family struct {
	Kind       domain.ReportKind
	Components []string
	Page       int
	PageSize   int

	Summary    Compiled
	Breakdowns []BreakdownQuery
	Revenue    Compiled
	Count      Compiled
	Detail     Compiled
}

// Queries lists every compiled statement in execution order.
func (f Family) Queries() []Compiled {
	out := []Compiled{f.Summary}
	for _, b := range f.Breakdowns {
		out = append(out, b.Compiled)
	}
	return append(out, f.Revenue, f.Count, f.Detail)
}

// Assembler compiles query families.
type Assembler struct {
	registry   *joingraph.Registry
	dialect    sqldialect.Dialect
	builder    *predicate.Builder
	components []string
	pageSize   int
}

// NewAssembler wires the join registry, dialect and configured revenue components.
func NewAssembler(registry *joingraph.Registry, dialect sqldialect.Dialect, components []string, pageSize int) *Assembler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Assembler{
		registry:   registry,
		dialect:    dialect,
		builder:    predicate.NewBuilder(dialect, nil),
		components: append([]string(nil), components...),
		pageSize:   pageSize,
	}
}

// PageSize is the configured detail page size.
func (a *Assembler) PageSize() int { return a.pageSize }

// clampPage keeps (page-1)*pageSize within int so the detail OFFSET never wraps negative.
func (a *Assembler) clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if last := math.MaxInt / a.pageSize; page > last {
		return last
	}
	return page
}

// Foundation resolves the plan for state plus any extra aliases. Plans with a direct
// one-to-many join are rejected.
func (a *Assembler) Foundation(state domain.FilterState, def ReportDefinition, extra ...joingraph.Alias) (*Foundation, error) {
	preds, err := a.builder.Build(state, def.Tenant)
	if err != nil {
		return nil, err
	}
	requested := append(preds.Aliases(), def.Aliases()...)
	requested = append(requested, extra...)
	plan, err := a.registry.Resolve(requested...)
	if err != nil {
		return nil, err
	}
	if err := requireAggregateSafe(plan); err != nil {
		return nil, err
	}
	return &Foundation{def: def, plan: plan, preds: preds}, nil
}

// Assemble compiles the whole family for one report page.
func (a *Assembler) Assemble(state domain.FilterState, kind domain.ReportKind, page int) (Family, error) {
	def, err := Definition(kind)
	if err != nil {
		return Family{}, err
	}
	page = a.clampPage(page)

	fam := Family{Kind: kind, Components: append([]string(nil), a.components...), Page: page, PageSize: a.pageSize}

	base, err := a.Foundation(state, def)
	if err != nil {
		return Family{}, err
	}
	if fam.Summary, err = a.summary(base); err != nil {
		return Family{}, err
	}
	for _, bd := range breakdowns {
		f, err := a.Foundation(state, def, bd.Alias)
		if err != nil {
			return Family{}, err
		}
		q, err := a.breakdown(f, bd)
		if err != nil {
			return Family{}, err
		}
		fam.Breakdowns = append(fam.Breakdowns, BreakdownQuery{Dimension: bd.Dimension, Compiled: q})
	}
	if fam.Revenue, err = a.revenue(base); err != nil {
		return Family{}, err
	}

	// Count and detail share one plan so the total always matches the paged rows.
	detailBase, err := a.Foundation(state, def, joingraph.PaymentMethods)
	if err != nil {
		return Family{}, err
	}
	if fam.Count, err = a.count(detailBase); err != nil {
		return Family{}, err
	}
	if fam.Detail, err = a.detail(detailBase, page); err != nil {
		return Family{}, err
	}
	return fam, nil
}

func amountColumns(s joingraph.Scope) []string {
	tl := s.Alias(joingraph.Tickets)
	return []string{
		"COALESCE(SUM(" + tl + ".gross_amount), 0) AS gross",
		"COALESCE(SUM(" + tl + ".net_amount), 0) AS net",
		"COALESCE(SUM(" + tl + ".gross_amount - " + tl + ".net_amount), 0) AS discount",
		"COALESCE(SUM(" + tl + ".quantity), 0) AS tickets",
		"COUNT(DISTINCT " + tl + ".booking_reference) AS bookings",
	}
}

func (a *Assembler) summary(f *Foundation) (Compiled, error) {
	s := joingraph.Root
	b, params, err := f.Rowset(s)
	if err != nil {
		return Compiled{}, err
	}
	key, name := f.EntityKey(s), f.EntityName(s)
	b = b.Columns(key+" AS entity_id", name+" AS entity_name").
		Columns(amountColumns(s)...).
		GroupBy(key, name).
		OrderBy(key)
	return compile("summary", b, params, f.plan)
}

func (a *Assembler) breakdown(f *Foundation, bd breakdown) (Compiled, error) {
	s := joingraph.Root
	b, params, err := f.Rowset(s)
	if err != nil {
		return Compiled{}, err
	}
	key := f.EntityKey(s)
	dimKey, dimLabel := s.Expand(bd.Key), s.Expand(bd.Label)
	b = b.Columns(
		key+" AS entity_id",
		"COALESCE(CAST("+dimKey+" AS TEXT), '') AS dim_key",
		fmt.Sprintf("COALESCE(%s, '%s') AS dim_label", dimLabel, UnassignedLabel),
	).
		Columns(amountColumns(s)...).
		GroupBy(key, dimKey, dimLabel).
		OrderBy(key, "dim_key")
	return compile("breakdown_"+string(bd.Dimension), b, params, f.plan)
}

// revenue totals commission components per entity over the de-duplicated bookings.
func (a *Assembler) revenue(f *Foundation) (Compiled, error) {
	bookings, params, err := fanout.DistinctBookings(f, joingraph.Root)
	if err != nil {
		return Compiled{}, err
	}
	commissions, inner, err := fanout.CommissionByBooking(f, componentsScope)
	if err != nil {
		return Compiled{}, err
	}
	if err := params.Merge(inner); err != nil {
		return Compiled{}, err
	}
	commissionSQL, err := fanout.Subquery(commissions)
	if err != nil {
		return Compiled{}, err
	}

	cm := componentsScope.Alias(joingraph.Commissions)
	b := sq.Select(
		"fb.entity_id AS entity_id",
		cm+".component AS component",
		"COALESCE(SUM("+cm+".amount), 0) AS amount",
	).
		FromSelect(bookings, "fb").
		JoinClause("JOIN "+commissionSQL+" "+cm+" ON "+cm+".booking_reference = fb.booking_reference").
		GroupBy("fb.entity_id", cm+".component").
		OrderBy("fb.entity_id", cm+".component")
	return compile("components", b, params, f.plan)
}

func (a *Assembler) count(f *Foundation) (Compiled, error) {
	s := joingraph.Root
	b, params, err := f.Rowset(s)
	if err != nil {
		return Compiled{}, err
	}
	b = b.Columns("COUNT(DISTINCT " + s.Alias(joingraph.Tickets) + ".booking_reference) AS total")
	return compile("count", b, params, f.plan)
}

func (a *Assembler) detail(f *Foundation, page int) (Compiled, error) {
	s := joingraph.Root
	tl := s.Alias(joingraph.Tickets)
	pm := s.Alias(joingraph.PaymentMethods)

	rows, params, err := f.Rowset(s)
	if err != nil {
		return Compiled{}, err
	}
	rows = rows.Columns(
		tl+".booking_reference AS booking_reference",
		"MIN("+f.EntityKey(s)+") AS entity_id",
		"MIN("+f.EntityName(s)+") AS entity_name",
		"MAX("+tl+".booked_at) AS booked_at",
		"MIN(COALESCE("+pm+".name, '')) AS payment_method",
	).
		Columns(amountColumns(s)[:4]...).
		GroupBy(tl+".booking_reference").
		OrderBy("MAX("+tl+".booked_at) DESC", tl+".booking_reference DESC").
		Suffix("LIMIT @" + ParamPageLimit + " OFFSET @" + ParamPageOffset)
	if err := params.Add(
		predicate.NamedParam{Name: ParamPageLimit, Value: int64(a.pageSize)},
		predicate.NamedParam{Name: ParamPageOffset, Value: int64((page - 1) * a.pageSize)},
	); err != nil {
		return Compiled{}, err
	}

	tickets, ticketParams, err := fanout.TicketTypeSummary(f, ticketScope, a.dialect)
	if err != nil {
		return Compiled{}, err
	}
	pivot, pivotParams, err := fanout.CommissionPivot(f, commissionScope, a.components)
	if err != nil {
		return Compiled{}, err
	}
	for _, p := range []predicate.Params{ticketParams, pivotParams} {
		if err := params.Merge(p); err != nil {
			return Compiled{}, err
		}
	}
	ticketSQL, err := fanout.Subquery(tickets)
	if err != nil {
		return Compiled{}, err
	}
	pivotSQL, err := fanout.Subquery(pivot)
	if err != nil {
		return Compiled{}, err
	}

	cols := []string{
		"d.booking_reference", "d.entity_id", "d.entity_name", "d.booked_at", "d.payment_method",
		"d.tickets", "d.gross", "d.net", "d.discount",
		"COALESCE(ts.ticket_summary, '') AS ticket_summary",
	}
	for i := range a.components {
		col := fanout.ComponentColumn(i)
		cols = append(cols, "COALESCE(cp."+col+", 0) AS "+col)
	}
	cols = append(cols, "COALESCE(cp.commission_total, 0) AS commission_total")

	b := sq.Select(cols...).
		FromSelect(rows, "d").
		JoinClause("LEFT JOIN "+ticketSQL+" ts ON ts.booking_reference = d.booking_reference").
		JoinClause("LEFT JOIN "+pivotSQL+" cp ON cp.booking_reference = d.booking_reference").
		OrderBy("d.booked_at DESC", "d.booking_reference DESC")
	return compile("detail", b, params, f.plan)
}

func compile(name string, b sq.SelectBuilder, params predicate.Params, plan joingraph.Plan) (Compiled, error) {
	sql, _, err := b.ToSql()
	if err != nil {
		return Compiled{}, fmt.Errorf("compile %s query: %w", name, err)
	}
	return Compiled{
		Name:    name,
		SQL:     strings.TrimSpace(sql),
		Args:    params,
		Aliases: plan.Aliases(),
	}, nil
}
