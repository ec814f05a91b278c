// Package fanout builds the subqueries that keep one-to-many relations (commission lines,
// multiple ticket lines per booking) from multiplying aggregates, and merges the per-entity
// result rows into nested reports.
package fanout

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

// CommissionTable holds one row per (booking reference, revenue component) charge.
const CommissionTable = "commission_lines"

// Source is a filtered ticket-line row set that can be rendered in any scope.
type Source interface {
	// Rowset returns a column-less SELECT with FROM, joins and WHERE applied.
	Rowset(s joingraph.Scope) (sq.SelectBuilder, predicate.Params, error)
	// EntityKey is the entity id expression.
	EntityKey(s joingraph.Scope) string
}

func bookingRef(s joingraph.Scope) string {
	return s.Alias(joingraph.Tickets) + ".booking_reference"
}

// DistinctBookings selects each booking of the source once, attributed to its lowest entity id
// as on the detail page.
func DistinctBookings(src Source, s joingraph.Scope) (sq.SelectBuilder, predicate.Params, error) {
	b, params, err := src.Rowset(s)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}
	return b.Columns(
		bookingRef(s)+" AS booking_reference",
		"MIN("+src.EntityKey(s)+") AS entity_id",
	).GroupBy(bookingRef(s)), params, nil
}

// CommissionByBooking sums commission lines per (booking_reference, component). The commission
// table is aggregated on its own and restricted through a correlated EXISTS over the source
// rendered in scope inner, so the number of ticket lines per booking never multiplies amounts.
func CommissionByBooking(src Source, inner joingraph.Scope) (sq.SelectBuilder, predicate.Params, error) {
	cm := inner.Alias(joingraph.Commissions)

	exists, params, err := src.Rowset(inner)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}
	existsSQL, _, err := exists.Columns("1").Where(bookingRef(inner) + " = " + cm + ".booking_reference").ToSql()
	if err != nil {
		return sq.SelectBuilder{}, nil, fmt.Errorf("build commission restriction: %w", err)
	}

	return sq.Select(
		cm+".booking_reference AS booking_reference",
		cm+".component AS component",
		"SUM("+cm+".amount) AS amount",
	).
		From(CommissionTable+" "+cm).
		Where("EXISTS ("+existsSQL+")").
		GroupBy(cm+".booking_reference", cm+".component"), params, nil
}

// TicketTypeSummary renders one "type (qty), type (qty)" string per booking. Quantities are
// summed per (booking_reference, ticket_type) first, then concatenated.
func TicketTypeSummary(src Source, s joingraph.Scope, dialect sqldialect.Dialect) (sq.SelectBuilder, predicate.Params, error) {
	tl := s.Alias(joingraph.Tickets)

	counts, params, err := src.Rowset(s)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}
	counts = counts.Columns(
		tl+".booking_reference AS booking_reference",
		tl+".ticket_type AS ticket_type",
		"SUM("+tl+".quantity) AS qty",
	).GroupBy(tl+".booking_reference", tl+".ticket_type")

	label := "tt.ticket_type || ' (' || CAST(tt.qty AS TEXT) || ')'"
	return sq.Select(
		"tt.booking_reference AS booking_reference",
		dialect.StringAgg(label, ", ", "tt.ticket_type")+" AS ticket_summary",
	).
		FromSelect(counts, "tt").
		GroupBy("tt.booking_reference"), params, nil
}

// ComponentColumn is the pivot column holding the i-th configured component.
func ComponentColumn(i int) string { return fmt.Sprintf("component_%d", i) }

// ComponentParam is the parameter binding the i-th configured component name.
func ComponentParam(i int) string { return fmt.Sprintf("component_%d", i) }

// CommissionPivot turns per-booking commission rows into one row per booking with a column per
// configured component plus the total over every component.
func CommissionPivot(src Source, inner joingraph.Scope, components []string) (sq.SelectBuilder, predicate.Params, error) {
	byBooking, params, err := CommissionByBooking(src, inner)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}

	cols := []string{"c.booking_reference AS booking_reference"}
	for i, name := range components {
		if err := params.Add(predicate.NamedParam{Name: ComponentParam(i), Value: name}); err != nil {
			return sq.SelectBuilder{}, nil, err
		}
		cols = append(cols, fmt.Sprintf(
			"COALESCE(SUM(CASE WHEN c.component = @%s THEN c.amount END), 0) AS %s",
			ComponentParam(i), ComponentColumn(i)))
	}
	cols = append(cols, "COALESCE(SUM(c.amount), 0) AS commission_total")

	return sq.Select(cols...).FromSelect(byBooking, "c").GroupBy("c.booking_reference"), params, nil
}

// Subquery renders b as a parenthesized subquery. Values are bound by name, so the positional
// args squirrel returns are always empty.
func Subquery(b sq.SelectBuilder) (string, error) {
	sql, _, err := b.ToSql()
	if err != nil {
		return "", err
	}
	return "(" + strings.TrimSpace(sql) + ")", nil
}
