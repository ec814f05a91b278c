// Package querybuild assembles the report query family from one filter state so that the
// summary, breakdowns, components, count and detail share identical filtering.
package querybuild

import (
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
)

// ReportDefinition describes the top-level entity of a report.
type ReportDefinition struct {
	Kind domain.ReportKind
	// Tenant is the owner column the tenant predicate is applied to.
	Tenant predicate.Column
	Key    predicate.Column
	Name   predicate.Column
}

// Aliases the definition itself needs joined.
func (d ReportDefinition) Aliases() []joingraph.Alias {
	return []joingraph.Alias{d.Tenant.Alias, d.Key.Alias, d.Name.Alias}
}

var definitions = map[domain.ReportKind]ReportDefinition{
	domain.ReportKindEvents: {
		Kind:   domain.ReportKindEvents,
		Tenant: predicate.Column{Alias: joingraph.Events, Name: "owner_id"},
		Key:    predicate.Column{Alias: joingraph.Tickets, Name: "event_id"},
		Name:   predicate.Column{Alias: joingraph.Events, Name: "title"},
	},
	domain.ReportKindVenues: {
		Kind:   domain.ReportKindVenues,
		Tenant: predicate.Column{Alias: joingraph.Venues, Name: "owner_id"},
		Key:    predicate.Column{Alias: joingraph.Schedules, Name: "venue_id"},
		Name:   predicate.Column{Alias: joingraph.Venues, Name: "name"},
	},
}

// Definition returns the definition for kind.
func Definition(kind domain.ReportKind) (ReportDefinition, error) {
	def, ok := definitions[kind]
	if !ok {
		return ReportDefinition{}, domain.NewError(domain.KindInvalidReport, "unknown report kind %q", kind)
	}
	return def, nil
}

// breakdown describes the single extra alias a breakdown query joins.
type breakdown struct {
	Dimension domain.BreakdownDimension
	Alias     joingraph.Alias
	Key       string
	Label     string
}

var breakdowns = []breakdown{
	{Dimension: domain.BreakdownTicketCategory, Alias: joingraph.TicketCategories, Key: "{tc}.id", Label: "{tc}.name"},
	{Dimension: domain.BreakdownPromoCode, Alias: joingraph.PromoCodes, Key: "{pc}.id", Label: "{pc}.code"},
	{Dimension: domain.BreakdownPaymentMethod, Alias: joingraph.PaymentMethods, Key: "{pm}.id", Label: "{pm}.name"},
}

// UnassignedLabel labels breakdown rows whose optional relation is missing.
const UnassignedLabel = "Unassigned"
