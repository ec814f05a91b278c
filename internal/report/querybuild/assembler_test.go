package querybuild

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	registry, err := joingraph.NewBookingRegistry()
	require.NoError(t, err)
	return NewAssembler(registry, sqldialect.Postgres(), []string{"convenience_fee", "gst"}, 10)
}

func weekState(facets map[domain.FacetName]domain.FacetSelection) domain.FilterState {
	return domain.FilterState{
		TenantID: 42,
		Range: domain.DateRange{
			Mode:  domain.RangeWeekly,
			Start: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		},
		Facets: facets,
		Now:    time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC),
	}
}

func TestAssemble_DefaultEventsSummaryJoinsOnlyEvents(t *testing.T) {
	fam, err := newAssembler(t).Assemble(weekState(nil), domain.ReportKindEvents, 1)
	require.NoError(t, err)

	assert.Equal(t, []joingraph.Alias{joingraph.Events}, fam.Summary.Aliases)
	assert.Equal(t, fam.Summary.Aliases, fam.Revenue.Aliases)
}

func TestAssemble_BreakdownsAddExactlyOneAlias(t *testing.T) {
	fam, err := newAssembler(t).Assemble(weekState(map[domain.FacetName]domain.FacetSelection{
		domain.FacetCity: domain.SelectValues("3"),
	}), domain.ReportKindEvents, 1)
	require.NoError(t, err)

	summary := fam.Summary.Aliases
	assert.Equal(t, []joingraph.Alias{joingraph.Events, joingraph.Schedules, joingraph.Venues}, summary)

	want := map[domain.BreakdownDimension]joingraph.Alias{
		domain.BreakdownTicketCategory: joingraph.TicketCategories,
		domain.BreakdownPromoCode:      joingraph.PromoCodes,
		domain.BreakdownPaymentMethod:  joingraph.PaymentMethods,
	}
	require.Len(t, fam.Breakdowns, len(want))
	for _, bd := range fam.Breakdowns {
		assert.Len(t, bd.Aliases, len(summary)+1, bd.Name)
		assert.Subset(t, bd.Aliases, summary, bd.Name)
		assert.Contains(t, bd.Aliases, want[bd.Dimension], bd.Name)
	}
}

func TestAssemble_VenuesReportJoinsScheduleThenVenue(t *testing.T) {
	fam, err := newAssembler(t).Assemble(weekState(nil), domain.ReportKindVenues, 1)
	require.NoError(t, err)

	assert.Equal(t, []joingraph.Alias{joingraph.Schedules, joingraph.Venues}, fam.Summary.Aliases)
	assert.Contains(t, fam.Summary.SQL, "ven.owner_id = @tenant")
	assert.Contains(t, fam.Summary.SQL, "GROUP BY sch.venue_id, ven.name")
}

func TestAssemble_EveryQuerySharesTheRootFilter(t *testing.T) {
	state := weekState(map[domain.FacetName]domain.FacetSelection{
		domain.FacetEvent:      domain.SelectValues("5", "7"),
		domain.FacetTicketType: domain.SelectValues("VIP"),
	})
	a := newAssembler(t)

	set, err := predicate.NewBuilder(sqldialect.Postgres(), nil).Build(state, predicate.Column{Alias: joingraph.Events, Name: "owner_id"})
	require.NoError(t, err)
	where, params, err := set.Where(joingraph.Root)
	require.NoError(t, err)

	fam, err := a.Assemble(state, domain.ReportKindEvents, 1)
	require.NoError(t, err)
	for _, q := range fam.Queries() {
		assert.Contains(t, q.SQL, "WHERE "+where, q.Name)
		for name, value := range params {
			assert.Equal(t, value, q.Args[name], "%s: %s", q.Name, name)
		}
	}
}

func TestAssemble_CountAndDetailSharePlan(t *testing.T) {
	fam, err := newAssembler(t).Assemble(weekState(nil), domain.ReportKindEvents, 2)
	require.NoError(t, err)

	assert.Equal(t, fam.Count.Aliases, fam.Detail.Aliases)
	assert.Contains(t, fam.Count.Aliases, joingraph.PaymentMethods)
	assert.Contains(t, fam.Count.SQL, "COUNT(DISTINCT tl.booking_reference)")

	assert.Contains(t, fam.Detail.SQL, "LIMIT @page_limit OFFSET @page_offset")
	assert.Equal(t, int64(10), fam.Detail.Args[ParamPageLimit])
	assert.Equal(t, int64(10), fam.Detail.Args[ParamPageOffset])
	assert.Contains(t, fam.Detail.SQL, "ORDER BY d.booked_at DESC, d.booking_reference DESC")
}

func TestAssemble_HugePageKeepsOffsetNonNegative(t *testing.T) {
	a := newAssembler(t)

	for _, page := range []int{368934881474191034, math.MaxInt} {
		fam, err := a.Assemble(weekState(nil), domain.ReportKindEvents, page)
		require.NoError(t, err)

		offset, ok := fam.Detail.Args[ParamPageOffset].(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, offset, int64(0), "page %d", page)
		assert.Equal(t, int64(fam.Page-1)*10, offset)
	}

	fam, err := a.Assemble(weekState(nil), domain.ReportKindEvents, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/10, fam.Page)
}

func TestAssemble_NestedCopiesUseOwnNamespaces(t *testing.T) {
	fam, err := newAssembler(t).Assemble(weekState(map[domain.FacetName]domain.FacetSelection{
		domain.FacetEvent: domain.SelectValues("5"),
	}), domain.ReportKindEvents, 1)
	require.NoError(t, err)

	assert.Contains(t, fam.Revenue.SQL, "n1_tl.event_id IN (@n1_event_0)")
	assert.Contains(t, fam.Revenue.SQL, "n1_tl.booking_reference = n1_cm.booking_reference")
	assert.Equal(t, int64(5), fam.Revenue.Args["n1_event_0"])

	assert.Contains(t, fam.Detail.SQL, "n2_tl.event_id IN (@n2_event_0)")
	assert.Contains(t, fam.Detail.SQL, "n3_tl.event_id IN (@n3_event_0)")
	assert.Equal(t, "convenience_fee", fam.Detail.Args["component_0"])
	assert.Equal(t, "gst", fam.Detail.Args["component_1"])
	assert.Contains(t, fam.Detail.SQL, "STRING_AGG(")
}

func TestAssemble_IsDeterministic(t *testing.T) {
	state := weekState(map[domain.FacetName]domain.FacetSelection{
		domain.FacetVenue:      domain.SelectValues("9", "2"),
		domain.FacetSlotStatus: domain.SelectValues("active"),
	})
	a := newAssembler(t)

	first, err := a.Assemble(state, domain.ReportKindVenues, 1)
	require.NoError(t, err)
	second, err := a.Assemble(state, domain.ReportKindVenues, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFoundation_RejectsFanOutJoin(t *testing.T) {
	a := newAssembler(t)
	def, err := Definition(domain.ReportKindEvents)
	require.NoError(t, err)

	_, err = a.Foundation(weekState(nil), def, joingraph.Commissions)
	assert.ErrorIs(t, err, domain.ErrFanoutJoin)
}

func TestAssemble_UnknownKind(t *testing.T) {
	_, err := newAssembler(t).Assemble(weekState(nil), domain.ReportKind("cities"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidReport)
}
