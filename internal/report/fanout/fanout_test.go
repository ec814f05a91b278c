package fanout

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

// stubSource filters ticket lines by tenant only.
type stubSource struct{}

func (stubSource) Rowset(s joingraph.Scope) (sq.SelectBuilder, predicate.Params, error) {
	set := predicate.NewSet(predicate.Tenant(predicate.Column{Alias: joingraph.Events, Name: "owner_id"}, 7))
	where, params, err := set.Where(s)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}
	return sq.Select().
		From("ticket_lines " + s.Alias(joingraph.Tickets)).
		JoinClause("JOIN events " + s.Alias(joingraph.Events) + " ON " + s.Expand("{ev}.id = {tl}.event_id")).
		Where(where), params, nil
}

func (stubSource) EntityKey(s joingraph.Scope) string {
	return s.Alias(joingraph.Tickets) + ".event_id"
}

func TestDistinctBookings(t *testing.T) {
	b, params, err := DistinctBookings(stubSource{}, joingraph.Root)
	require.NoError(t, err)

	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT tl.booking_reference AS booking_reference, MIN(tl.event_id) AS entity_id "+
			"FROM ticket_lines tl JOIN events ev ON ev.id = tl.event_id WHERE ev.owner_id = @tenant "+
			"GROUP BY tl.booking_reference",
		sql)
	assert.Equal(t, predicate.Params{"tenant": int64(7)}, params)
}

func TestCommissionByBooking_CorrelatesNestedScope(t *testing.T) {
	b, params, err := CommissionByBooking(stubSource{}, joingraph.Nested(1))
	require.NoError(t, err)

	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT n1_cm.booking_reference AS booking_reference, n1_cm.component AS component, SUM(n1_cm.amount) AS amount "+
			"FROM commission_lines n1_cm WHERE EXISTS (SELECT 1 FROM ticket_lines n1_tl JOIN events n1_ev ON n1_ev.id = n1_tl.event_id "+
			"WHERE n1_ev.owner_id = @n1_tenant AND n1_tl.booking_reference = n1_cm.booking_reference) "+
			"GROUP BY n1_cm.booking_reference, n1_cm.component",
		sql)
	assert.Equal(t, predicate.Params{"n1_tenant": int64(7)}, params)
}

func TestTicketTypeSummary_UsesDialectAggregate(t *testing.T) {
	pg, _, err := TicketTypeSummary(stubSource{}, joingraph.Nested(2), sqldialect.Postgres())
	require.NoError(t, err)
	pgSQL, _, err := pg.ToSql()
	require.NoError(t, err)
	assert.Contains(t, pgSQL, "STRING_AGG(tt.ticket_type || ' (' || CAST(tt.qty AS TEXT) || ')', ', ' ORDER BY tt.ticket_type)")
	assert.Contains(t, pgSQL, "GROUP BY n2_tl.booking_reference, n2_tl.ticket_type")

	lite, _, err := TicketTypeSummary(stubSource{}, joingraph.Nested(2), sqldialect.SQLite())
	require.NoError(t, err)
	liteSQL, _, err := lite.ToSql()
	require.NoError(t, err)
	assert.Contains(t, liteSQL, "GROUP_CONCAT(")
}

func TestCommissionPivot_BindsComponentNames(t *testing.T) {
	b, params, err := CommissionPivot(stubSource{}, joingraph.Nested(3), []string{"gst", "convenience_fee"})
	require.NoError(t, err)

	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "SUM(CASE WHEN c.component = @component_0 THEN c.amount END), 0) AS component_0")
	assert.Contains(t, sql, "AS component_1")
	assert.Contains(t, sql, "COALESCE(SUM(c.amount), 0) AS commission_total")
	assert.Equal(t, "gst", params["component_0"])
	assert.Equal(t, "convenience_fee", params["component_1"])
	assert.Equal(t, int64(7), params["n3_tenant"])
}

func TestMerge_NestsBreakdownsAndComponents(t *testing.T) {
	d := decimal.RequireFromString
	summary := []domain.EntitySummary{
		{EntityID: 1, EntityName: "Concert", Amounts: domain.Amounts{Gross: d("300"), Net: d("270"), Discount: d("30"), Tickets: 3, Bookings: 2}},
		{EntityID: 2, EntityName: "Play", Amounts: domain.Amounts{Gross: d("50"), Net: d("50"), Tickets: 1, Bookings: 1}},
	}
	breakdowns := []domain.BreakdownRow{
		{EntityID: 1, Dimension: domain.BreakdownTicketCategory, Key: "10", Label: "Gold", Amounts: domain.Amounts{Gross: d("200"), Tickets: 2}},
		{EntityID: 1, Dimension: domain.BreakdownTicketCategory, Key: "11", Label: "Silver", Amounts: domain.Amounts{Gross: d("100"), Tickets: 1}},
		{EntityID: 2, Dimension: domain.BreakdownPaymentMethod, Key: "", Label: "Unassigned", Amounts: domain.Amounts{Gross: d("50"), Tickets: 1}},
	}
	components := []domain.ComponentRow{
		{EntityID: 1, Component: "gst", Amount: d("18")},
		{EntityID: 1, Component: "convenience_fee", Amount: d("5")},
	}

	out := Merge(summary, breakdowns, components)
	require.Len(t, out, 2)

	concert := out[1]
	assert.Equal(t, "Concert", concert.EntityName)
	assert.Len(t, concert.ByTicketCategory, 2)
	assert.Equal(t, "Gold", concert.ByTicketCategory["10"].Label)
	assert.True(t, d("18").Equal(concert.ByComponent["gst"]))
	assert.Empty(t, concert.ByPromoCode)

	play := out[2]
	assert.Equal(t, "Unassigned", play.ByPaymentMethod[""].Label)
	assert.Empty(t, play.ByComponent)
}

func TestMerge_KeepsRowsForUnknownEntities(t *testing.T) {
	out := Merge(nil, nil, []domain.ComponentRow{{EntityID: 9, Component: "gst", Amount: decimal.NewFromInt(4)}})

	require.Contains(t, out, int64(9))
	assert.True(t, decimal.NewFromInt(4).Equal(out[9].ByComponent["gst"]))
}
