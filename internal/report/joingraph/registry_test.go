package joingraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

func bookingRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewBookingRegistry()
	require.NoError(t, err)
	return reg
}

func TestResolve_DependenciesComeFirst(t *testing.T) {
	reg := bookingRegistry(t)

	plan, err := reg.Resolve(Cities)
	require.NoError(t, err)
	assert.Equal(t, []Alias{Schedules, Venues, Cities}, plan.Aliases())

	plan, err = reg.Resolve(Categories, Cities)
	require.NoError(t, err)
	assert.Equal(t, []Alias{Events, Schedules, Venues, Cities, Categories}, plan.Aliases())
}

func TestResolve_IdempotentAndOrderIndependent(t *testing.T) {
	reg := bookingRegistry(t)

	first, err := reg.Resolve(PromoCodes, Cities, Events, TicketCategories)
	require.NoError(t, err)
	second, err := reg.Resolve(TicketCategories, Events, Cities, PromoCodes, Cities, Venues)
	require.NoError(t, err)
	again, err := reg.Resolve(PromoCodes, Cities, Events, TicketCategories)
	require.NoError(t, err)

	assert.Equal(t, first.Aliases(), second.Aliases())
	assert.Equal(t, first.Aliases(), again.Aliases())
	assert.Equal(t, first.Clauses(Root), second.Clauses(Root))
}

func TestResolve_NoAliasTwice(t *testing.T) {
	reg := bookingRegistry(t)

	plan, err := reg.Resolve(Venues, Venues, Schedules, Cities, Tickets)
	require.NoError(t, err)

	seen := map[Alias]bool{}
	for _, a := range plan.Aliases() {
		assert.False(t, seen[a], "alias %s repeated", a)
		seen[a] = true
	}
	assert.True(t, plan.Has(Tickets))
	assert.False(t, plan.Has(Events))
}

func TestResolve_EmptyRequest(t *testing.T) {
	reg := bookingRegistry(t)

	plan, err := reg.Resolve()
	require.NoError(t, err)
	assert.Empty(t, plan.Joins)
	assert.Equal(t, "ticket_lines tl", plan.From(Root))
}

func TestResolve_UnknownAlias(t *testing.T) {
	reg := bookingRegistry(t)

	_, err := reg.Resolve(Events, Alias("seat_map"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownAlias)
}

func TestNewRegistry_RejectsCycle(t *testing.T) {
	nodes := []Node{
		{Alias: "a", Table: "ta", On: "{a}.id = {tl}.a_id", DependsOn: []Alias{"c"}},
		{Alias: "b", Table: "tb", On: "{b}.id = {a}.b_id", DependsOn: []Alias{"a"}},
		{Alias: "c", Table: "tc", On: "{c}.id = {b}.c_id", DependsOn: []Alias{"b"}},
	}

	reg, err := NewRegistry(Tickets, "ticket_lines", nodes, nil)
	require.Error(t, err)
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
	assert.Contains(t, err.Error(), "a -> c -> b -> a")
}

func TestNewRegistry_RejectsSelfDependency(t *testing.T) {
	nodes := []Node{{Alias: "a", Table: "ta", On: "{a}.id = {tl}.a_id", DependsOn: []Alias{"a"}}}

	_, err := NewRegistry(Tickets, "ticket_lines", nodes, nil)
	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
}

func TestNewRegistry_RejectsUnknownDependency(t *testing.T) {
	nodes := []Node{{Alias: "a", Table: "ta", On: "{a}.id = {x}.a_id", DependsOn: []Alias{"x"}}}

	_, err := NewRegistry(Tickets, "ticket_lines", nodes, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAlias)
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	nodes := []Node{
		{Alias: "a", Table: "ta", On: "{a}.id = {tl}.a_id"},
		{Alias: "a", Table: "tb", On: "{a}.id = {tl}.b_id"},
	}
	_, err := NewRegistry(Tickets, "ticket_lines", nodes, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidReport)

	_, err = NewRegistry(Tickets, "ticket_lines", nodes[:1], []Alias{"a", "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidReport)
}

func TestNewRegistry_UnlistedAliasesRankLast(t *testing.T) {
	nodes := []Node{
		{Alias: "z", Table: "tz", On: "{z}.id = {tl}.z_id"},
		{Alias: "b", Table: "tb", On: "{b}.id = {tl}.b_id"},
		{Alias: "a", Table: "ta", On: "{a}.id = {tl}.a_id"},
	}
	reg, err := NewRegistry(Tickets, "ticket_lines", nodes, []Alias{"z"})
	require.NoError(t, err)

	plan, err := reg.Resolve("a", "b", "z")
	require.NoError(t, err)
	assert.Equal(t, []Alias{"z", "a", "b"}, plan.Aliases())
}

func TestPlan_ClausesAndFanOut(t *testing.T) {
	reg := bookingRegistry(t)

	plan, err := reg.Resolve(Venues, Commissions)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"JOIN schedules sch ON sch.id = tl.schedule_id",
		"JOIN venues ven ON ven.id = sch.venue_id",
		"LEFT JOIN commission_lines cm ON cm.booking_reference = tl.booking_reference",
	}, plan.Clauses(Root))
	assert.Equal(t, []Alias{Commissions}, plan.FanOut())

	assert.Equal(t, []string{
		"JOIN schedules n2_sch ON n2_sch.id = n2_tl.schedule_id",
		"JOIN venues n2_ven ON n2_ven.id = n2_sch.venue_id",
		"LEFT JOIN commission_lines n2_cm ON n2_cm.booking_reference = n2_tl.booking_reference",
	}, plan.Clauses(Nested(2)))
	assert.Equal(t, "ticket_lines n2_tl", plan.From(Nested(2)))
}

func TestScope_Expand(t *testing.T) {
	s := Nested(1)
	assert.Equal(t, "n1_tl.event_id IN (@n1_event_0, @n1_event_1)", s.Expand("{tl}.event_id IN (@{event_0}, @{event_1})"))
	assert.Equal(t, "tl.event_id = @event_0", Root.Expand("{tl}.event_id = @{event_0}"))
	assert.Equal(t, "1 = 0", s.Expand("1 = 0"))
	assert.Equal(t, "broken {tl", s.Expand("broken {tl"))
}
