package joingraph

// BookingNodes is the join graph of the booking schema, rooted at ticket lines.
func BookingNodes() []Node {
	return []Node{
		{Alias: Schedules, Table: "schedules", On: "{sch}.id = {tl}.schedule_id", Kind: Inner},
		{Alias: Events, Table: "events", On: "{ev}.id = {tl}.event_id", Kind: Inner},
		{Alias: Venues, Table: "venues", On: "{ven}.id = {sch}.venue_id", DependsOn: []Alias{Schedules}, Kind: Inner},
		{Alias: Cities, Table: "cities", On: "{cty}.id = {ven}.city_id", DependsOn: []Alias{Venues}, Kind: Inner},
		{Alias: Categories, Table: "categories", On: "{cat}.id = {ev}.category_id", DependsOn: []Alias{Events}, Kind: Inner},
		{Alias: TicketCategories, Table: "ticket_categories", On: "{tc}.id = {tl}.ticket_category_id", Kind: Left},
		{Alias: PromoCodes, Table: "promo_codes", On: "{pc}.id = {tl}.promo_code_id", Kind: Left},
		{Alias: PaymentMethods, Table: "payment_methods", On: "{pm}.id = {tl}.payment_method_id", Kind: Left},
		{Alias: Commissions, Table: "commission_lines", On: "{cm}.booking_reference = {tl}.booking_reference", Kind: Left, FanOut: true},
	}
}

// BookingPriority orders independent aliases in resolved plans.
var BookingPriority = []Alias{
	Events, Schedules, Venues, Cities, Categories, TicketCategories, PromoCodes, PaymentMethods, Commissions,
}

// NewBookingRegistry builds and validates the booking join graph.
func NewBookingRegistry() (*Registry, error) {
	return NewRegistry(Tickets, "ticket_lines", BookingNodes(), BookingPriority)
}
