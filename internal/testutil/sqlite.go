// Package testutil seeds an in-memory SQLite booking store for tests that execute compiled
// report queries end to end.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
)

// Clock is the fixed "now" of the standard scenario: Wednesday 2026-10-14 15:00 UTC.
var Clock = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

// NewSQLite opens an in-memory store with the booking schema applied.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.ApplySQLiteSchema(ctx, sqlDB))
	return sqlDB
}

// Store inserts fixture rows.
type Store struct {
	t  testing.TB
	db *sql.DB
}

func NewStore(t testing.TB, sqlDB *sql.DB) *Store {
	return &Store{t: t, db: sqlDB}
}

func (s *Store) exec(query string, args ...any) {
	s.t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(s.t, err, query)
}

func stamp(t time.Time) string { return t.UTC().Format(sqldialect.SQLiteTimeLayout) }

func (s *Store) City(id int64, name string) {
	s.exec("INSERT INTO cities (id, name) VALUES (?, ?)", id, name)
}

func (s *Store) Category(id int64, name string) {
	s.exec("INSERT INTO categories (id, name) VALUES (?, ?)", id, name)
}

func (s *Store) Event(id, owner, category int64, title string) {
	s.exec("INSERT INTO events (id, owner_id, category_id, title) VALUES (?, ?, ?, ?)", id, owner, category, title)
}

func (s *Store) Venue(id, owner, city int64, name string) {
	s.exec("INSERT INTO venues (id, owner_id, city_id, name) VALUES (?, ?, ?, ?)", id, owner, city, name)
}

func (s *Store) Schedule(id, event, venue int64, startsAt time.Time) {
	s.exec("INSERT INTO schedules (id, event_id, venue_id, starts_at) VALUES (?, ?, ?, ?)", id, event, venue, stamp(startsAt))
}

func (s *Store) TicketCategory(id, event int64, name string) {
	s.exec("INSERT INTO ticket_categories (id, event_id, name) VALUES (?, ?, ?)", id, event, name)
}

func (s *Store) PromoCode(id, owner int64, code string) {
	s.exec("INSERT INTO promo_codes (id, owner_id, code) VALUES (?, ?, ?)", id, owner, code)
}

func (s *Store) PaymentMethod(id int64, name string) {
	s.exec("INSERT INTO payment_methods (id, name) VALUES (?, ?)", id, name)
}

// Line is one ticket line. Zero optional ids are stored as NULL.
type Line struct {
	Booking        string
	Event          int64
	Schedule       int64
	TicketCategory int64
	TicketType     string
	Quantity       int
	Gross          string
	Net            string
	PromoCode      int64
	PaymentMethod  int64
	CheckedIn      bool
	BookedAt       time.Time
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func (s *Store) Line(l Line) {
	checked := 0
	if l.CheckedIn {
		checked = 1
	}
	s.exec(`INSERT INTO ticket_lines (booking_reference, event_id, schedule_id, ticket_category_id, ticket_type,
		quantity, gross_amount, net_amount, promo_code_id, payment_method_id, checked_in, booked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Booking, l.Event, l.Schedule, nullID(l.TicketCategory), l.TicketType,
		l.Quantity, l.Gross, l.Net, nullID(l.PromoCode), nullID(l.PaymentMethod), checked, stamp(l.BookedAt))
}

func (s *Store) Commission(booking, component, amount string) {
	s.exec("INSERT INTO commission_lines (booking_reference, component, amount) VALUES (?, ?, ?)", booking, component, amount)
}

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, time.UTC)
}

// SeedStandard loads the shared scenario:
//
//	tenant 1: Concert (event 1, Music) at Arena (venue 1, Mumbai), upcoming
//	          Play (event 2, Theatre) at Hall (venue 2, Pune), already started
//	tenant 2: Rival Show (event 3) at Rival Venue (venue 3)
//
// Bookings in the current week (2026-10-12 .. 2026-10-18):
//
//	B1 Concert: VIP x2 (Gold, 200/180, promo, Card, checked in) + Regular x1 (Silver, 50/50, Card)
//	B2 Concert: VIP x1 (Gold, 100/100, UPI)
//	B3 Play:    Regular x3 (Stalls, 150/135, no payment method, checked in)
//	B5 Rival:   VIP x1 (500/500, Card), tenant 2
//
// B4 (Concert, 40/40) was booked the week before. Commission:
// B1 convenience_fee 10 + gst 1.75, B2 convenience_fee 5, B3 convenience_fee 7.5 + gst 2.25,
// B4 convenience_fee 4, B5 convenience_fee 20.
func SeedStandard(t testing.TB, sqlDB *sql.DB) {
	t.Helper()
	s := NewStore(t, sqlDB)

	s.City(1, "Mumbai")
	s.City(2, "Pune")
	s.Category(1, "Music")
	s.Category(2, "Theatre")

	s.Event(1, 1, 1, "Concert")
	s.Event(2, 1, 2, "Play")
	s.Event(3, 2, 1, "Rival Show")
	s.Venue(1, 1, 1, "Arena")
	s.Venue(2, 1, 2, "Hall")
	s.Venue(3, 2, 1, "Rival Venue")

	s.Schedule(1, 1, 1, at(20, 18))
	s.Schedule(2, 2, 2, at(13, 18))
	s.Schedule(3, 3, 3, at(20, 18))

	s.TicketCategory(1, 1, "Gold")
	s.TicketCategory(2, 1, "Silver")
	s.TicketCategory(3, 2, "Stalls")
	s.PromoCode(1, 1, "DIWALI10")
	s.PaymentMethod(1, "Card")
	s.PaymentMethod(2, "UPI")

	s.Line(Line{Booking: "B1", Event: 1, Schedule: 1, TicketCategory: 1, TicketType: "VIP", Quantity: 2,
		Gross: "200.00", Net: "180.00", PromoCode: 1, PaymentMethod: 1, CheckedIn: true, BookedAt: at(13, 10)})
	s.Line(Line{Booking: "B1", Event: 1, Schedule: 1, TicketCategory: 2, TicketType: "Regular", Quantity: 1,
		Gross: "50.00", Net: "50.00", PaymentMethod: 1, BookedAt: at(13, 10)})
	s.Line(Line{Booking: "B2", Event: 1, Schedule: 1, TicketCategory: 1, TicketType: "VIP", Quantity: 1,
		Gross: "100.00", Net: "100.00", PaymentMethod: 2, BookedAt: at(14, 9)})
	s.Line(Line{Booking: "B3", Event: 2, Schedule: 2, TicketCategory: 3, TicketType: "Regular", Quantity: 3,
		Gross: "150.00", Net: "135.00", CheckedIn: true, BookedAt: at(12, 8)})
	s.Line(Line{Booking: "B4", Event: 1, Schedule: 1, TicketType: "Regular", Quantity: 1,
		Gross: "40.00", Net: "40.00", PaymentMethod: 1, BookedAt: at(5, 12)})
	s.Line(Line{Booking: "B5", Event: 3, Schedule: 3, TicketType: "VIP", Quantity: 1,
		Gross: "500.00", Net: "500.00", PaymentMethod: 1, BookedAt: at(13, 11)})

	s.Commission("B1", "convenience_fee", "10.00")
	s.Commission("B1", "gst", "1.75")
	s.Commission("B2", "convenience_fee", "5.00")
	s.Commission("B3", "convenience_fee", "7.50")
	s.Commission("B3", "gst", "2.25")
	s.Commission("B4", "convenience_fee", "4.00")
	s.Commission("B5", "convenience_fee", "20.00")
}
