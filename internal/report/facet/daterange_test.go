package facet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_Modes(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		mode       string
		start, end string
		want       domain.DateRange
	}{
		{mode: "today", want: domain.DateRange{Mode: domain.RangeToday, Start: day(2026, 10, 14), End: day(2026, 10, 15)}},
		{mode: "yesterday", want: domain.DateRange{Mode: domain.RangeYesterday, Start: day(2026, 10, 13), End: day(2026, 10, 14)}},
		{mode: "weekly", want: domain.DateRange{Mode: domain.RangeWeekly, Start: day(2026, 10, 12), End: day(2026, 10, 19)}},
		{mode: "", want: domain.DateRange{Mode: domain.RangeWeekly, Start: day(2026, 10, 12), End: day(2026, 10, 19)}},
		{mode: "monthly", want: domain.DateRange{Mode: domain.RangeMonthly, Start: day(2026, 10, 1), End: day(2026, 11, 1)}},
		{mode: "Quarterly", want: domain.DateRange{Mode: domain.RangeQuarterly, Start: day(2026, 10, 1), End: day(2027, 1, 1)}},
		{mode: "custom", start: "2026-09-01", end: "2026-09-30", want: domain.DateRange{Mode: domain.RangeCustom, Start: day(2026, 9, 1), End: day(2026, 10, 1)}},
		{mode: "custom", start: "2026-09-05", end: "2026-09-05", want: domain.DateRange{Mode: domain.RangeCustom, Start: day(2026, 9, 5), End: day(2026, 9, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.mode+tt.start, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DateRange(tt.mode, tt.start, tt.end))
		})
	}
}

func TestDateRange_CustomFallsBackToWeekly(t *testing.T) {
	n := newTestNormalizer(t)
	want := domain.DateRange{Mode: domain.RangeWeekly, Start: day(2026, 10, 12), End: day(2026, 10, 19), FellBack: true}

	assert.Equal(t, want, n.DateRange("custom", "2026-09-30", "2026-09-01"), "end before start")
	assert.Equal(t, want, n.DateRange("custom", "yesterday", "2026-09-01"), "unparsable start")
	assert.Equal(t, want, n.DateRange("custom", "2026-09-01", ""), "missing end")
	assert.Equal(t, want, n.DateRange("fortnightly", "", ""), "unknown mode")

	// Deterministic: the same bad input always yields the same range.
	assert.Equal(t, n.DateRange("custom", "2026-09-30", "2026-09-01"), n.DateRange("custom", "2026-09-30", "2026-09-01"))
}

func TestDateRange_WeeklyOnMondayAndSunday(t *testing.T) {
	monday := NewNormalizer(WithClock(func() time.Time { return time.Date(2026, 10, 12, 0, 0, 1, 0, time.UTC) }))
	sunday := NewNormalizer(WithClock(func() time.Time { return time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC) }))

	assert.Equal(t, day(2026, 10, 12), monday.DateRange("weekly", "", "").Start)
	assert.Equal(t, day(2026, 10, 12), sunday.DateRange("weekly", "", "").Start)
}

func TestDateRange_UsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 14th is already the 15th in IST.
	n := NewNormalizer(
		WithLocation(ist),
		WithClock(func() time.Time { return time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC) }),
	)

	r := n.DateRange("today", "", "")
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, ist), r.Start)
}
