package facet

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

// DateLayout is the format of custom start/end dates.
const DateLayout = "2006-01-02"

// DateRange resolves a range mode into a half-open interval. An empty mode is the default
// weekly view. Unknown modes and invalid custom dates fall back to the weekly range with
// FellBack set, so callers can show which range was actually used.
func (n *Normalizer) DateRange(mode, start, end string) domain.DateRange {
	today := midnight(n.now().In(n.location))

	switch domain.RangeMode(strings.ToLower(strings.TrimSpace(mode))) {
	case domain.RangeToday:
		return domain.DateRange{Mode: domain.RangeToday, Start: today, End: today.AddDate(0, 0, 1)}
	case domain.RangeYesterday:
		return domain.DateRange{Mode: domain.RangeYesterday, Start: today.AddDate(0, 0, -1), End: today}
	case domain.RangeWeekly, "":
		return weekly(today)
	case domain.RangeMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return domain.DateRange{Mode: domain.RangeMonthly, Start: first, End: first.AddDate(0, 1, 0)}
	case domain.RangeQuarterly:
		month := time.Month((int(today.Month())-1)/3*3 + 1)
		first := time.Date(today.Year(), month, 1, 0, 0, 0, 0, today.Location())
		return domain.DateRange{Mode: domain.RangeQuarterly, Start: first, End: first.AddDate(0, 3, 0)}
	case domain.RangeCustom:
		from, errFrom := time.ParseInLocation(DateLayout, strings.TrimSpace(start), n.location)
		to, errTo := time.ParseInLocation(DateLayout, strings.TrimSpace(end), n.location)
		if errFrom != nil || errTo != nil || to.Before(from) {
			n.logger.Debug("custom date range rejected, using weekly range",
				zap.String("start", start),
				zap.String("end", end),
				zap.String("kind", string(domain.KindInvalidDateRange)))
			return fallback(today)
		}
		// The end date is inclusive.
		return domain.DateRange{Mode: domain.RangeCustom, Start: from, End: to.AddDate(0, 0, 1)}
	}

	n.logger.Debug("unknown date range mode, using weekly range", zap.String("mode", mode))
	return fallback(today)
}

func weekly(today time.Time) domain.DateRange {
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	return domain.DateRange{Mode: domain.RangeWeekly, Start: monday, End: monday.AddDate(0, 0, 7)}
}

func fallback(today time.Time) domain.DateRange {
	r := weekly(today)
	r.FellBack = true
	return r
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
