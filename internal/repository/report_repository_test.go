package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/querybuild"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/testutil"
)

func TestTimestampScan_AcceptsTimeAndText(t *testing.T) {
	want := time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)

	cases := []any{
		want,
		want.In(time.FixedZone("IST", 19800)),
		"2026-10-13 10:00:00",
		[]byte("2026-10-13T10:00:00Z"),
		"2026-10-13 15:30:00+05:30",
	}
	for _, src := range cases {
		var ts Timestamp
		if err := ts.Scan(src); err != nil {
			t.Fatalf("scan %#v: %v", src, err)
		}
		if !ts.Time.Equal(want) {
			t.Fatalf("scan %#v: expected %s, got %s", src, want, ts.Time)
		}
	}

	var ts Timestamp
	if err := ts.Scan(nil); err != nil || !ts.Time.IsZero() {
		t.Fatalf("expected zero time for NULL, got %s (%v)", ts.Time, err)
	}
	if err := ts.Scan(int64(5)); err == nil {
		t.Fatalf("expected error scanning integer")
	}
	if err := ts.Scan("yesterday"); err == nil {
		t.Fatalf("expected error scanning unparsable text")
	}
}

func TestReportRepository_CountBindsNamedArgs(t *testing.T) {
	sqlDB := testutil.NewSQLite(t)
	testutil.SeedStandard(t, sqlDB)
	repo := NewSQLReportRepository(sqlDB, zaptest.NewLogger(t))

	total, err := repo.Count(context.Background(), querybuild.Compiled{
		Name: "count",
		SQL:  "SELECT COUNT(DISTINCT booking_reference) FROM ticket_lines WHERE event_id = @event AND booked_at >= @since",
		Args: predicate.Params{"event": int64(1), "since": "2026-10-12 00:00:00"},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 bookings, got %d", total)
	}
}

func TestReportRepository_FailuresAreQueryFailed(t *testing.T) {
	sqlDB := testutil.NewSQLite(t)
	repo := NewSQLReportRepository(sqlDB, zaptest.NewLogger(t))

	_, err := repo.Summary(context.Background(), querybuild.Compiled{Name: "summary", SQL: "SELECT * FROM missing_table"})
	if !errors.Is(err, domain.ErrQueryFailed) {
		t.Fatalf("expected query failed error, got %v", err)
	}
	var reportErr *domain.ReportError
	if !errors.As(err, &reportErr) || reportErr.Message != "report query summary failed" {
		t.Fatalf("expected generic message, got %v", err)
	}
}

func TestReportRepository_SnapshotSharesTransaction(t *testing.T) {
	sqlDB := testutil.NewSQLite(t)
	testutil.SeedStandard(t, sqlDB)
	repo := NewSQLReportRepository(sqlDB, zaptest.NewLogger(t))

	q := querybuild.Compiled{Name: "count", SQL: "SELECT COUNT(*) FROM ticket_lines"}
	var inside int64
	err := repo.Snapshot(context.Background(), func(tx ReportRepository) error {
		var err error
		inside, err = tx.Count(context.Background(), q)
		return err
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if inside != 6 {
		t.Fatalf("expected 6 ticket lines, got %d", inside)
	}

	sentinel := errors.New("stop")
	err = repo.Snapshot(context.Background(), func(ReportRepository) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
}
