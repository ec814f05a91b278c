package repository

import (
	"context"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/querybuild"
)

// ReportRepository runs compiled report queries and maps their rows to domain types
type ReportRepository interface {
	Summary(ctx context.Context, q querybuild.Compiled) ([]domain.EntitySummary, error)
	Breakdown(ctx context.Context, q querybuild.BreakdownQuery) ([]domain.BreakdownRow, error)
	Components(ctx context.Context, q querybuild.Compiled) ([]domain.ComponentRow, error)
	Count(ctx context.Context, q querybuild.Compiled) (int64, error)
	Detail(ctx context.Context, q querybuild.Compiled, components []string) ([]domain.DetailRow, error)

	// Snapshot runs fn against a repository bound to one read-only, repeatable-read
	// transaction so every query sees the same data.
	Snapshot(ctx context.Context, fn func(ReportRepository) error) error
}
