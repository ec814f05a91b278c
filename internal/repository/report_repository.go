package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/querybuild"
)

type reportRepository struct {
	exec   executor
	logger *zap.Logger
}

// NewPostgresReportRepository creates a report repository backed by the pgx pool.
func NewPostgresReportRepository(conn *db.Connection, logger *zap.Logger) ReportRepository {
	return &reportRepository{exec: &pgxExecutor{conn: conn, q: conn.Pool}, logger: nopIfNil(logger)}
}

// NewSQLReportRepository creates a report repository backed by database/sql, used with SQLite.
func NewSQLReportRepository(sqlDB *sql.DB, logger *zap.Logger) ReportRepository {
	return &reportRepository{exec: &sqlExecutor{db: sqlDB, q: sqlDB}, logger: nopIfNil(logger)}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (r *reportRepository) Snapshot(ctx context.Context, fn func(ReportRepository) error) error {
	err := r.exec.snapshot(ctx, func(tx executor) error {
		return fn(&reportRepository{exec: tx, logger: r.logger})
	})
	var reportErr *domain.ReportError
	if err != nil && !errors.As(err, &reportErr) {
		r.logger.Error("report snapshot failed", zap.Error(err))
		return domain.QueryFailed("snapshot", err)
	}
	return err
}

// run executes q and calls scan for every row. Failures are logged with the query name only;
// bound values never reach the log.
func (r *reportRepository) run(ctx context.Context, q querybuild.Compiled, scan func(rows) error) error {
	rs, err := r.exec.query(ctx, q.SQL, q.Args)
	if err != nil {
		r.logger.Error("report query failed", zap.String("query", q.Name), zap.Error(err))
		return domain.QueryFailed(q.Name, fmt.Errorf("execute %s query: %w", q.Name, err))
	}
	defer rs.Close()

	for rs.Next() {
		if err := scan(rs); err != nil {
			r.logger.Error("report row scan failed", zap.String("query", q.Name), zap.Error(err))
			return domain.QueryFailed(q.Name, fmt.Errorf("scan %s row: %w", q.Name, err))
		}
	}
	if err := rs.Err(); err != nil {
		r.logger.Error("report rows failed", zap.String("query", q.Name), zap.Error(err))
		return domain.QueryFailed(q.Name, fmt.Errorf("iterate %s rows: %w", q.Name, err))
	}
	return nil
}

func (r *reportRepository) Summary(ctx context.Context, q querybuild.Compiled) ([]domain.EntitySummary, error) {
	var out []domain.EntitySummary
	err := r.run(ctx, q, func(rs rows) error {
		var (
			row  domain.EntitySummary
			name sql.NullString
		)
		if err := rs.Scan(&row.EntityID, &name, &row.Gross, &row.Net, &row.Discount, &row.Tickets, &row.Bookings); err != nil {
			return err
		}
		row.EntityName = name.String
		out = append(out, row)
		return nil
	})
	return out, err
}

func (r *reportRepository) Breakdown(ctx context.Context, q querybuild.BreakdownQuery) ([]domain.BreakdownRow, error) {
	var out []domain.BreakdownRow
	err := r.run(ctx, q.Compiled, func(rs rows) error {
		row := domain.BreakdownRow{Dimension: q.Dimension}
		if err := rs.Scan(&row.EntityID, &row.Key, &row.Label, &row.Gross, &row.Net, &row.Discount, &row.Tickets, &row.Bookings); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

func (r *reportRepository) Components(ctx context.Context, q querybuild.Compiled) ([]domain.ComponentRow, error) {
	var out []domain.ComponentRow
	err := r.run(ctx, q, func(rs rows) error {
		var row domain.ComponentRow
		if err := rs.Scan(&row.EntityID, &row.Component, &row.Amount); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

func (r *reportRepository) Count(ctx context.Context, q querybuild.Compiled) (int64, error) {
	var total int64
	err := r.run(ctx, q, func(rs rows) error {
		return rs.Scan(&total)
	})
	return total, err
}

func (r *reportRepository) Detail(ctx context.Context, q querybuild.Compiled, components []string) ([]domain.DetailRow, error) {
	var out []domain.DetailRow
	err := r.run(ctx, q, func(rs rows) error {
		var (
			row      domain.DetailRow
			name     sql.NullString
			bookedAt Timestamp
		)
		amounts := make([]decimal.Decimal, len(components))
		dest := []any{
			&row.BookingReference, &row.EntityID, &name, &bookedAt, &row.PaymentMethod,
			&row.Tickets, &row.Gross, &row.Net, &row.Discount, &row.TicketSummary,
		}
		for i := range amounts {
			dest = append(dest, &amounts[i])
		}
		dest = append(dest, &row.CommissionTotal)
		if err := rs.Scan(dest...); err != nil {
			return err
		}

		row.EntityName = name.String
		row.BookedAt = bookedAt.Time
		row.Components = make(map[string]decimal.Decimal, len(components))
		for i, c := range components {
			row.Components[c] = amounts[i]
		}
		out = append(out, row)
		return nil
	})
	return out, err
}
