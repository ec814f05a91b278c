// Package app wires configuration into a ready report service.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/config"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/facet"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/querybuild"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/sqldialect"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/repository"
)

// App holds the report service and the store it runs against.
type App struct {
	Service *report.Service
	close   func()
}

// Close releases the database.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

// Open connects to the configured store, prepares its schema and builds the service.
// migrate controls whether PostgreSQL migrations run; the SQLite schema is always applied.
func Open(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialect, err := sqldialect.ByName(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	var (
		repo    repository.ReportRepository
		closeFn func()
	)
	switch cfg.Database.Driver {
	case db.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.ApplySQLiteSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.Database.SQLitePath))
		repo = repository.NewSQLReportRepository(sqlDB, logger)
		closeFn = closeSQL(sqlDB, logger)
	default:
		if migrate {
			if err := db.RunMigrations(cfg.Database, logger); err != nil {
				return nil, err
			}
		}
		conn, err := db.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		repo = repository.NewPostgresReportRepository(conn, logger)
		closeFn = conn.Close
	}

	svc, err := NewService(repo, dialect, cfg.Report, logger)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &App{Service: svc, close: closeFn}, nil
}

// NewService builds the report service over repo from the report settings.
func NewService(repo repository.ReportRepository, dialect sqldialect.Dialect, cfg config.ReportConfig, logger *zap.Logger) (*report.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	consistency, err := report.ParseConsistency(cfg.Consistency)
	if err != nil {
		return nil, err
	}
	registry, err := joingraph.NewBookingRegistry()
	if err != nil {
		return nil, fmt.Errorf("build join registry: %w", err)
	}

	assembler := querybuild.NewAssembler(registry, dialect, cfg.Components, cfg.PageSize)
	normalizer := facet.NewNormalizer(facet.WithLogger(logger), facet.WithLocation(loc))
	return report.NewService(repo, assembler, normalizer,
		report.WithLogger(logger),
		report.WithConsistency(consistency),
		report.WithTimeout(cfg.Timeout),
	), nil
}

func closeSQL(sqlDB *sql.DB, logger *zap.Logger) func() {
	return func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close sqlite store", zap.Error(err))
		}
	}
}
