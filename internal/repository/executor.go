package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
)

// rows is the subset of pgx.Rows and *sql.Rows the scanners need.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// executor runs one statement with named arguments.
type executor interface {
	query(ctx context.Context, query string, args predicate.Params) (rows, error)
	snapshot(ctx context.Context, fn func(executor) error) error
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgxExecutor binds @name parameters through pgx.NamedArgs.
type pgxExecutor struct {
	conn *db.Connection
	q    pgxQuerier
}

func (e *pgxExecutor) query(ctx context.Context, query string, args predicate.Params) (rows, error) {
	r, err := e.q.Query(ctx, query, pgx.NamedArgs(args))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (e *pgxExecutor) snapshot(ctx context.Context, fn func(executor) error) error {
	if e.conn == nil {
		// Already inside a transaction.
		return fn(e)
	}
	return e.conn.WithSnapshot(ctx, func(tx pgx.Tx) error {
		return fn(&pgxExecutor{q: tx})
	})
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// sqlExecutor binds @name parameters through sql.Named, which SQLite matches natively.
type sqlExecutor struct {
	db *sql.DB
	q  sqlQuerier
}

func (e *sqlExecutor) query(ctx context.Context, query string, args predicate.Params) (rows, error) {
	named := make([]any, 0, len(args))
	for _, name := range args.Names() {
		named = append(named, sql.Named(name, args[name]))
	}
	r, err := e.q.QueryContext(ctx, query, named...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (e *sqlExecutor) snapshot(ctx context.Context, fn func(executor) error) error {
	if e.db == nil {
		return fn(e)
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlExecutor{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}
	// Read-only work: release the snapshot without committing anything.
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to release transaction: %w", err)
	}
	return nil
}

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }
