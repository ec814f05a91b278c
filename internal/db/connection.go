package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Drivers understood by the report store.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	MaxConns   int32
}

// DSN renders the PostgreSQL keyword/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL renders the connection as a pgx5:// URL for golang-migrate.
func (c Config) URL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Connection wraps the database connection pool
type Connection struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewConnection creates a new database connection
func NewConnection(ctx context.Context, config Config, logger *zap.Logger) (*Connection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Reports are read-heavy and short; keep the pool small.
	poolConfig.MaxConns = 5
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Minute * 30
	poolConfig.MaxConnIdleTime = time.Minute * 5
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to postgres", zap.String("host", config.Host), zap.String("database", config.DBName))
	return &Connection{Pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (c *Connection) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// SnapshotOptions is a read-only transaction that sees one consistent snapshot.
var SnapshotOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// WithSnapshot executes fn inside a read-only repeatable-read transaction. The transaction
// is always rolled back since it cannot write.
func (c *Connection) WithSnapshot(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := c.Pool.BeginTx(ctx, SnapshotOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if err := tx.Rollback(ctx); err != nil {
				c.logger.Error("failed to rollback transaction", zap.Error(err))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to release transaction: %w", err)
	}
	return nil
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Driver:     DriverPostgres,
		Host:       "localhost",
		Port:       5432,
		User:       "postgres",
		Password:   "admin",
		DBName:     "bookings",
		SSLMode:    "disable",
		SQLitePath: "bookings.db",
	}
}
