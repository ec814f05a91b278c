// Package sqldialect isolates the few SQL constructs that differ between the PostgreSQL
// production store and the embedded SQLite store.
package sqldialect

import (
	"fmt"
	"strings"
	"time"
)

// Dialect renders engine-specific fragments and parameter values.
type Dialect interface {
	Name() string
	// StringAgg concatenates expr over a group, ordered by orderBy when the engine supports it.
	StringAgg(expr, separator, orderBy string) string
	// BindTime converts a timestamp into the value bound for comparison against stored times.
	BindTime(t time.Time) any
}

// SQLiteTimeLayout is the text layout timestamps are stored and compared in on SQLite.
const SQLiteTimeLayout = "2006-01-02 15:04:05"

type postgres struct{}

// Postgres is the production dialect.
func Postgres() Dialect { return postgres{} }

func (postgres) Name() string { return "postgres" }

func (postgres) StringAgg(expr, separator, orderBy string) string {
	if orderBy == "" {
		return fmt.Sprintf("STRING_AGG(%s, %s)", expr, quote(separator))
	}
	return fmt.Sprintf("STRING_AGG(%s, %s ORDER BY %s)", expr, quote(separator), orderBy)
}

func (postgres) BindTime(t time.Time) any { return t }

type sqlite struct{}

// SQLite is the embedded dialect. Timestamps are stored as UTC text.
func SQLite() Dialect { return sqlite{} }

func (sqlite) Name() string { return "sqlite" }

func (sqlite) StringAgg(expr, separator, _ string) string {
	return fmt.Sprintf("GROUP_CONCAT(%s, %s)", expr, quote(separator))
}

func (sqlite) BindTime(t time.Time) any { return t.UTC().Format(SQLiteTimeLayout) }

// ByName returns the dialect registered under name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx", "":
		return Postgres(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	}
	return nil, fmt.Errorf("unknown sql dialect %q", name)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
