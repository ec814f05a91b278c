package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/db"
)

// Config is the full service configuration.
type Config struct {
	Database db.Config
	Server   ServerConfig
	Report   ReportConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	// Explain exposes compiled report SQL over HTTP; keep it off outside development.
	Explain bool
}

type ReportConfig struct {
	PageSize    int
	Timezone    string
	Consistency string
	Timeout     time.Duration
	// Components are the commission components pivoted into detail columns, in order.
	Components []string
}

// Location resolves the configured time zone.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report.timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

type AuthConfig struct {
	// TenantHeader is the trusted header an upstream gateway sets with the tenant id.
	TenantHeader string
}

// databaseEnv maps nested database keys to the flat DB_* variables.
var databaseEnv = map[string]string{
	"database.driver":      "DB_DRIVER",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.dbname":      "DB_NAME",
	"database.sslmode":     "DB_SSLMODE",
	"database.sqlite_path": "DB_SQLITE_PATH",
	"database.max_conns":   "DB_MAX_CONNS",
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("REPORTS") // REPORTS_SERVER_ADDR, REPORTS_REPORT_PAGE_SIZE, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range databaseEnv {
		_ = v.BindEnv(key, env)
	}

	defaults := db.DefaultConfig()
	v.SetDefault("database.driver", defaults.Driver)
	v.SetDefault("database.host", defaults.Host)
	v.SetDefault("database.port", defaults.Port)
	v.SetDefault("database.user", defaults.User)
	v.SetDefault("database.password", defaults.Password)
	v.SetDefault("database.dbname", defaults.DBName)
	v.SetDefault("database.sslmode", defaults.SSLMode)
	v.SetDefault("database.sqlite_path", defaults.SQLitePath)
	v.SetDefault("database.max_conns", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.explain", false)
	v.SetDefault("report.page_size", 25)
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.consistency", "snapshot")
	v.SetDefault("report.timeout", "30s")
	v.SetDefault("report.components", []string{"convenience_fee", "gst"})
	v.SetDefault("auth.tenant_header", "X-Tenant-ID")
	return v
}

// Load reads config.yaml from configPath (optional) and applies environment overrides.
func Load(configPath string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		logger.Info("no config.yaml found, using defaults and env vars", zap.String("path", configPath))
	} else {
		logger.Info("loaded config", zap.String("file", v.ConfigFileUsed()))
	}

	cfg := Config{
		Database: db.Config{
			Driver:     strings.ToLower(v.GetString("database.driver")),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DBName:     v.GetString("database.dbname"),
			SSLMode:    v.GetString("database.sslmode"),
			SQLitePath: v.GetString("database.sqlite_path"),
			MaxConns:   v.GetInt32("database.max_conns"),
		},
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: splitList(v.GetStringSlice("server.cors_origins")),
			Explain:     v.GetBool("server.explain"),
		},
		Report: ReportConfig{
			PageSize:    v.GetInt("report.page_size"),
			Timezone:    v.GetString("report.timezone"),
			Consistency: v.GetString("report.consistency"),
			Timeout:     v.GetDuration("report.timeout"),
			Components:  splitList(v.GetStringSlice("report.components")),
		},
		Auth: AuthConfig{
			TenantHeader: v.GetString("auth.tenant_header"),
		},
	}

	switch cfg.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.Report.PageSize <= 0 {
		return Config{}, fmt.Errorf("report.page_size must be positive, got %d", cfg.Report.PageSize)
	}
	if _, err := cfg.Report.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDBConfig loads only the database section.
func LoadDBConfig(configPath string) (db.Config, error) {
	cfg, err := Load(configPath, nil)
	if err != nil {
		return db.Config{}, err
	}
	return cfg.Database, nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
