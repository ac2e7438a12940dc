package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sourceplane/pressplan/internal/analysis"
	"github.com/sourceplane/pressplan/internal/planner"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment    string
	HTTPBind       string
	HTTPPort       int
	DBBackend      DatabaseBackend
	DBDSN          string
	MetricsEnabled bool

	// Scheduling policy
	ShiftMinutes         int
	LockInMinutes        int
	BreakMinutes         int
	SizeToleranceMinutes int

	// Discrepancy severity cutoffs
	SeverityHighGap     int
	SeverityHighRatio   float64
	SeverityMediumGap   int
	SeverityMediumRatio float64

	WatchDebounceMillis int
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	rules := planner.DefaultRules()
	thresholds := analysis.DefaultThresholds()

	cfg := &Config{
		Environment:    getEnvAny([]string{"PRESSPLAN_ENV"}, "production"),
		HTTPBind:       getEnvAny([]string{"PRESSPLAN_HTTP_BIND"}, "127.0.0.1"),
		HTTPPort:       getEnvIntAny([]string{"PRESSPLAN_HTTP_PORT", "PORT"}, 8085),
		DBBackend:      DatabaseBackend(getEnvAny([]string{"PRESSPLAN_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:          getEnvAny([]string{"PRESSPLAN_DB_DSN"}, "pressplan.db"),
		MetricsEnabled: getEnvBoolAny([]string{"PRESSPLAN_METRICS_ENABLED"}, true),

		ShiftMinutes:         getEnvIntAny([]string{"PRESSPLAN_SHIFT_MINUTES"}, 540),
		LockInMinutes:        getEnvIntAny([]string{"PRESSPLAN_LOCK_IN_MINUTES"}, rules.LockInMinutes),
		BreakMinutes:         getEnvIntAny([]string{"PRESSPLAN_BREAK_MINUTES"}, rules.BreakMinutes),
		SizeToleranceMinutes: getEnvIntAny([]string{"PRESSPLAN_SIZE_TOLERANCE_MINUTES"}, rules.SizeToleranceMinutes),

		SeverityHighGap:     getEnvIntAny([]string{"PRESSPLAN_SEVERITY_HIGH_GAP"}, thresholds.HighGap),
		SeverityHighRatio:   getEnvFloatAny([]string{"PRESSPLAN_SEVERITY_HIGH_RATIO"}, thresholds.HighRatio),
		SeverityMediumGap:   getEnvIntAny([]string{"PRESSPLAN_SEVERITY_MEDIUM_GAP"}, thresholds.MediumGap),
		SeverityMediumRatio: getEnvFloatAny([]string{"PRESSPLAN_SEVERITY_MEDIUM_RATIO"}, thresholds.MediumRatio),

		WatchDebounceMillis: getEnvIntAny([]string{"PRESSPLAN_WATCH_DEBOUNCE_MS"}, 300),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBBackend {
	case DatabasePostgres, DatabaseMySQL, DatabaseSQLite:
	default:
		return fmt.Errorf("unsupported PRESSPLAN_DB_BACKEND %q (want sqlite, postgres or mysql)", c.DBBackend)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("PRESSPLAN_DB_DSN must not be empty")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("PRESSPLAN_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.ShiftMinutes <= 0 {
		return fmt.Errorf("PRESSPLAN_SHIFT_MINUTES must be greater than 0, got %d", c.ShiftMinutes)
	}
	if c.WatchDebounceMillis < 0 {
		return fmt.Errorf("PRESSPLAN_WATCH_DEBOUNCE_MS must not be negative")
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("invalid scheduling rules: %w", err)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("invalid severity thresholds: %w", err)
	}
	return nil
}

// Rules returns the scheduling policy described by the configuration.
func (c *Config) Rules() planner.Rules {
	rules := planner.DefaultRules()
	rules.LockInMinutes = c.LockInMinutes
	rules.BreakMinutes = c.BreakMinutes
	rules.SizeToleranceMinutes = c.SizeToleranceMinutes
	return rules
}

// Thresholds returns the discrepancy severity cutoffs.
func (c *Config) Thresholds() analysis.Thresholds {
	return analysis.Thresholds{
		HighGap:     c.SeverityHighGap,
		HighRatio:   c.SeverityHighRatio,
		MediumGap:   c.SeverityMediumGap,
		MediumRatio: c.SeverityMediumRatio,
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
