package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, DatabaseSQLite, cfg.DBBackend)
	assert.Equal(t, "127.0.0.1:8085", cfg.Addr())
	assert.Equal(t, 540, cfg.ShiftMinutes)
	assert.Equal(t, 45, cfg.Rules().LockInMinutes)
	assert.Equal(t, 30, cfg.Rules().BreakMinutes)
	assert.Equal(t, 60, cfg.Thresholds().HighGap)
	assert.Equal(t, 3.0, cfg.Thresholds().MediumRatio)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PRESSPLAN_ENV", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("PRESSPLAN_DB_BACKEND", "postgres")
	t.Setenv("PRESSPLAN_DB_DSN", "host=db user=plan")
	t.Setenv("PRESSPLAN_METRICS_ENABLED", "no")
	t.Setenv("PRESSPLAN_LOCK_IN_MINUTES", "30")
	t.Setenv("PRESSPLAN_SIZE_TOLERANCE_MINUTES", "10")
	t.Setenv("PRESSPLAN_SEVERITY_HIGH_RATIO", "8.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, DatabasePostgres, cfg.DBBackend)
	assert.Equal(t, "host=db user=plan", cfg.DBDSN)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 30, cfg.Rules().LockInMinutes)
	assert.Equal(t, 10, cfg.Rules().SizeToleranceMinutes)
	assert.Equal(t, 8.5, cfg.Thresholds().HighRatio)

	// the namespaced port wins over PORT
	t.Setenv("PRESSPLAN_HTTP_PORT", "7070")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTPPort)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PRESSPLAN_SHIFT_MINUTES", "nine hours")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 540, cfg.ShiftMinutes)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"PRESSPLAN_DB_BACKEND":          "oracle",
		"PRESSPLAN_HTTP_PORT":           "70000",
		"PRESSPLAN_SHIFT_MINUTES":       "-1",
		"PRESSPLAN_LOCK_IN_MINUTES":     "-5",
		"PRESSPLAN_WATCH_DEBOUNCE_MS":   "-1",
		"PRESSPLAN_SEVERITY_MEDIUM_GAP": "90",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
