package config

import (
	"os"
	"testing"

	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"DRAY_APP_NAME":          os.Getenv("DRAY_APP_NAME"),
		"DRAY_APP_ENV":           os.Getenv("DRAY_APP_ENV"),
		"DRAY_APP_PORT":          os.Getenv("DRAY_APP_PORT"),
		"DRAY_DATABASE_HOST":     os.Getenv("DRAY_DATABASE_HOST"),
		"DRAY_DATABASE_PORT":     os.Getenv("DRAY_DATABASE_PORT"),
		"DRAY_DATABASE_PASSWORD": os.Getenv("DRAY_DATABASE_PASSWORD"),
		"DRAY_DATABASE_SSLMODE":  os.Getenv("DRAY_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "drayage-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "drayage", cfg.Database.DBName)
		assert.Equal(t, 120, cfg.Rates.Detention.FreeTimeMinutes)
		assert.Equal(t, 15, cfg.Rates.Detention.GracePeriodMinutes)
		assert.InDelta(t, 0.0875, cfg.Billing.DefaultTaxRate, 1e-9)
		assert.Equal(t, 30, cfg.Billing.PaymentTermsDays)
	})

	t.Run("loads values from environment variables with DRAY prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("DRAY_APP_NAME", "test-app")
		os.Setenv("DRAY_APP_PORT", "9000")
		os.Setenv("DRAY_DATABASE_HOST", "testdb.local")
		os.Setenv("DRAY_DATABASE_PORT", "5433")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
	})

	t.Run("production requires database password and SSL", func(t *testing.T) {
		clearEnv()
		os.Setenv("DRAY_APP_ENV", "production")

		_, err := Load()
		assert.Error(t, err)

		os.Setenv("DRAY_DATABASE_PASSWORD", "secret")
		os.Setenv("DRAY_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "dray",
		Password: "p@ss/word",
		DBName:   "drayage",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped.
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRatesConfig_BuildRateRules(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	rules, err := cfg.Rates.BuildRateRules()
	require.NoError(t, err)

	schedule, err := rules.PerDiemSchedule(valueobject.Size40HC)
	require.NoError(t, err)
	// Ten chargeable days across the first two bands: 5 at 25, 5 at 35.
	assert.True(t, schedule.Charge(15).Equal(decimal.NewFromInt(300)))

	assert.Equal(t, 120, rules.Detention.FreeTimeMinutes)
	assert.True(t, rules.Detention.RatePerHour.Amount().Equal(decimal.NewFromInt(75)))
}

func TestRatesConfig_BuildRateRules_RejectsGappyBands(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Rates.PerDiem["40HC"] = []TierBandConfig{
		{FromDay: 6, ToDay: 10, RatePerDay: 25},
		{FromDay: 12, ToDay: 0, RatePerDay: 50}, // gap at day 11
	}

	_, err := cfg.Rates.BuildRateRules()
	assert.Error(t, err)
}

func TestStreetTurnConfig_BuildMatcherConfig(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	matcher, err := cfg.StreetTurn.BuildMatcherConfig()
	require.NoError(t, err)
	assert.True(t, matcher.SameTerminalSavings.Amount().Equal(decimal.NewFromInt(400)))

	cfg.StreetTurn.SameTerminalSavings = 100 // below different-terminal savings
	_, err = cfg.StreetTurn.BuildMatcherConfig()
	assert.Error(t, err)
}

func TestComplianceConfig_BuildWeightRules(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	rules := cfg.Compliance.BuildWeightRules()
	require.NoError(t, rules.Validate())
	assert.True(t, rules.IsOverweight(decimal.NewFromInt(46000)))
	assert.False(t, rules.IsOverweight(decimal.NewFromInt(38500)))
}
