package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Telemetry  TelemetryConfig
	Billing    BillingConfig
	Rates      RatesConfig
	Compliance ComplianceConfig
	StreetTurn StreetTurnConfig
	Sweep      SweepConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// Enabled switches the idempotency store between Redis and in-memory
	Enabled bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
}

// BillingConfig holds invoice ledger behavior settings
type BillingConfig struct {
	AllowOverpayment bool
	DefaultTaxRate   float64
	PaymentTermsDays int
	IdempotencyTTL   time.Duration
}

// TierBandConfig is one band of a tiered daily rate table
type TierBandConfig struct {
	FromDay    int     `mapstructure:"from_day"`
	ToDay      int     `mapstructure:"to_day"` // 0 = open-ended
	RatePerDay float64 `mapstructure:"rate_per_day"`
}

// DetentionRateConfig holds the per-stop detention pricing rule
type DetentionRateConfig struct {
	FreeTimeMinutes    int     `mapstructure:"free_time_minutes"`
	GracePeriodMinutes int     `mapstructure:"grace_period_minutes"`
	RatePerHour        float64 `mapstructure:"rate_per_hour"`
	MaxDailyCharge     float64 `mapstructure:"max_daily_charge"`
}

// RatesConfig holds every pricing rule table, keyed by container size for
// the tiered tables
type RatesConfig struct {
	Detention DetentionRateConfig         `mapstructure:"detention"`
	PerDiem   map[string][]TierBandConfig `mapstructure:"per_diem"`
	Demurrage map[string][]TierBandConfig `mapstructure:"demurrage"`
}

// ComplianceConfig holds the container compliance thresholds
type ComplianceConfig struct {
	MaxGrossWeightLbs      float64 `mapstructure:"max_gross_weight_lbs"`
	OverweightThresholdLbs float64 `mapstructure:"overweight_threshold_lbs"`
}

// StreetTurnConfig holds the street-turn matcher settings
type StreetTurnConfig struct {
	SameTerminalSavings      float64 `mapstructure:"same_terminal_savings"`
	DifferentTerminalSavings float64 `mapstructure:"different_terminal_savings"`
	RequireTypeMatch         bool    `mapstructure:"require_type_match"`
}

// SweepConfig holds the overdue invoice sweep schedule
type SweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DRAY_ prefix (e.g., DRAY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DRAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Enabled:  v.GetBool("redis.enabled"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
		Billing: BillingConfig{
			AllowOverpayment: v.GetBool("billing.allow_overpayment"),
			DefaultTaxRate:   v.GetFloat64("billing.default_tax_rate"),
			PaymentTermsDays: v.GetInt("billing.payment_terms_days"),
			IdempotencyTTL:   v.GetDuration("billing.idempotency_ttl"),
		},
		Sweep: SweepConfig{
			Enabled:  v.GetBool("sweep.enabled"),
			Interval: v.GetDuration("sweep.interval"),
		},
	}

	if err := v.UnmarshalKey("rates", &cfg.Rates); err != nil {
		return nil, fmt.Errorf("error parsing rates configuration: %w", err)
	}
	if err := v.UnmarshalKey("compliance", &cfg.Compliance); err != nil {
		return nil, fmt.Errorf("error parsing compliance configuration: %w", err)
	}
	if err := v.UnmarshalKey("street_turn", &cfg.StreetTurn); err != nil {
		return nil, fmt.Errorf("error parsing street_turn configuration: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields.
// Rate table defaults follow the standard SoCal drayage tariff the system
// ships with; deployments override them in config.toml.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "drayage-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "drayage"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "drayage-backend"
	}
	if cfg.Billing.DefaultTaxRate == 0 {
		cfg.Billing.DefaultTaxRate = 0.0875
	}
	if cfg.Billing.PaymentTermsDays == 0 {
		cfg.Billing.PaymentTermsDays = 30
	}
	if cfg.Billing.IdempotencyTTL == 0 {
		cfg.Billing.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Sweep.Interval == 0 {
		cfg.Sweep.Interval = time.Hour
	}
	if cfg.Rates.Detention.FreeTimeMinutes == 0 {
		cfg.Rates.Detention.FreeTimeMinutes = 120
	}
	if cfg.Rates.Detention.GracePeriodMinutes == 0 {
		cfg.Rates.Detention.GracePeriodMinutes = 15
	}
	if cfg.Rates.Detention.RatePerHour == 0 {
		cfg.Rates.Detention.RatePerHour = 75
	}
	if cfg.Rates.Detention.MaxDailyCharge == 0 {
		cfg.Rates.Detention.MaxDailyCharge = 600
	}
	if len(cfg.Rates.PerDiem) == 0 {
		// Five free days, then escalating bands.
		standard := []TierBandConfig{
			{FromDay: 6, ToDay: 10, RatePerDay: 25},
			{FromDay: 11, ToDay: 20, RatePerDay: 35},
			{FromDay: 21, ToDay: 0, RatePerDay: 50},
		}
		cfg.Rates.PerDiem = map[string][]TierBandConfig{
			"20ST": standard, "40ST": standard, "40HC": standard, "45HC": standard,
		}
	}
	if len(cfg.Rates.Demurrage) == 0 {
		standard := []TierBandConfig{
			{FromDay: 1, ToDay: 4, RatePerDay: 150},
			{FromDay: 5, ToDay: 0, RatePerDay: 265},
		}
		cfg.Rates.Demurrage = map[string][]TierBandConfig{
			"20ST": standard, "40ST": standard, "40HC": standard, "45HC": standard,
		}
	}
	if cfg.Compliance.MaxGrossWeightLbs == 0 {
		cfg.Compliance.MaxGrossWeightLbs = 80000
	}
	if cfg.Compliance.OverweightThresholdLbs == 0 {
		cfg.Compliance.OverweightThresholdLbs = 44000
	}
	if cfg.StreetTurn.SameTerminalSavings == 0 {
		cfg.StreetTurn.SameTerminalSavings = 400
	}
	if cfg.StreetTurn.DifferentTerminalSavings == 0 {
		cfg.StreetTurn.DifferentTerminalSavings = 250
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Billing.DefaultTaxRate < 0 || c.Billing.DefaultTaxRate >= 1 {
		return fmt.Errorf("billing.default_tax_rate must be a fraction in [0, 1), got %f", c.Billing.DefaultTaxRate)
	}

	// The rule tables carry their own invariants; fail at load, not at the
	// first quote.
	if _, err := c.Rates.BuildRateRules(); err != nil {
		return fmt.Errorf("invalid rates configuration: %w", err)
	}
	if err := c.Compliance.BuildWeightRules().Validate(); err != nil {
		return fmt.Errorf("invalid compliance configuration: %w", err)
	}
	if _, err := c.StreetTurn.BuildMatcherConfig(); err != nil {
		return fmt.Errorf("invalid street_turn configuration: %w", err)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BuildRateRules converts the rate tables into validated domain rules
func (r *RatesConfig) BuildRateRules() (billing.RateRules, error) {
	ratePerHour, err := valueobject.NewMoney(decimal.NewFromFloat(r.Detention.RatePerHour), valueobject.USD)
	if err != nil {
		return billing.RateRules{}, err
	}
	maxDaily, err := valueobject.NewMoney(decimal.NewFromFloat(r.Detention.MaxDailyCharge), valueobject.USD)
	if err != nil {
		return billing.RateRules{}, err
	}

	rules := billing.RateRules{
		Detention: billing.DetentionConfig{
			FreeTimeMinutes:    r.Detention.FreeTimeMinutes,
			GracePeriodMinutes: r.Detention.GracePeriodMinutes,
			RatePerHour:        ratePerHour,
			MaxDailyCharge:     maxDaily,
		},
		PerDiem:   buildSchedules(r.PerDiem),
		Demurrage: buildSchedules(r.Demurrage),
	}
	if err := rules.Validate(); err != nil {
		return billing.RateRules{}, err
	}
	return rules, nil
}

func buildSchedules(tables map[string][]TierBandConfig) map[valueobject.ContainerSize]billing.TierSchedule {
	schedules := make(map[valueobject.ContainerSize]billing.TierSchedule, len(tables))
	for size, bands := range tables {
		schedule := make(billing.TierSchedule, 0, len(bands))
		for _, band := range bands {
			schedule = append(schedule, billing.TierRate{
				FromDay:    band.FromDay,
				ToDay:      band.ToDay,
				RatePerDay: decimal.NewFromFloat(band.RatePerDay),
			})
		}
		schedules[valueobject.ContainerSize(strings.ToUpper(size))] = schedule
	}
	return schedules
}

// BuildWeightRules converts the compliance thresholds into domain rules
func (c *ComplianceConfig) BuildWeightRules() compliance.WeightRules {
	return compliance.WeightRules{
		MaxGrossWeightLbs:      decimal.NewFromFloat(c.MaxGrossWeightLbs),
		OverweightThresholdLbs: decimal.NewFromFloat(c.OverweightThresholdLbs),
	}
}

// BuildMatcherConfig converts the street-turn settings into a validated
// matcher configuration
func (s *StreetTurnConfig) BuildMatcherConfig() (streetturn.MatcherConfig, error) {
	same, err := valueobject.NewMoney(decimal.NewFromFloat(s.SameTerminalSavings), valueobject.USD)
	if err != nil {
		return streetturn.MatcherConfig{}, err
	}
	different, err := valueobject.NewMoney(decimal.NewFromFloat(s.DifferentTerminalSavings), valueobject.USD)
	if err != nil {
		return streetturn.MatcherConfig{}, err
	}

	cfg := streetturn.MatcherConfig{
		SameTerminalSavings:      same,
		DifferentTerminalSavings: different,
		RequireTypeMatch:         s.RequireTypeMatch,
	}
	if err := cfg.Validate(); err != nil {
		return streetturn.MatcherConfig{}, err
	}
	return cfg, nil
}
