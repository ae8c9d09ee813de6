package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the gorm tracing plugin.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables in spans; never enable in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns the plugin defaults: tracing off, SQL
// parameters redacted, 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin layers slow-query and error annotation on top of the
// otelgorm spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin; call RegisterOtelGorm to
// attach it to a gorm DB.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm plus the plugin's own timing
// callbacks on db. A disabled config makes this a no-op.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.instrument(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// instrument hooks every statement kind with a timestamp before the
// gorm callback and span annotation after it. The after hooks run once
// otelgorm has already opened the statement span.
func (p *DBTracingPlugin) instrument(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("dray_trace:before_create", markStart) },
		func() error { return cb.Create().After("gorm:create").Register("dray_trace:after_create", p.annotate) },
		func() error { return cb.Query().Before("gorm:query").Register("dray_trace:before_query", markStart) },
		func() error { return cb.Query().After("gorm:query").Register("dray_trace:after_query", p.annotate) },
		func() error { return cb.Update().Before("gorm:update").Register("dray_trace:before_update", markStart) },
		func() error { return cb.Update().After("gorm:update").Register("dray_trace:after_update", p.annotate) },
		func() error { return cb.Delete().Before("gorm:delete").Register("dray_trace:before_delete", markStart) },
		func() error { return cb.Delete().After("gorm:delete").Register("dray_trace:after_delete", p.annotate) },
		func() error { return cb.Row().Before("gorm:row").Register("dray_trace:before_row", markStart) },
		func() error { return cb.Row().After("gorm:row").Register("dray_trace:after_row", p.annotate) },
		func() error { return cb.Raw().Before("gorm:raw").Register("dray_trace:before_raw", markStart) },
		func() error { return cb.Raw().After("gorm:raw").Register("dray_trace:after_raw", p.annotate) },
	}
	for _, register := range hooks {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, startTimeKey, time.Now())
	}
}

// annotate enriches the current statement span with row counts, table
// name, errors, and a slow-query event when the statement overran the
// threshold.
func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// A missing row is an answer, not a failure
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(startTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

type ctxKey string

const startTimeKey ctxKey = "db_query_start_time"
