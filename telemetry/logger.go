// Package telemetry provides structured logging and correlation-id propagation
// for the indexer. Logging follows logrus conventions; correlation ids ride
// on context.Context rather than an HTTP framework's request-scoped context,
// since the indexer has no HTTP surface of its own.
package telemetry

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel is a minimum severity for log emission.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config configures a logger instance.
type Config struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Service   string
	AddCaller bool
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig(service string) Config {
	return Config{
		Level:   LogLevelInfo,
		Format:  "text",
		Service: service,
	}
}

// NewLogger builds a logrus.Logger per cfg, splitting error-level output to
// stderr and everything else to stdout so container log collectors can apply
// different handling per stream.
func NewLogger(cfg Config) *logrus.Logger {
	logger := logrus.New()

	switch cfg.Level {
	case LogLevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	case LogLevelWarn:
		logger.SetLevel(logrus.WarnLevel)
	case LogLevelError:
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}

	logger.SetReportCaller(cfg.AddCaller)
	logger.SetOutput(&outputSplitter{})

	if cfg.Service != "" {
		return logger.WithField("service", cfg.Service).Logger
	}
	return logger
}

// outputSplitter routes error-level formatted lines to stderr and the rest to
// stdout, so orchestrators can treat the two streams differently.
type outputSplitter struct{}

func (outputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

type correlationKey struct{}

// WithCorrelationID attaches a correlation id (typically a block's request
// id) to ctx for downstream logging.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID extracts a correlation id previously attached with
// WithCorrelationID, or "" if none is present.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// FromContext returns a logger entry enriched with the correlation id (if
// any) carried by ctx. Handlers use this so every log line touching a given
// block/event can be traced back to it.
func FromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if id := CorrelationID(ctx); id != "" {
		entry = entry.WithField("correlation_id", id)
	}
	return entry
}
