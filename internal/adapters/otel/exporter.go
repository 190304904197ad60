package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/mkanban/internal/ports"
)

const (
	serviceName    = "mkanban"
	serviceVersion = "1.0.0"
)

// Exporter exports backup and prompt metrics to an OTEL Collector.
type Exporter struct {
	provider       *sdkmetric.MeterProvider
	backupsTotal   metric.Int64Counter
	backupBytes    metric.Int64Histogram
	backupDuration metric.Float64Histogram
	prunedTotal    metric.Int64Counter
	promptsTotal   metric.Int64Counter
	promptDuration metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)
	e := &Exporter{provider: provider}

	var err error
	if e.backupsTotal, err = meter.Int64Counter(
		"mkanban_backups_total",
		metric.WithDescription("Backup runs by result"),
		metric.WithUnit("{backup}"),
	); err != nil {
		return nil, fmt.Errorf("creating backups counter: %w", err)
	}

	if e.backupBytes, err = meter.Int64Histogram(
		"mkanban_backup_size_bytes",
		metric.WithDescription("Size of written snapshots"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("creating backup size histogram: %w", err)
	}

	if e.backupDuration, err = meter.Float64Histogram(
		"mkanban_backup_duration_seconds",
		metric.WithDescription("Backup run duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating backup duration histogram: %w", err)
	}

	if e.prunedTotal, err = meter.Int64Counter(
		"mkanban_backups_pruned_total",
		metric.WithDescription("Snapshots deleted by retention"),
		metric.WithUnit("{backup}"),
	); err != nil {
		return nil, fmt.Errorf("creating pruned counter: %w", err)
	}

	if e.promptsTotal, err = meter.Int64Counter(
		"mkanban_prompt_requests_total",
		metric.WithDescription("LLM calls made by the prompt generator"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("creating prompt counter: %w", err)
	}

	if e.promptDuration, err = meter.Float64Histogram(
		"mkanban_prompt_duration_seconds",
		metric.WithDescription("LLM call duration in seconds, fallbacks included"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating prompt duration histogram: %w", err)
	}

	return e, nil
}

func (e *Exporter) ExportBackupMetrics(ctx context.Context, m *ports.BackupMetrics) error {
	opt := metric.WithAttributes(attribute.String("result", string(m.Result)))

	e.backupsTotal.Add(ctx, 1, opt)
	e.backupDuration.Record(ctx, m.Duration.Seconds(), opt)
	if m.Result == ports.BackupCreated {
		e.backupBytes.Record(ctx, m.Bytes)
	}
	if m.Pruned > 0 {
		e.prunedTotal.Add(ctx, int64(m.Pruned))
	}
	return nil
}

func (e *Exporter) ExportPromptMetrics(ctx context.Context, m *ports.PromptMetrics) error {
	attrs := []attribute.KeyValue{
		attribute.String("mode", m.Mode),
		attribute.Bool("success", m.Success),
	}
	// An exhausted chain has no winning transport.
	if m.Transport != "" {
		attrs = append(attrs, attribute.String("transport", m.Transport))
	}
	opt := metric.WithAttributes(attrs...)

	e.promptsTotal.Add(ctx, 1, opt)
	e.promptDuration.Record(ctx, m.Duration.Seconds(), opt)
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
