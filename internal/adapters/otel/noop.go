package otel

import (
	"context"

	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportBackupMetrics(ctx context.Context, m *ports.BackupMetrics) error {
	return nil
}

func (e *NoOpExporter) ExportPromptMetrics(ctx context.Context, m *ports.PromptMetrics) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
