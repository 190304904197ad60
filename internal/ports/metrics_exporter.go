package ports

import (
	"context"
	"time"
)

// MetricsExporter exports board metrics to an external observability system.
type MetricsExporter interface {
	// ExportBackupMetrics records the outcome of one backup run.
	ExportBackupMetrics(ctx context.Context, m *BackupMetrics) error
	// ExportPromptMetrics records one LLM call made by the prompt generator.
	ExportPromptMetrics(ctx context.Context, m *PromptMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// BackupResult is the outcome label of a backup run.
type BackupResult string

const (
	BackupCreated BackupResult = "created"
	BackupSkipped BackupResult = "skipped"
	BackupFailed  BackupResult = "failed"
)

type BackupMetrics struct {
	Result       BackupResult
	Bytes        int64
	ProjectCount int
	TaskCount    int
	Pruned       int
	Duration     time.Duration
}

type PromptMetrics struct {
	Mode      string
	Transport string
	Success   bool
	Duration  time.Duration
}
