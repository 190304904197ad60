package otel

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string `envconfig:"KANBAN_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"KANBAN_OTEL_ENABLED" default:"false"`
	Insecure bool   `envconfig:"KANBAN_OTEL_INSECURE" default:"false"`
}
