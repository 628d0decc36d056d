package config

// Observability configures tracing and logging.
type Observability struct {
	ServiceName    string  `mapstructure:"service_name" validate:"required"`
	ServiceVersion string  `mapstructure:"service_version"`
	Environment    string  `mapstructure:"environment"`
	TracingURL     string  `mapstructure:"tracing_url" validate:"required"`
	TracingSecure  bool    `mapstructure:"tracing_secure"`
	SampleRatio    float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`
	LogLevel       int     `mapstructure:"log_level" validate:"min=0,max=10"`
}
