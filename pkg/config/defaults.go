// Package config defines the solver configuration and its defaults.
package config

import (
	"fmt"
	"strings"
)

// SolverConfig is the user-facing configuration, bound from flags, the config
// file and MKP_* environment variables.
type SolverConfig struct {
	// Input is a local path or an s3://bucket/key URI.
	Input string `mapstructure:"input"`
	// Trials is the number of randomized multi-start trials.
	Trials int `mapstructure:"trials"`
	// Seed fixes the randomized trials. Zero derives one from the clock.
	Seed uint64 `mapstructure:"seed"`
	// Workers bounds parallel trial evaluation. Zero uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// Heuristics lists what to run, in order.
	Heuristics []string `mapstructure:"heuristics"`

	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type OutputConfig struct {
	// Export is a file, directory (trailing slash) or s3:// URI for the report.
	Export string `mapstructure:"export"`
	// Format is json, yaml or csv.
	Format string `mapstructure:"format"`
	// MetricsTextfile is a Prometheus textfile path.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
	NoColor         bool   `mapstructure:"no_color"`
	JSONLogs        bool   `mapstructure:"json_logs"`
	Verbose         bool   `mapstructure:"verbose"`
}

type TelemetryConfig struct {
	// OtelEndpoint overrides OTEL_EXPORTER_OTLP_ENDPOINT.
	OtelEndpoint string `mapstructure:"otel_endpoint"`
	Disabled     bool   `mapstructure:"disabled"`
}

// Defaults.
const (
	DefaultInput  = "input.txt"
	DefaultTrials = 10
	DefaultFormat = "json"
)

// DefaultSolverConfig returns default solver values.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Input:      DefaultInput,
		Trials:     DefaultTrials,
		Heuristics: []string{"greedy", "random"},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
	}
}

// Validate rejects values no run can use.
func (c SolverConfig) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input must not be empty")
	}
	if c.Trials < 0 {
		return fmt.Errorf("trial count must not be negative (got %d)", c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative (got %d)", c.Workers)
	}
	if len(c.Heuristics) == 0 {
		return fmt.Errorf("at least one heuristic is required")
	}
	for _, h := range c.Heuristics {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "greedy", "random":
		default:
			return fmt.Errorf("unknown heuristic %q", h)
		}
	}
	switch strings.ToLower(c.Output.Format) {
	case "json", "yaml", "yml", "csv":
	default:
		return fmt.Errorf("unknown export format %q", c.Output.Format)
	}
	return nil
}
