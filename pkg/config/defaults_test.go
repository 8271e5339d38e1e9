package config

import (
	"testing"
)

func TestDefaultSolverConfig(t *testing.T) {
	config := DefaultSolverConfig()

	if config.Input != "input.txt" {
		t.Errorf("Expected Input input.txt, got %q", config.Input)
	}

	if config.Trials != 10 {
		t.Errorf("Expected Trials 10, got %d", config.Trials)
	}

	if len(config.Heuristics) != 2 || config.Heuristics[0] != "greedy" || config.Heuristics[1] != "random" {
		t.Errorf("Expected heuristics [greedy random], got %v", config.Heuristics)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestSolverConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SolverConfig)
	}{
		{"empty input", func(c *SolverConfig) { c.Input = "" }},
		{"negative trials", func(c *SolverConfig) { c.Trials = -1 }},
		{"negative workers", func(c *SolverConfig) { c.Workers = -2 }},
		{"no heuristics", func(c *SolverConfig) { c.Heuristics = nil }},
		{"unknown heuristic", func(c *SolverConfig) { c.Heuristics = []string{"tabu"} }},
		{"unknown format", func(c *SolverConfig) { c.Output.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultSolverConfig()
			tt.mutate(&config)
			if err := config.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}

	config := DefaultSolverConfig()
	config.Trials = 0
	if err := config.Validate(); err != nil {
		t.Errorf("Zero trials is a valid run: %v", err)
	}
}
