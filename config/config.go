package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetops/rotaplan/core/metrics"
	"github.com/fleetops/rotaplan/core/planner"
)

// Config is the full application configuration.
type Config struct {
	// DataDir holds the ingested CSV tables.
	DataDir string `json:"data_dir"`
	// OutputDir receives reports, the run log and the run counter.
	OutputDir string `json:"output_dir"`
	Planner   planner.Config `json:"planner"`
	Solver    SolverConfig   `json:"solver"`
	Metrics   metrics.Config `json:"metrics"`
	Logging   LoggingConfig  `json:"logging"`
}

// SolverConfig bounds the reference solver. Limits are passed opaquely; the
// core never retries on its own.
type SolverConfig struct {
	// MaxNodes caps the branch-and-bound search; 0 means unlimited.
	MaxNodes int `json:"max_nodes"`
	// TimeLimitSeconds cancels the solve after this many seconds; 0 disables.
	TimeLimitSeconds int `json:"time_limit_seconds"`
}

// Load reads the configuration from a YAML or JSON file, applying optional
// K_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.OutputDir == "" {
		c.OutputDir = "processed_data"
	}
	c.Planner.SetDefaults()
	c.Metrics.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if c.Solver.MaxNodes < 0 {
		return fmt.Errorf("solver: max_nodes must not be negative")
	}
	if c.Solver.TimeLimitSeconds < 0 {
		return fmt.Errorf("solver: time_limit_seconds must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
