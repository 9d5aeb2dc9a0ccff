package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/rotaplan/core/model"
)

const sampleYAML = `
data_dir: testdata
planner:
  horizon_weeks: 6
  extra_engines: 2
  maintenance_weeks: 2
  bay_capacity: 1
  cost_mode: constant
solver:
  max_nodes: 1000
  time_limit_seconds: 30
logging:
  level: debug
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "testdata", cfg.DataDir)
	assert.Equal(t, 6, cfg.Planner.HorizonWeeks)
	assert.Equal(t, 2, cfg.Planner.ExtraEngines)
	assert.Equal(t, model.CostModeConstant, cfg.Planner.CostMode)
	assert.Equal(t, 1000, cfg.Solver.MaxNodes)
	assert.Equal(t, 30, cfg.Solver.TimeLimitSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Defaults fill the unset sections.
	assert.Equal(t, "processed_data", cfg.OutputDir)
	assert.Equal(t, "rotaplan", cfg.Metrics.JobName)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json",
		`{"planner": {"horizon_weeks": 4, "cost_mode": "constant"}}`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Planner.HorizonWeeks)
	// Planner defaults apply on top of the file.
	assert.Equal(t, 3, cfg.Planner.ExtraEngines)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_DATA_DIR", "/srv/rotaplan")
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "/srv/rotaplan", cfg.DataDir)
}

func TestLoadRejectsMissingCostMode(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", `
planner:
  horizon_weeks: 4
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cost_mode")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", `
planner:
  cost_mode: constant
logging:
  level: shouting
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadRejectsNegativeSolverLimits(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", `
planner:
  cost_mode: constant
solver:
  max_nodes: -1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_nodes")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoggingApply(t *testing.T) {
	c := LoggingConfig{Level: "warn"}
	require.NoError(t, c.Validate())
	c.Apply()

	bad := LoggingConfig{Level: "shouting"}
	assert.Error(t, bad.Validate())
}
