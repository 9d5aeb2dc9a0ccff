package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/rotaplan/core/model"
	"github.com/fleetops/rotaplan/core/planner"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeDataset(t *testing.T, dir string) {
	writeDataFile(t, dir, "fleet_status.csv", `tail,operation,cycles
CC-BGA,B777-F,1200
CC-BGB,B767 300F,300
`)
	writeDataFile(t, dir, "operations_cycles.csv", `aircraft,daily_cycles
B777,3
B767,2
`)
	writeDataFile(t, dir, "max_cycles.csv", `aircraft_family,max_cycles
B777,1500
B767,900
`)
	writeDataFile(t, dir, "engine_info.csv", `action,price
Lease for week,100
Buy,500
`)
}

func testConfig() planner.Config {
	return planner.Config{
		HorizonWeeks:     4,
		ExtraEngines:     1,
		MaintenanceWeeks: 2,
		BayCapacity:      1,
		CostMode:         model.CostModeConstant,
	}
}

func TestLoadAssemblesParameterSet(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	ps, err := Load(dir, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, ps.NumAircraft())
	require.Len(t, ps.Engines, 3)
	assert.Equal(t, "CC-BGA", ps.Aircraft[0].Tail)
	assert.Equal(t, []int{3}, ps.ExtraIDs())
	assert.Equal(t, "EXTRA_3", ps.Engines[2].Tail)

	// Daily rates become weekly rates.
	assert.Equal(t, 21.0, ps.WeeklyCycles[1])
	assert.Equal(t, 14.0, ps.WeeklyCycles[2])

	assert.Equal(t, 1500.0, ps.CycleCeiling[1])
	assert.Equal(t, 900.0, ps.CycleCeiling[2])
	// Spares get the loosest ceiling observed in the fleet.
	assert.Equal(t, 1500.0, ps.MaxCeiling)
	assert.Equal(t, 1500.0, ps.CycleCeiling[3])
	assert.Equal(t, 0.0, ps.InitialCycles[3])

	assert.Equal(t, 1200.0, ps.InitialCycles[1])
	assert.Equal(t, 100.0, ps.LeaseCost)
	assert.Equal(t, 500.0, ps.BuyCost)
	assert.Equal(t, 4, ps.Horizon)
	assert.Equal(t, 2, ps.MaintenanceWeeks)
}

func TestLoadLongestPrefixWins(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeDataFile(t, dir, "max_cycles.csv", `aircraft_family,max_cycles
B777,1500
B777F,2000
B767,900
`)

	ps, err := Load(dir, testConfig())
	require.NoError(t, err)
	// "B777-F" normalizes to B777F and must hit the specific family, not the
	// generic B777 prefix.
	assert.Equal(t, 2000.0, ps.CycleCeiling[1])
	assert.Equal(t, 2000.0, ps.MaxCeiling)
}

func TestLoadUnmappedOperation(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeDataFile(t, dir, "fleet_status.csv", `tail,operation,cycles
CC-BGA,A320,1200
`)

	_, err := Load(dir, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cycle rate mapped")
	assert.Contains(t, err.Error(), "A320")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required data file fleet_status.csv")
}

func TestLoadHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeDataFile(t, dir, "fleet_status.csv", `registration,operation,cycles
CC-BGA,B777-F,1200
`)

	_, err := Load(dir, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header mismatch")
}

func TestLoadBadNumericValue(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeDataFile(t, dir, "fleet_status.csv", `tail,operation,cycles
CC-BGA,B777-F,lots
`)

	_, err := Load(dir, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad cycle count")
}

func TestLoadMissingPriceAction(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeDataFile(t, dir, "engine_info.csv", `action,price
Lease for week,100
`)

	_, err := Load(dir, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no price row for action "Buy"`)
}

func TestLoadRejectsInvalidPlannerConfig(t *testing.T) {
	cfg := testConfig()
	cfg.CostMode = ""
	_, err := Load(t.TempDir(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner config")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "B777F", normalize("B777-F"))
	assert.Equal(t, "B777F", normalize("b777 f"))
	assert.Equal(t, "B767300F", normalize("B767 300F"))
}
