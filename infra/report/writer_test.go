package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corereport "github.com/fleetops/rotaplan/core/report"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWritePlaneStatus(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	rows := []corereport.PlaneWeekStatus{
		{Week: 1, AircraftID: 1, EngineTail: "CC-BGA", Cycles: 1221.5, Ceiling: 1500},
		{Week: 2, AircraftID: 1, LeaseTag: "lease_1", Ceiling: 1500},
		{Week: 2, AircraftID: 2, EngineTail: "EXTRA_3", Cycles: 14, Ceiling: 1500, Bought: true},
	}
	path, err := w.WritePlaneStatus("run001", 54, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "run001_plane_weekly_status_T54.csv"), path)

	records := readCSV(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"week", "aircraft_id", "engine", "cycles", "ceiling", "leased", "bought", "over_limit"}, records[0])
	assert.Equal(t, []string{"1", "1", "CC-BGA", "1221.50", "1500", "", "", "false"}, records[1])
	assert.Equal(t, "lease_1", records[2][5])
	assert.Equal(t, "buy", records[3][6])
}

func TestWriteWeeklySummary(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	rows := []corereport.WeekSummary{
		{Week: 1, FleetSize: 2},
		{Week: 2, FleetSize: 2, InMaintenance: 1, Leased: 1, CumulativeCost: 100},
	}
	path, err := w.WriteWeeklySummary("run002", 4, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "run002_weekly_report_T4.csv"), path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2", "2", "1", "1", "0", "0", "0", "100.00"}, records[2])
}

func TestAppendRunLogWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	entry := corereport.RunLog{
		RunID:     "run001",
		RunUUID:   "3f2c2f6e-0000-0000-0000-000000000000",
		Timestamp: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Horizon:   54,
		FleetSize: 2,
		LeaseCost: 100,
		BuyCost:   500,
		Status:    "optimal",
		TotalCost: 600,
		Elapsed:   1500 * time.Millisecond,
	}
	require.NoError(t, w.AppendRunLog(entry))
	entry.RunID = "run002"
	require.NoError(t, w.AppendRunLog(entry))

	records := readCSV(t, filepath.Join(dir, "run_log.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, "run_id", records[0][0])
	assert.Equal(t, "run001", records[1][0])
	assert.Equal(t, "run002", records[2][0])
	assert.Equal(t, "optimal", records[1][8])
	assert.Equal(t, "600.00", records[1][9])
	assert.Equal(t, "1.50", records[1][10])
}
