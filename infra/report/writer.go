// Package report emits the solved schedule as CSV files and maintains the
// cumulative run log. Reports are written only when a feasible solution
// exists; the caller decides that.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	corereport "github.com/fleetops/rotaplan/core/report"
)

// Writer emits report files under a base output directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a Writer rooted at dir. Reports land in dir/reports, the
// run log in dir/run_log.csv.
func NewWriter(dir string) *Writer {
	return &Writer{baseDir: dir}
}

func (w *Writer) reportsDir() (string, error) {
	dir := filepath.Join(w.baseDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// WritePlaneStatus writes the per-aircraft weekly schedule and returns the
// file path.
func (w *Writer) WritePlaneStatus(runID string, horizon int, rows []corereport.PlaneWeekStatus) (string, error) {
	dir, err := w.reportsDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_plane_weekly_status_T%d.csv", runID, horizon))
	records := [][]string{{"week", "aircraft_id", "engine", "cycles", "ceiling", "leased", "bought", "over_limit"}}
	for _, r := range rows {
		bought := ""
		if r.Bought {
			bought = "buy"
		}
		records = append(records, []string{
			strconv.Itoa(r.Week),
			strconv.Itoa(r.AircraftID),
			r.EngineTail,
			strconv.FormatFloat(r.Cycles, 'f', 2, 64),
			strconv.FormatFloat(r.Ceiling, 'f', -1, 64),
			r.LeaseTag,
			bought,
			strconv.FormatBool(r.OverLimit),
		})
	}
	return path, writeCSV(path, records)
}

// WriteWeeklySummary writes the per-week aggregates and returns the file path.
func (w *Writer) WriteWeeklySummary(runID string, horizon int, rows []corereport.WeekSummary) (string, error) {
	dir, err := w.reportsDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_weekly_report_T%d.csv", runID, horizon))
	records := [][]string{{"week", "fleet_size", "in_maintenance", "leased", "purchased", "in_stock", "over_limit", "cumulative_cost"}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Week),
			strconv.Itoa(r.FleetSize),
			strconv.Itoa(r.InMaintenance),
			strconv.Itoa(r.Leased),
			strconv.Itoa(r.Purchased),
			strconv.Itoa(r.InStock),
			strconv.Itoa(r.OverLimit),
			strconv.FormatFloat(r.CumulativeCost, 'f', 2, 64),
		})
	}
	return path, writeCSV(path, records)
}

// AppendRunLog appends the run metadata row, writing the header first when
// the log does not exist yet.
func (w *Writer) AppendRunLog(entry corereport.RunLog) error {
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.baseDir, "run_log.csv")
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if newFile {
		if err := cw.Write([]string{"run_id", "run_uuid", "timestamp", "horizon", "fleet_size", "extra_engines", "lease_cost", "buy_cost", "status", "total_cost", "runtime_s"}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{
		entry.RunID,
		entry.RunUUID,
		entry.Timestamp.Format(time.RFC3339),
		strconv.Itoa(entry.Horizon),
		strconv.Itoa(entry.FleetSize),
		strconv.Itoa(entry.ExtraEngines),
		strconv.FormatFloat(entry.LeaseCost, 'f', -1, 64),
		strconv.FormatFloat(entry.BuyCost, 'f', -1, 64),
		entry.Status,
		strconv.FormatFloat(entry.TotalCost, 'f', 2, 64),
		strconv.FormatFloat(entry.Elapsed.Seconds(), 'f', 2, 64),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	cw := csv.NewWriter(file)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
