// Package ingest loads the planner's Parameter Set from the operational CSV
// tables. Lookups are resolved by normalized operation-code prefix; any
// unmapped code or missing file fails fast with a descriptive error before
// model construction begins.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fleetops/rotaplan/core/model"
	"github.com/fleetops/rotaplan/core/planner"
)

const (
	fleetStatusFile = "fleet_status.csv"
	cyclesFile      = "operations_cycles.csv"
	maxCyclesFile   = "max_cycles.csv"
	engineInfoFile  = "engine_info.csv"
)

var codeCleaner = regexp.MustCompile(`[-\s]`)

// normalize strips separators and upper-cases a code so that e.g. "B777-F"
// and "b777 f" compare equal.
func normalize(code string) string {
	return strings.ToUpper(codeCleaner.ReplaceAllString(code, ""))
}

// Load reads all data files from dir and assembles a validated ParameterSet
// using the planning parameters from cfg.
func Load(dir string, cfg planner.Config) (*model.ParameterSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}

	fleet, err := readRows(filepath.Join(dir, fleetStatusFile), []string{"tail", "operation", "cycles"})
	if err != nil {
		return nil, err
	}
	rateRows, err := readRows(filepath.Join(dir, cyclesFile), []string{"aircraft", "daily_cycles"})
	if err != nil {
		return nil, err
	}
	ceilingRows, err := readRows(filepath.Join(dir, maxCyclesFile), []string{"aircraft_family", "max_cycles"})
	if err != nil {
		return nil, err
	}
	priceRows, err := readRows(filepath.Join(dir, engineInfoFile), []string{"action", "price"})
	if err != nil {
		return nil, err
	}

	// Daily rates become weekly rates here; the model is week-indexed.
	rates := make(map[string]float64, len(rateRows))
	for i, row := range rateRows {
		daily, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad daily cycle value %q", cyclesFile, i+2, row[1])
		}
		rates[normalize(row[0])] = daily * 7
	}
	ceilings := make(map[string]float64, len(ceilingRows))
	for i, row := range ceilingRows {
		c, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad max cycles value %q", maxCyclesFile, i+2, row[1])
		}
		ceilings[normalize(row[0])] = c
	}

	leaseCost, err := priceFor(priceRows, "Lease for week")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", engineInfoFile, err)
	}
	buyCost, err := priceFor(priceRows, "Buy")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", engineInfoFile, err)
	}

	n := len(fleet)
	if n == 0 {
		return nil, fmt.Errorf("%s contains no aircraft", fleetStatusFile)
	}

	ps := &model.ParameterSet{
		Horizon:          cfg.HorizonWeeks,
		WeeklyCycles:     make(map[int]float64, n),
		CycleCeiling:     make(map[int]float64, n+cfg.ExtraEngines),
		InitialCycles:    make(map[int]float64, n+cfg.ExtraEngines),
		LeaseCost:        leaseCost,
		BuyCost:          buyCost,
		BuyCostByWeek:    cfg.ScheduleMap(),
		CostMode:         cfg.CostMode,
		MaintenanceWeeks: cfg.MaintenanceWeeks,
		InitialStock:     cfg.InitialStock,
		BayCapacity:      cfg.BayCapacity,
	}

	for idx, row := range fleet {
		id := idx + 1
		tail, op := row[0], row[1]
		y0, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad cycle count %q for %s", fleetStatusFile, idx+2, row[2], tail)
		}
		rate, ok := matchPrefix(rates, op)
		if !ok {
			return nil, fmt.Errorf("no cycle rate mapped for operation %q (aircraft %s)", op, tail)
		}
		ceiling, ok := matchPrefix(ceilings, op)
		if !ok {
			return nil, fmt.Errorf("no cycle ceiling mapped for operation %q (aircraft %s)", op, tail)
		}
		ps.Aircraft = append(ps.Aircraft, model.Aircraft{ID: id, Tail: tail, Operation: op})
		ps.Engines = append(ps.Engines, model.Engine{ID: id, Tail: tail})
		ps.WeeklyCycles[id] = rate
		ps.CycleCeiling[id] = ceiling
		ps.InitialCycles[id] = y0
		if ceiling > ps.MaxCeiling {
			ps.MaxCeiling = ceiling
		}
	}

	// Purchasable spares: no home aircraft, zero cycles, the loosest ceiling
	// observed in the fleet.
	for k := 0; k < cfg.ExtraEngines; k++ {
		id := n + k + 1
		ps.Engines = append(ps.Engines, model.Engine{ID: id, Tail: fmt.Sprintf("EXTRA_%d", id), Extra: true})
		ps.CycleCeiling[id] = ps.MaxCeiling
		ps.InitialCycles[id] = 0
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// matchPrefix finds the table entry whose normalized code prefixes the
// normalized operation. The longest code wins, so a more specific family
// beats its generic prefix.
func matchPrefix(table map[string]float64, operation string) (float64, bool) {
	op := normalize(operation)
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	for _, code := range codes {
		if strings.HasPrefix(op, code) {
			return table[code], true
		}
	}
	return 0, false
}

func priceFor(rows [][]string, action string) (float64, error) {
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row[0]), action) {
			price, err := strconv.ParseFloat(row[1], 64)
			if err != nil {
				return 0, fmt.Errorf("bad price %q for action %q", row[1], action)
			}
			return price, nil
		}
	}
	return 0, fmt.Errorf("no price row for action %q", action)
}

// readRows opens a CSV file, validates its header and returns the data rows.
func readRows(path string, header []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("required data file %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s must have a header and at least one data row", filepath.Base(path))
	}
	got := records[0]
	if len(got) != len(header) {
		return nil, fmt.Errorf("%s header mismatch: expected %v, got %v", filepath.Base(path), header, got)
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(got[i]), header[i]) {
			return nil, fmt.Errorf("%s header mismatch: expected %v, got %v", filepath.Base(path), header, got)
		}
	}
	for i, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", filepath.Base(path), i+2, len(header), len(row))
		}
	}
	return records[1:], nil
}
