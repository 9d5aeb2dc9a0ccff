// Package report reads solved variable values back into reporting rows. It
// only consumes final values; nothing here mutates the model or the solution.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/core/model"
	"github.com/fleetops/rotaplan/core/planner"
)

// PlaneWeekStatus is one aircraft-week of the schedule.
type PlaneWeekStatus struct {
	Week       int
	AircraftID int
	EngineTail string // empty when the aircraft is covered by a lease
	Cycles     float64
	Ceiling    float64
	LeaseTag   string // "lease_<k>" numbering the aircraft's leased weeks
	Bought     bool   // a spare was purchased and installed this week
	OverLimit  bool
}

// WeekSummary aggregates one week of the schedule.
type WeekSummary struct {
	Week           int
	FleetSize      int
	InMaintenance  int
	Leased         int
	Purchased      int
	InStock        int
	OverLimit      int
	CumulativeCost float64
}

// RunLog is the metadata row appended to the run log after each solve.
type RunLog struct {
	RunID        string
	RunUUID      string
	Timestamp    time.Time
	Horizon      int
	FleetSize    int
	ExtraEngines int
	LeaseCost    float64
	BuyCost      float64
	Status       string
	TotalCost    float64
	Elapsed      time.Duration
}

func isOne(v float64) bool { return v > 0.5 }

// Extract builds the per-aircraft and per-week report rows from a solved
// model. It must only be called when the solution carries values.
func Extract(sol mip.Solution, vars *planner.Variables, params *model.ParameterSet) ([]PlaneWeekStatus, []WeekSummary, error) {
	if !sol.HasValues() {
		return nil, nil, fmt.Errorf("solution has no values (status %s)", sol.Status)
	}

	n := params.NumAircraft()
	planeRows := make([]PlaneWeekStatus, 0, n*params.Horizon)
	weekRows := make([]WeekSummary, 0, params.Horizon)
	leaseCount := make(map[int]int, n)
	cumCost := 0.0

	for t := 1; t <= params.Horizon; t++ {
		for p := 1; p <= n; p++ {
			engine := 0
			if isOne(sol.Value(vars.Assign[planner.AssignKey{Engine: p, Aircraft: p, Week: t}])) {
				engine = p
			} else {
				for _, i := range params.ExtraIDs() {
					if isOne(sol.Value(vars.Assign[planner.AssignKey{Engine: i, Aircraft: p, Week: t}])) {
						engine = i
						break
					}
				}
			}

			row := PlaneWeekStatus{
				Week:       t,
				AircraftID: p,
				Ceiling:    params.CycleCeiling[p],
			}
			if engine != 0 {
				row.EngineTail = params.EngineTail(engine)
				row.Cycles = math.Round(sol.Value(vars.Cycles[planner.EngineWeek{Engine: engine, Week: t}])*100) / 100
				row.OverLimit = row.Cycles > params.CycleCeiling[engine]
			}
			if isOne(sol.Value(vars.Lease[planner.AircraftWeek{Aircraft: p, Week: t}])) {
				leaseCount[p]++
				row.LeaseTag = fmt.Sprintf("lease_%d", leaseCount[p])
			}
			if engine != 0 && params.IsExtra(engine) {
				row.Bought = isOne(sol.Value(vars.Buy[planner.EngineWeek{Engine: engine, Week: t}]))
			}
			planeRows = append(planeRows, row)
		}

		summary := WeekSummary{Week: t, FleetSize: n}
		for _, e := range params.Engines {
			ew := planner.EngineWeek{Engine: e.ID, Week: t}
			if isOne(sol.Value(vars.MaintActive[ew])) {
				summary.InMaintenance++
			}
			if isOne(sol.Value(vars.Stock[ew])) {
				summary.InStock++
			}
			if sol.Value(vars.Cycles[ew]) > params.CycleCeiling[e.ID] {
				summary.OverLimit++
			}
		}
		for p := 1; p <= n; p++ {
			if isOne(sol.Value(vars.Lease[planner.AircraftWeek{Aircraft: p, Week: t}])) {
				summary.Leased++
				cumCost += params.LeaseCost
			}
		}
		for _, i := range params.ExtraIDs() {
			if isOne(sol.Value(vars.Buy[planner.EngineWeek{Engine: i, Week: t}])) {
				summary.Purchased++
				price, err := params.PurchaseCost(t)
				if err != nil {
					return nil, nil, err
				}
				cumCost += price
			}
		}
		summary.CumulativeCost = cumCost
		weekRows = append(weekRows, summary)
	}

	return planeRows, weekRows, nil
}
