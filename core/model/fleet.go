package model

import (
	"fmt"
)

// Aircraft identifies one fleet tail number. Cycle consumption and ceiling
// are properties of the installed engine, resolved through the aircraft's
// operation code at ingestion time.
type Aircraft struct {
	ID        int    // sequential 1..n, matching the owned engine with the same ID
	Tail      string // registration, e.g. "CC-BGA"
	Operation string // raw operation code from the fleet status table
}

// Engine is a rotable engine. Owned engines carry the tail of their home
// aircraft and may never serve another one; spares have no home and can be
// installed anywhere once purchased.
type Engine struct {
	ID    int
	Tail  string // home aircraft tail for owned engines, "EXTRA_<id>" for spares
	Extra bool
}

// CostMode selects how engine purchases are priced in the objective.
// There is no default: callers must choose one explicitly, because the two
// modes produce materially different optimal schedules.
type CostMode string

const (
	// CostModeConstant applies the single ingested purchase price to every week.
	CostModeConstant CostMode = "constant"
	// CostModeSchedule prices purchases per week from BuyCostByWeek. Every week
	// of the horizon must be present in the schedule.
	CostModeSchedule CostMode = "schedule"
)

// ParameterSet is the immutable input of the planner: fleet, engines, horizon
// and all per-entity rates, ceilings and costs. It is produced by ingestion
// and validated before any model construction begins.
type ParameterSet struct {
	Aircraft []Aircraft // IDs 1..n
	Engines  []Engine   // owned engines 1..n followed by purchasable spares

	Horizon int // planning weeks 1..Horizon

	WeeklyCycles  map[int]float64 // aircraft ID -> cycles consumed per week
	CycleCeiling  map[int]float64 // engine ID -> certified cycle limit
	InitialCycles map[int]float64 // engine ID -> accumulated cycles at week 0

	LeaseCost     float64
	BuyCost       float64
	BuyCostByWeek map[int]float64 // required iff CostMode == CostModeSchedule
	CostMode      CostMode

	MaintenanceWeeks int     // d: weeks an engine is unavailable once maintenance starts
	InitialStock     float64 // S0: spares in stock at the start of week 1
	BayCapacity      int     // M_max: engines that may start maintenance per week

	MaxCeiling float64 // max owned ceiling, bounds the in-maintenance relaxation for spares
}

// NumAircraft returns the fleet size n. Owned engines share IDs 1..n.
func (ps *ParameterSet) NumAircraft() int { return len(ps.Aircraft) }

// IsExtra reports whether engine id is a purchasable spare.
func (ps *ParameterSet) IsExtra(id int) bool { return id > ps.NumAircraft() }

// ExtraIDs returns the IDs of the purchasable spare engines.
func (ps *ParameterSet) ExtraIDs() []int {
	ids := make([]int, 0, len(ps.Engines)-ps.NumAircraft())
	for _, e := range ps.Engines {
		if e.Extra {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// EngineTail returns the display tail for an engine ID.
func (ps *ParameterSet) EngineTail(id int) string {
	if id >= 1 && id <= len(ps.Engines) {
		return ps.Engines[id-1].Tail
	}
	return fmt.Sprintf("ENGINE_%d", id)
}

// PurchaseCost returns the purchase price applied at the given week under the
// configured cost mode.
func (ps *ParameterSet) PurchaseCost(week int) (float64, error) {
	switch ps.CostMode {
	case CostModeConstant:
		return ps.BuyCost, nil
	case CostModeSchedule:
		price, ok := ps.BuyCostByWeek[week]
		if !ok {
			return 0, fmt.Errorf("purchase cost schedule has no entry for week %d", week)
		}
		return price, nil
	default:
		return 0, fmt.Errorf("cost mode %q is not set to a known value", ps.CostMode)
	}
}

// BigM returns the linearization constant for the cycle-reset constraints.
// It must dominate any reachable cycle balance: a spare may temporarily sit at
// its ceiling plus the global relaxation while in maintenance.
func (ps *ParameterSet) BigM() float64 {
	maxGain := 0.0
	for _, g := range ps.WeeklyCycles {
		if g > maxGain {
			maxGain = g
		}
	}
	return 2*ps.MaxCeiling + maxGain
}

// Validate checks the parameter set for completeness and consistency. It is
// called before model construction so that bad inputs fail fast with a
// descriptive error instead of surfacing as solver infeasibility.
func (ps *ParameterSet) Validate() error {
	n := ps.NumAircraft()
	if n == 0 {
		return fmt.Errorf("parameter set has no aircraft")
	}
	if len(ps.Engines) < n {
		return fmt.Errorf("parameter set has %d engines for %d aircraft", len(ps.Engines), n)
	}
	if ps.Horizon < 1 {
		return fmt.Errorf("horizon must be at least one week, got %d", ps.Horizon)
	}
	if ps.MaintenanceWeeks < 1 {
		return fmt.Errorf("maintenance duration must be at least one week, got %d", ps.MaintenanceWeeks)
	}
	if ps.BayCapacity < 0 {
		return fmt.Errorf("maintenance bay capacity must not be negative, got %d", ps.BayCapacity)
	}
	if ps.InitialStock < 0 {
		return fmt.Errorf("initial stock must not be negative, got %v", ps.InitialStock)
	}
	if ps.LeaseCost < 0 {
		return fmt.Errorf("lease cost must not be negative, got %v", ps.LeaseCost)
	}
	for idx, ac := range ps.Aircraft {
		if ac.ID != idx+1 {
			return fmt.Errorf("aircraft IDs must be sequential from 1: index %d has ID %d", idx, ac.ID)
		}
		if _, ok := ps.WeeklyCycles[ac.ID]; !ok {
			return fmt.Errorf("aircraft %s (ID %d) has no weekly cycle rate", ac.Tail, ac.ID)
		}
	}
	maxCeil := 0.0
	for idx, e := range ps.Engines {
		if e.ID != idx+1 {
			return fmt.Errorf("engine IDs must be sequential from 1: index %d has ID %d", idx, e.ID)
		}
		if e.Extra != ps.IsExtra(e.ID) {
			return fmt.Errorf("engine %d: spare flag does not match its position after the %d owned engines", e.ID, n)
		}
		ceiling, ok := ps.CycleCeiling[e.ID]
		if !ok {
			return fmt.Errorf("engine %s (ID %d) has no cycle ceiling", e.Tail, e.ID)
		}
		if ceiling <= 0 {
			return fmt.Errorf("engine %s (ID %d): cycle ceiling must be positive, got %v", e.Tail, e.ID, ceiling)
		}
		if ceiling > maxCeil {
			maxCeil = ceiling
		}
		y0, ok := ps.InitialCycles[e.ID]
		if !ok {
			return fmt.Errorf("engine %s (ID %d) has no initial cycle count", e.Tail, e.ID)
		}
		if y0 < 0 || y0 > ceiling {
			return fmt.Errorf("engine %s (ID %d): initial cycles %v outside [0, %v]", e.Tail, e.ID, y0, ceiling)
		}
		if e.Extra && y0 != 0 {
			return fmt.Errorf("spare engine %d must start with zero cycles, got %v", e.ID, y0)
		}
	}
	// MaxCeiling parameterizes the reset linearization constant and the
	// in-maintenance relaxation for spares; a value below the largest engine
	// ceiling would silently cut feasible schedules instead of failing here.
	if ps.MaxCeiling < maxCeil {
		return fmt.Errorf("max ceiling %v does not cover the largest engine ceiling %v", ps.MaxCeiling, maxCeil)
	}
	switch ps.CostMode {
	case CostModeConstant:
		if ps.BuyCost < 0 {
			return fmt.Errorf("purchase cost must not be negative, got %v", ps.BuyCost)
		}
	case CostModeSchedule:
		for t := 1; t <= ps.Horizon; t++ {
			if _, ok := ps.BuyCostByWeek[t]; !ok {
				return fmt.Errorf("purchase cost schedule is missing week %d", t)
			}
		}
	default:
		return fmt.Errorf("cost mode must be %q or %q, got %q", CostModeConstant, CostModeSchedule, ps.CostMode)
	}
	return nil
}
