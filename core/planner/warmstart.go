package planner

import (
	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/core/model"
)

// WarmStart writes a greedy feasible assignment onto the declared variables
// as initial-value hints for the solver. Each aircraft keeps its home engine
// while the running cycle balance stays under the ceiling and is leased
// otherwise; the heuristic never proposes maintenance, purchases or
// cross-aircraft reuse. It is a pure function of the parameter set: running
// it twice produces identical hints.
func WarmStart(m *mip.Model, vars *Variables, params *model.ParameterSet) {
	for _, v := range vars.Assign {
		m.SetStart(v, 0)
	}
	for _, v := range vars.Lease {
		m.SetStart(v, 0)
	}
	for _, v := range vars.Buy {
		m.SetStart(v, 0)
	}

	// Running balance per owned engine, seeded with the initial cycles. Only
	// the (engine == aircraft) pair is ever checked, consistent with the
	// sparse assignment indexing.
	balance := make(map[int]float64, params.NumAircraft())
	for _, ac := range params.Aircraft {
		balance[ac.ID] = params.InitialCycles[ac.ID]
	}

	for t := 1; t <= params.Horizon; t++ {
		for _, ac := range params.Aircraft {
			p := ac.ID
			rate := params.WeeklyCycles[p]
			if balance[p]+rate <= params.CycleCeiling[p] {
				m.SetStart(vars.Assign[AssignKey{Engine: p, Aircraft: p, Week: t}], 1)
				balance[p] += rate
			} else {
				m.SetStart(vars.Lease[AircraftWeek{Aircraft: p, Week: t}], 1)
			}
		}
	}
}
