package planner

import (
	"fmt"
	"math"

	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/core/model"
)

// AssignKey indexes an installation variable: engine i on aircraft p in week t.
type AssignKey struct {
	Engine, Aircraft, Week int
}

// EngineWeek indexes a per-engine weekly variable.
type EngineWeek struct {
	Engine, Week int
}

// AircraftWeek indexes a per-aircraft weekly variable.
type AircraftWeek struct {
	Aircraft, Week int
}

// Variables holds the handles of every declared decision variable. Assignment
// keys are sparse: an owned engine only has keys for its home aircraft, so
// cross-aircraft installation of owned engines is structurally impossible
// rather than forbidden by constraint.
type Variables struct {
	Assign      map[AssignKey]mip.Var   // binary: engine installed on aircraft
	Stock       map[EngineWeek]mip.Var  // binary: engine in stock
	MaintStart  map[EngineWeek]mip.Var  // binary: maintenance begins this week
	MaintActive map[EngineWeek]mip.Var  // binary: maintenance ongoing
	Cycles      map[EngineWeek]mip.Var  // continuous: accumulated cycles
	Lease       map[AircraftWeek]mip.Var // binary: aircraft covered by a leased engine
	Buy         map[EngineWeek]mip.Var  // binary: spare purchased this week (spares only)
	Inventory   map[int]mip.Var         // continuous: spares in stock per week
}

// AssignedTo returns the installation variables that can cover aircraft p in
// week t: the home engine plus every spare.
func (v *Variables) AssignedTo(p, t int, params *model.ParameterSet) []mip.Var {
	out := make([]mip.Var, 0, 1+len(params.Engines)-params.NumAircraft())
	if av, ok := v.Assign[AssignKey{Engine: p, Aircraft: p, Week: t}]; ok {
		out = append(out, av)
	}
	for _, i := range params.ExtraIDs() {
		if av, ok := v.Assign[AssignKey{Engine: i, Aircraft: p, Week: t}]; ok {
			out = append(out, av)
		}
	}
	return out
}

// Build declares the full decision model for the parameter set: variables
// restricted to structurally valid index combinations, every feasibility and
// business constraint, and the lease-plus-purchase cost objective. The model
// is purely declarative; infeasible inputs only surface when solved.
func Build(params *model.ParameterSet) (*mip.Model, *Variables, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid parameter set: %w", err)
	}

	n := params.NumAircraft()
	H := params.Horizon
	d := params.MaintenanceWeeks
	extras := params.ExtraIDs()
	engines := make([]int, len(params.Engines))
	for idx := range params.Engines {
		engines[idx] = idx + 1
	}

	m := mip.NewModel("engine_rotation")
	vars := &Variables{
		Assign:      make(map[AssignKey]mip.Var),
		Stock:       make(map[EngineWeek]mip.Var),
		MaintStart:  make(map[EngineWeek]mip.Var),
		MaintActive: make(map[EngineWeek]mip.Var),
		Cycles:      make(map[EngineWeek]mip.Var),
		Lease:       make(map[AircraftWeek]mip.Var),
		Buy:         make(map[EngineWeek]mip.Var),
		Inventory:   make(map[int]mip.Var),
	}

	// Installation variables, sparse form: owned engines pair only with their
	// home aircraft, spares pair with every aircraft.
	for i := 1; i <= n; i++ {
		for t := 1; t <= H; t++ {
			vars.Assign[AssignKey{i, i, t}] = m.NewBinary(fmt.Sprintf("assign_%d_%d_%d", i, i, t))
		}
	}
	for _, i := range extras {
		for p := 1; p <= n; p++ {
			for t := 1; t <= H; t++ {
				vars.Assign[AssignKey{i, p, t}] = m.NewBinary(fmt.Sprintf("assign_%d_%d_%d", i, p, t))
			}
		}
	}
	for _, i := range engines {
		for t := 1; t <= H; t++ {
			vars.Stock[EngineWeek{i, t}] = m.NewBinary(fmt.Sprintf("stock_%d_%d", i, t))
			vars.MaintStart[EngineWeek{i, t}] = m.NewBinary(fmt.Sprintf("mstart_%d_%d", i, t))
			vars.MaintActive[EngineWeek{i, t}] = m.NewBinary(fmt.Sprintf("mactive_%d_%d", i, t))
			vars.Cycles[EngineWeek{i, t}] = m.NewContinuous(fmt.Sprintf("cycles_%d_%d", i, t), 0, math.Inf(1))
		}
	}
	for t := 1; t <= H; t++ {
		vars.Inventory[t] = m.NewContinuous(fmt.Sprintf("inventory_%d", t), 0, math.Inf(1))
	}
	for p := 1; p <= n; p++ {
		for t := 1; t <= H; t++ {
			vars.Lease[AircraftWeek{p, t}] = m.NewBinary(fmt.Sprintf("lease_%d_%d", p, t))
		}
	}
	for _, i := range extras {
		for t := 1; t <= H; t++ {
			vars.Buy[EngineWeek{i, t}] = m.NewBinary(fmt.Sprintf("buy_%d_%d", i, t))
		}
	}

	// buyCum is the cumulative-ownership indicator gating every state
	// variable of a spare engine.
	buyCum := func(i, t int) *mip.LinExpr {
		e := mip.NewLinExpr()
		for tau := 1; tau <= t; tau++ {
			e.Add(vars.Buy[EngineWeek{i, tau}])
		}
		return e
	}
	// gain is the cycles engine i accumulates in week t given its assignments.
	gain := func(i, t int) *mip.LinExpr {
		e := mip.NewLinExpr()
		if i <= n {
			e.AddTerm(vars.Assign[AssignKey{i, i, t}], params.WeeklyCycles[i])
		} else {
			for p := 1; p <= n; p++ {
				e.AddTerm(vars.Assign[AssignKey{i, p, t}], params.WeeklyCycles[p])
			}
		}
		return e
	}

	// Week 1 is fully pinned: owned engines fly their home aircraft, nothing
	// is in maintenance or stock, spares are absent.
	for _, i := range engines {
		if i <= n {
			m.AddConstr(mip.NewLinExpr().Add(vars.Assign[AssignKey{i, i, 1}]), mip.Equal, 1,
				fmt.Sprintf("init_assign_%d", i))
		} else {
			for p := 1; p <= n; p++ {
				m.AddConstr(mip.NewLinExpr().Add(vars.Assign[AssignKey{i, p, 1}]), mip.Equal, 0,
					fmt.Sprintf("init_no_assign_%d_%d", i, p))
			}
		}
		m.AddConstr(mip.NewLinExpr().Add(vars.MaintActive[EngineWeek{i, 1}]), mip.Equal, 0,
			fmt.Sprintf("init_no_maint_%d", i))
		m.AddConstr(mip.NewLinExpr().Add(vars.Stock[EngineWeek{i, 1}]), mip.Equal, 0,
			fmt.Sprintf("init_no_stock_%d", i))
	}

	// Exactly-one-state per engine and week. For spares the right-hand side is
	// the cumulative purchase indicator: all states stay zero until bought.
	for _, i := range engines {
		for t := 1; t <= H; t++ {
			e := mip.NewLinExpr()
			if i <= n {
				e.Add(vars.Assign[AssignKey{i, i, t}])
			} else {
				for p := 1; p <= n; p++ {
					e.Add(vars.Assign[AssignKey{i, p, t}])
				}
			}
			e.Add(vars.MaintActive[EngineWeek{i, t}])
			e.Add(vars.Stock[EngineWeek{i, t}])
			if i <= n {
				m.AddConstr(e, mip.Equal, 1, fmt.Sprintf("exclusive_owned_%d_%d", i, t))
			} else {
				e.AddScaledExpr(buyCum(i, t), -1)
				m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("exclusive_extra_%d_%d", i, t))
			}
		}
	}

	// Coverage: every aircraft flies exactly one engine or is leased.
	for p := 1; p <= n; p++ {
		for t := 1; t <= H; t++ {
			e := mip.NewLinExpr().AddSum(vars.AssignedTo(p, t, params)...)
			e.Add(vars.Lease[AircraftWeek{p, t}])
			m.AddConstr(e, mip.Equal, 1, fmt.Sprintf("coverage_%d_%d", p, t))
		}
	}

	// Maintenance duration: active iff a start happened within the last d
	// weeks. Lookups before week 1 are omitted, not clamped.
	for _, i := range engines {
		for t := 1; t <= H; t++ {
			e := mip.NewLinExpr().Add(vars.MaintActive[EngineWeek{i, t}])
			lo := t - d + 1
			if lo < 1 {
				lo = 1
			}
			for tau := lo; tau <= t; tau++ {
				e.AddTerm(vars.MaintStart[EngineWeek{i, tau}], -1)
			}
			m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("maint_duration_%d_%d", i, t))
		}
	}

	// Cycle accumulation with reset on maintenance completion. The conditional
	//   y[t] = (1-mstart[t-d])*(y[t-1]+gain) + mstart[t-d]*gain
	// is encoded exactly for a binary start via four big-M inequalities.
	bigM := params.BigM()
	for _, i := range engines {
		e := mip.NewLinExpr().Add(vars.Cycles[EngineWeek{i, 1}]).AddScaledExpr(gain(i, 1), -1)
		m.AddConstr(e, mip.Equal, params.InitialCycles[i], fmt.Sprintf("init_cycles_%d", i))
		for t := 2; t <= H; t++ {
			yt := vars.Cycles[EngineWeek{i, t}]
			yprev := vars.Cycles[EngineWeek{i, t - 1}]
			if t <= d {
				// No maintenance can have completed yet: plain accumulation,
				// no phantom completions before week d+1.
				e := mip.NewLinExpr().Add(yt).AddTerm(yprev, -1).AddScaledExpr(gain(i, t), -1)
				m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("cycles_accum_%d_%d", i, t))
				continue
			}
			done := vars.MaintStart[EngineWeek{i, t - d}]
			hold := mip.NewLinExpr().Add(yt).AddTerm(yprev, -1).AddScaledExpr(gain(i, t), -1)
			m.AddConstr(hold.Copy().AddTerm(done, -bigM), mip.LessEq, 0,
				fmt.Sprintf("cycles_hold_ub_%d_%d", i, t))
			m.AddConstr(hold.AddTerm(done, bigM), mip.GreaterEq, 0,
				fmt.Sprintf("cycles_hold_lb_%d_%d", i, t))
			reset := mip.NewLinExpr().Add(yt).AddScaledExpr(gain(i, t), -1)
			m.AddConstr(reset.Copy().AddTerm(done, bigM), mip.LessEq, bigM,
				fmt.Sprintf("cycles_reset_ub_%d_%d", i, t))
			m.AddConstr(reset.AddTerm(done, -bigM), mip.GreaterEq, -bigM,
				fmt.Sprintf("cycles_reset_lb_%d_%d", i, t))
		}
	}

	// Ceiling with an in-maintenance relaxation, spares only, bounded by the
	// global maximum ceiling.
	for _, i := range engines {
		relax := 0.0
		if params.IsExtra(i) {
			relax = params.MaxCeiling
		}
		for t := 1; t <= H; t++ {
			e := mip.NewLinExpr().Add(vars.Cycles[EngineWeek{i, t}])
			e.AddTerm(vars.MaintActive[EngineWeek{i, t}], -relax)
			m.AddConstr(e, mip.LessEq, params.CycleCeiling[i],
				fmt.Sprintf("ceiling_relaxed_%d_%d", i, t))
		}
	}

	// Maintenance-bay capacity.
	for t := 1; t <= H; t++ {
		e := mip.NewLinExpr()
		for _, i := range engines {
			e.Add(vars.MaintStart[EngineWeek{i, t}])
		}
		m.AddConstr(e, mip.LessEq, float64(params.BayCapacity), fmt.Sprintf("bay_capacity_%d", t))
	}

	// Spare inventory flow: purchases enter immediately, maintenance
	// completions return to stock d weeks after their start.
	{
		e := mip.NewLinExpr().Add(vars.Inventory[1])
		for _, i := range extras {
			e.AddTerm(vars.Buy[EngineWeek{i, 1}], -1)
		}
		m.AddConstr(e, mip.Equal, params.InitialStock, "stock_init")
	}
	for t := 2; t <= H; t++ {
		e := mip.NewLinExpr().Add(vars.Inventory[t]).AddTerm(vars.Inventory[t-1], -1)
		for _, i := range extras {
			e.AddTerm(vars.Buy[EngineWeek{i, t}], -1)
		}
		if t-d >= 1 {
			for _, i := range engines {
				e.AddTerm(vars.MaintStart[EngineWeek{i, t - d}], -1)
			}
		}
		m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("stock_flow_%d", t))
	}

	// Continuity: an installed engine stays on its aircraft unless it starts
	// maintenance that week.
	continuity := func(i, p int) {
		for t := 2; t <= H; t++ {
			e := mip.NewLinExpr().Add(vars.Assign[AssignKey{i, p, t}])
			e.AddTerm(vars.Assign[AssignKey{i, p, t - 1}], -1)
			e.Add(vars.MaintStart[EngineWeek{i, t}])
			m.AddConstr(e, mip.GreaterEq, 0, fmt.Sprintf("continuity_%d_%d_%d", i, p, t))
		}
	}
	for i := 1; i <= n; i++ {
		continuity(i, i)
	}
	for _, i := range extras {
		for p := 1; p <= n; p++ {
			continuity(i, p)
		}
	}

	// Purchase-before-use and purchase-forces-use for spares.
	for _, i := range extras {
		for t := 1; t <= H; t++ {
			e := mip.NewLinExpr().Add(vars.Stock[EngineWeek{i, t}]).AddScaledExpr(buyCum(i, t), -1)
			m.AddConstr(e, mip.LessEq, 0, fmt.Sprintf("stock_after_buy_%d_%d", i, t))
			for p := 1; p <= n; p++ {
				e := mip.NewLinExpr().Add(vars.Assign[AssignKey{i, p, t}]).AddScaledExpr(buyCum(i, t), -1)
				m.AddConstr(e, mip.LessEq, 0, fmt.Sprintf("assign_after_buy_%d_%d_%d", i, p, t))
			}
			use := mip.NewLinExpr()
			for p := 1; p <= n; p++ {
				use.Add(vars.Assign[AssignKey{i, p, t}])
			}
			use.AddTerm(vars.Buy[EngineWeek{i, t}], -1)
			m.AddConstr(use, mip.GreaterEq, 0, fmt.Sprintf("use_when_bought_%d_%d", i, t))
		}
		once := mip.NewLinExpr()
		for t := 1; t <= H; t++ {
			once.Add(vars.Buy[EngineWeek{i, t}])
		}
		m.AddConstr(once, mip.LessEq, 1, fmt.Sprintf("single_purchase_%d", i))
	}

	// Bi-weekly cadence: every odd week after week 1 replicates the previous
	// week and makes no new maintenance or purchase decisions.
	for t := 3; t <= H; t += 2 {
		for _, i := range engines {
			m.AddConstr(mip.NewLinExpr().Add(vars.MaintStart[EngineWeek{i, t}]), mip.Equal, 0,
				fmt.Sprintf("no_maint_odd_%d_%d", i, t))
			e := mip.NewLinExpr().Add(vars.Stock[EngineWeek{i, t}]).AddTerm(vars.Stock[EngineWeek{i, t - 1}], -1)
			m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("stock_hold_odd_%d_%d", i, t))
		}
		for _, i := range extras {
			m.AddConstr(mip.NewLinExpr().Add(vars.Buy[EngineWeek{i, t}]), mip.Equal, 0,
				fmt.Sprintf("no_buy_odd_%d_%d", i, t))
		}
		for p := 1; p <= n; p++ {
			e := mip.NewLinExpr().Add(vars.Lease[AircraftWeek{p, t}]).AddTerm(vars.Lease[AircraftWeek{p, t - 1}], -1)
			m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("lease_hold_odd_%d_%d", p, t))
		}
		holdAssign := func(i, p int) {
			e := mip.NewLinExpr().Add(vars.Assign[AssignKey{i, p, t}])
			e.AddTerm(vars.Assign[AssignKey{i, p, t - 1}], -1)
			m.AddConstr(e, mip.Equal, 0, fmt.Sprintf("assign_hold_odd_%d_%d_%d", i, p, t))
		}
		for i := 1; i <= n; i++ {
			holdAssign(i, i)
		}
		for _, i := range extras {
			for p := 1; p <= n; p++ {
				holdAssign(i, p)
			}
		}
	}

	// Hard cycle ceiling for every engine and week.
	for _, i := range engines {
		for t := 1; t <= H; t++ {
			m.AddConstr(mip.NewLinExpr().Add(vars.Cycles[EngineWeek{i, t}]), mip.LessEq,
				params.CycleCeiling[i], fmt.Sprintf("ceiling_%d_%d", i, t))
		}
	}

	// Objective: lease cost plus purchase cost under the configured mode.
	obj := mip.NewLinExpr()
	for p := 1; p <= n; p++ {
		for t := 1; t <= H; t++ {
			obj.AddTerm(vars.Lease[AircraftWeek{p, t}], params.LeaseCost)
		}
	}
	for _, i := range extras {
		for t := 1; t <= H; t++ {
			price, err := params.PurchaseCost(t)
			if err != nil {
				return nil, nil, err
			}
			obj.AddTerm(vars.Buy[EngineWeek{i, t}], price)
		}
	}
	m.SetObjective(obj)

	return m, vars, nil
}
