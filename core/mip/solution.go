package mip

import "context"

// Status is the terminal state reported by a solver. Infeasible and Limit are
// distinct, recoverable-by-caller outcomes and must never be collapsed into a
// generic failure.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means the returned solution is proven optimal.
	StatusOptimal
	// StatusFeasible means an integer solution was found but the search
	// stopped before proving optimality (node or time limit).
	StatusFeasible
	// StatusInfeasible means no feasible solution exists.
	StatusInfeasible
	// StatusUnbounded means the objective can decrease without bound.
	StatusUnbounded
	// StatusLimit means the search hit its limit before finding any
	// integer solution.
	StatusLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusLimit:
		return "limit"
	default:
		return "unknown"
	}
}

// Solution carries the solve status and, when one exists, the incumbent
// variable values and objective.
type Solution struct {
	Status    Status
	Objective float64
	values    []float64
}

// NewSolution builds a Solution from a dense value vector.
func NewSolution(status Status, objective float64, values []float64) Solution {
	return Solution{Status: status, Objective: objective, values: values}
}

// HasValues reports whether the solution carries variable values.
func (s Solution) HasValues() bool { return s.values != nil }

// Value returns the solved value of the variable.
func (s Solution) Value(v Var) float64 { return s.values[v.Index()] }

// Values returns a copy of the dense value vector, or nil when the solution
// carries none. Useful for feasibility checks against the source model.
func (s Solution) Values() []float64 {
	if s.values == nil {
		return nil
	}
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Solver is the adapter contract for external optimization engines: one
// blocking call that consumes a declared model (with optional warm-start
// hints) and returns a terminal status.
type Solver interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}
