// Package solver provides a reference branch-and-bound engine over gonum's
// simplex implementation. It implements the adapter contract the planner
// consumes, so unit tests and small instances can be solved in-process; large
// production instances belong on a dedicated MIP engine behind the same
// interface.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/internal/eventbus"
)

// Options configures the search.
type Options struct {
	// MaxNodes bounds the number of explored nodes; 0 means unlimited.
	MaxNodes int
	// Tol is the integrality tolerance. Defaults to 1e-6.
	Tol float64
	// Bus optionally receives Incumbent and NodeProgress events.
	Bus *eventbus.Bus
}

// BranchBound solves mixed binary/continuous linear models by depth-first
// branch and bound over LP relaxations.
type BranchBound struct {
	opts Options
}

// New returns a configured BranchBound solver.
func New(opts Options) *BranchBound {
	if opts.Tol == 0 {
		opts.Tol = 1e-6
	}
	return &BranchBound{opts: opts}
}

// solveRelaxation solves min c'x s.t. Gx <= h, Ax = b with gonum's simplex.
// It can be overridden in tests to simulate solver failures.
var solveRelaxation = func(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, float64, error) {
	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	obj, xStd, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, 0, err
	}
	// Convert splits each free variable into a positive and a negative part:
	// x = xStd[:n] - xStd[n:2n].
	n := len(c)
	x := make([]float64, n)
	for i := range x {
		x[i] = xStd[i] - xStd[n+i]
	}
	return x, obj, nil
}

type node struct {
	lb, ub []float64
}

// Solve runs the search until optimality, infeasibility, cancellation or the
// node limit. Warm-start hints on binary variables steer the branching order.
// The solver status is reported verbatim; the caller decides what to do with
// infeasible or limit outcomes.
func (s *BranchBound) Solve(ctx context.Context, m *mip.Model) (mip.Solution, error) {
	n := m.NumVars()
	if n == 0 {
		return mip.Solution{}, fmt.Errorf("model %q has no variables", m.Name())
	}

	c := make([]float64, n)
	for _, t := range m.Objective().Terms() {
		c[t.Var.Index()] += t.Coeff
	}
	objOffset := m.Objective().Offset()

	var eqRows, ineqRows [][]float64
	var eqRHS, ineqRHS []float64
	for _, con := range m.Constraints() {
		row := make([]float64, n)
		for _, t := range con.Expr.Terms() {
			row[t.Var.Index()] += t.Coeff
		}
		rhs := con.RHS - con.Expr.Offset()
		switch con.Sense {
		case mip.Equal:
			eqRows = append(eqRows, row)
			eqRHS = append(eqRHS, rhs)
		case mip.LessEq:
			ineqRows = append(ineqRows, row)
			ineqRHS = append(ineqRHS, rhs)
		case mip.GreaterEq:
			neg := make([]float64, n)
			for i, v := range row {
				neg[i] = -v
			}
			ineqRows = append(ineqRows, neg)
			ineqRHS = append(ineqRHS, -rhs)
		}
	}

	// Pinning constraints make many equality rows linear combinations of each
	// other; the simplex needs a full-rank system.
	eqRows, eqRHS, err := reduceEqualities(eqRows, eqRHS)
	if errors.Is(err, lp.ErrInfeasible) {
		return mip.NewSolution(mip.StatusInfeasible, 0, nil), nil
	}

	root := node{lb: make([]float64, n), ub: make([]float64, n)}
	binary := make([]bool, n)
	for i := 0; i < n; i++ {
		v := m.VarAt(i)
		root.lb[i], root.ub[i] = m.Bounds(v)
		binary[i] = m.TypeOf(v) == mip.Binary
	}

	var incumbent []float64
	incumbentObj := math.Inf(1)
	nodes := 0
	completed := true
	stack := []node{root}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			completed = false
			break
		}
		if s.opts.MaxNodes > 0 && nodes >= s.opts.MaxNodes {
			completed = false
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		x, lpObj, err := s.relax(c, nd, ineqRows, ineqRHS, eqRows, eqRHS)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return mip.NewSolution(mip.StatusUnbounded, 0, nil), nil
		case err != nil:
			return mip.Solution{}, fmt.Errorf("lp relaxation: %w", err)
		}

		// Bound pruning against the incumbent.
		if lpObj >= incumbentObj-1e-9 {
			continue
		}

		branch := -1
		worst := s.opts.Tol
		for i := 0; i < n; i++ {
			if !binary[i] {
				continue
			}
			f := x[i] - math.Floor(x[i])
			frac := math.Min(f, 1-f)
			if frac > worst {
				worst = frac
				branch = i
			}
		}

		if branch < 0 {
			// Integral relaxation: new incumbent.
			incumbent = snap(x, binary)
			incumbentObj = lpObj
			if s.opts.Bus != nil {
				s.opts.Bus.Publish(eventbus.Incumbent{Objective: lpObj + objOffset, Nodes: nodes})
			}
			continue
		}

		zero := nd.clone()
		zero.ub[branch] = 0
		one := nd.clone()
		one.lb[branch] = 1

		// Explore the hinted (or LP-rounded) side first; the stack pops the
		// last pushed child.
		preferOne := x[branch] >= 0.5
		if hint, ok := m.Start(m.VarAt(branch)); ok {
			preferOne = hint >= 0.5
		}
		if preferOne {
			stack = append(stack, zero, one)
		} else {
			stack = append(stack, one, zero)
		}

		if s.opts.Bus != nil && nodes%100 == 0 {
			s.opts.Bus.Publish(eventbus.NodeProgress{Nodes: nodes, BestBound: lpObj + objOffset})
		}
	}

	switch {
	case incumbent != nil && completed:
		return mip.NewSolution(mip.StatusOptimal, incumbentObj+objOffset, incumbent), nil
	case incumbent != nil:
		return mip.NewSolution(mip.StatusFeasible, incumbentObj+objOffset, incumbent), nil
	case completed:
		return mip.NewSolution(mip.StatusInfeasible, 0, nil), nil
	default:
		return mip.NewSolution(mip.StatusLimit, 0, nil), nil
	}
}

// relax solves the LP relaxation of a node, appending the node's variable
// bounds to the inequality system as rows.
func (s *BranchBound) relax(c []float64, nd node, ineqRows [][]float64, ineqRHS []float64, eqRows [][]float64, eqRHS []float64) ([]float64, float64, error) {
	n := len(c)
	for i := 0; i < n; i++ {
		if nd.lb[i] > nd.ub[i] {
			return nil, 0, lp.ErrInfeasible
		}
	}

	rows := len(ineqRows)
	for i := 0; i < n; i++ {
		if !math.IsInf(nd.ub[i], 1) {
			rows++
		}
		if !math.IsInf(nd.lb[i], -1) {
			rows++
		}
	}

	var g mat.Matrix
	var h []float64
	if rows > 0 {
		gd := mat.NewDense(rows, n, nil)
		h = make([]float64, rows)
		r := 0
		for idx, row := range ineqRows {
			gd.SetRow(r, row)
			h[r] = ineqRHS[idx]
			r++
		}
		for i := 0; i < n; i++ {
			if !math.IsInf(nd.ub[i], 1) {
				gd.Set(r, i, 1)
				h[r] = nd.ub[i]
				r++
			}
			if !math.IsInf(nd.lb[i], -1) {
				gd.Set(r, i, -1)
				h[r] = -nd.lb[i]
				r++
			}
		}
		g = gd
	}

	var a mat.Matrix
	var b []float64
	if len(eqRows) > 0 {
		ad := mat.NewDense(len(eqRows), n, nil)
		for r, row := range eqRows {
			ad.SetRow(r, row)
		}
		a = ad
		b = eqRHS
	}

	return solveRelaxation(c, g, h, a, b)
}

// reduceEqualities row-reduces the equality system, dropping linearly
// dependent rows. A row that reduces to 0 = nonzero proves the model
// infeasible before any LP is solved.
func reduceEqualities(rows [][]float64, rhs []float64) ([][]float64, []float64, error) {
	if len(rows) == 0 {
		return rows, rhs, nil
	}
	n := len(rows[0])
	work := make([][]float64, len(rows))
	b := make([]float64, len(rhs))
	for i, r := range rows {
		work[i] = append([]float64(nil), r...)
		b[i] = rhs[i]
	}

	const eps = 1e-9
	rank := 0
	for col := 0; col < n && rank < len(work); col++ {
		piv := -1
		best := eps
		for r := rank; r < len(work); r++ {
			if v := math.Abs(work[r][col]); v > best {
				best = v
				piv = r
			}
		}
		if piv < 0 {
			continue
		}
		work[rank], work[piv] = work[piv], work[rank]
		b[rank], b[piv] = b[piv], b[rank]
		pv := work[rank][col]
		for r := 0; r < len(work); r++ {
			if r == rank || work[r][col] == 0 {
				continue
			}
			f := work[r][col] / pv
			for j := col; j < n; j++ {
				work[r][j] -= f * work[rank][j]
			}
			b[r] -= f * b[rank]
		}
		rank++
	}
	for r := rank; r < len(work); r++ {
		if math.Abs(b[r]) > 1e-7 {
			return nil, nil, lp.ErrInfeasible
		}
	}
	return work[:rank], b[:rank], nil
}

func (nd node) clone() node {
	cp := node{lb: make([]float64, len(nd.lb)), ub: make([]float64, len(nd.ub))}
	copy(cp.lb, nd.lb)
	copy(cp.ub, nd.ub)
	return cp
}

// snap rounds binary entries to exact integers and clips numerical noise on
// the rest.
func snap(x []float64, binary []bool) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if binary[i] {
			out[i] = math.Round(v)
			continue
		}
		if math.Abs(v) < 1e-9 {
			v = 0
		}
		out[i] = v
	}
	return out
}
