package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/internal/eventbus"
)

// knapsack builds max 3a+4b+2c s.t. 2a+3b+c <= 4 as a minimization.
func knapsack() (*mip.Model, [3]mip.Var) {
	m := mip.NewModel("knapsack")
	a := m.NewBinary("a")
	b := m.NewBinary("b")
	c := m.NewBinary("c")
	m.AddConstr(mip.NewLinExpr().AddTerm(a, 2).AddTerm(b, 3).Add(c), mip.LessEq, 4, "weight")
	m.SetObjective(mip.NewLinExpr().AddTerm(a, -3).AddTerm(b, -4).AddTerm(c, -2))
	return m, [3]mip.Var{a, b, c}
}

func TestSolveKnapsack(t *testing.T) {
	m, vars := knapsack()
	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)

	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, -6.0, sol.Objective, 1e-6)
	assert.InDelta(t, 0.0, sol.Value(vars[0]), 1e-6)
	assert.InDelta(t, 1.0, sol.Value(vars[1]), 1e-6)
	assert.InDelta(t, 1.0, sol.Value(vars[2]), 1e-6)
}

func TestSolveWithEqualities(t *testing.T) {
	m := mip.NewModel("pick_one")
	x := m.NewBinary("x")
	y := m.NewBinary("y")
	m.AddConstr(mip.NewLinExpr().Add(x).Add(y), mip.Equal, 1, "pick")
	m.SetObjective(mip.NewLinExpr().AddTerm(x, 2).Add(y))

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.Objective, 1e-6)
	assert.InDelta(t, 0.0, sol.Value(x), 1e-6)
	assert.InDelta(t, 1.0, sol.Value(y), 1e-6)
}

func TestSolveRedundantEqualities(t *testing.T) {
	// The same equality stated twice plus its sum; the presolve must strip
	// the dependent rows before the simplex sees them.
	m := mip.NewModel("redundant")
	x := m.NewBinary("x")
	y := m.NewBinary("y")
	m.AddConstr(mip.NewLinExpr().Add(x), mip.Equal, 1, "pin_x")
	m.AddConstr(mip.NewLinExpr().Add(x), mip.Equal, 1, "pin_x_again")
	m.AddConstr(mip.NewLinExpr().Add(x).Add(y), mip.Equal, 1, "sum")
	m.SetObjective(mip.NewLinExpr().Add(x).Add(y))

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.Value(x), 1e-6)
	assert.InDelta(t, 0.0, sol.Value(y), 1e-6)
}

func TestSolveInfeasible(t *testing.T) {
	m := mip.NewModel("infeasible")
	x := m.NewBinary("x")
	y := m.NewBinary("y")
	m.AddConstr(mip.NewLinExpr().Add(x).Add(y), mip.Equal, 3, "too_much")
	m.SetObjective(mip.NewLinExpr().Add(x))

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusInfeasible, sol.Status)
	assert.False(t, sol.HasValues())
}

func TestSolveContradictoryEqualities(t *testing.T) {
	m := mip.NewModel("contradiction")
	x := m.NewContinuous("x", 0, math.Inf(1))
	m.AddConstr(mip.NewLinExpr().Add(x), mip.Equal, 1, "one")
	m.AddConstr(mip.NewLinExpr().Add(x), mip.Equal, 2, "two")
	m.SetObjective(mip.NewLinExpr().Add(x))

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusInfeasible, sol.Status)
}

func TestSolveUnbounded(t *testing.T) {
	m := mip.NewModel("unbounded")
	x := m.NewContinuous("x", 0, math.Inf(1))
	y := m.NewContinuous("y", 0, math.Inf(1))
	m.AddConstr(mip.NewLinExpr().Add(x).AddTerm(y, -1), mip.Equal, 0, "balance")
	m.SetObjective(mip.NewLinExpr().AddTerm(x, -1))

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusUnbounded, sol.Status)
	assert.False(t, sol.HasValues())
}

func TestSolveNodeLimit(t *testing.T) {
	m, _ := knapsack()
	sol, err := New(Options{MaxNodes: 1}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusLimit, sol.Status)
	assert.False(t, sol.HasValues())
}

func TestSolveCancelledContext(t *testing.T) {
	m, _ := knapsack()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := New(Options{}).Solve(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusLimit, sol.Status)
}

func TestSolveEmptyModel(t *testing.T) {
	_, err := New(Options{}).Solve(context.Background(), mip.NewModel("empty"))
	assert.Error(t, err)
}

func TestSolveRelaxationFailure(t *testing.T) {
	original := solveRelaxation
	defer func() { solveRelaxation = original }()
	solveRelaxation = func(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, float64, error) {
		return nil, 0, errors.New("numerical breakdown")
	}

	m, _ := knapsack()
	_, err := New(Options{}).Solve(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numerical breakdown")
}

func TestSolvePublishesIncumbents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	m, _ := knapsack()
	sol, err := New(Options{Bus: bus}).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)

	var best float64
	seen := false
	for {
		select {
		case ev := <-sub:
			if inc, ok := ev.(eventbus.Incumbent); ok {
				best = inc.Objective
				seen = true
				continue
			}
		default:
		}
		break
	}
	require.True(t, seen, "no incumbent event published")
	assert.InDelta(t, sol.Objective, best, 1e-6)
}

func TestSolveHonorsHints(t *testing.T) {
	// Two symmetric optima; the hint steers the dive toward y.
	m := mip.NewModel("tie")
	x := m.NewBinary("x")
	y := m.NewBinary("y")
	m.AddConstr(mip.NewLinExpr().Add(x).Add(y), mip.Equal, 1, "pick")
	m.SetObjective(mip.NewLinExpr().Add(x).Add(y))
	m.SetStart(x, 0)
	m.SetStart(y, 1)

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.Objective, 1e-6)
}

func TestReduceEqualities(t *testing.T) {
	rows := [][]float64{{1, 0}, {0, 1}, {1, 1}}
	rhs := []float64{1, 2, 3}
	got, gotRHS, err := reduceEqualities(rows, rhs)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, gotRHS, 2)

	_, _, err = reduceEqualities([][]float64{{1, 0}, {0, 1}, {1, 1}}, []float64{1, 2, 4})
	assert.Error(t, err)

	got, gotRHS, err = reduceEqualities(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, gotRHS)
}
