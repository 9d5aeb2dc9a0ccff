// Package mip declares mixed-integer linear models: variables, linear
// constraints, a minimization objective and warm-start hints. It is the
// capability surface between the planner and whatever engine solves the
// model, so the planner stays solver-agnostic and unit-testable against a
// reference engine.
package mip

import (
	"fmt"
	"math"
)

// VarType distinguishes binary and continuous decision variables.
type VarType int

const (
	// Binary variables take values in {0, 1}.
	Binary VarType = iota
	// Continuous variables take any value within their bounds.
	Continuous
)

// Var is a handle to a variable declared on a Model.
type Var struct {
	idx int32
}

// Index returns the dense index of the variable within its model.
func (v Var) Index() int { return int(v.idx) }

// Sense is the relation of a linear constraint.
type Sense int

const (
	Equal Sense = iota
	LessEq
	GreaterEq
)

// Constraint is a named linear constraint Expr (Sense) RHS.
type Constraint struct {
	Name  string
	Expr  *LinExpr
	Sense Sense
	RHS   float64
}

type varData struct {
	name     string
	typ      VarType
	lb, ub   float64
	start    float64
	hasStart bool
}

// Model accumulates variables, constraints and the objective. Construction is
// a single linear pass with no synchronization: models must not be mutated
// concurrently.
type Model struct {
	name    string
	vars    []varData
	constrs []Constraint
	obj     *LinExpr
}

// NewModel creates an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{name: name, obj: NewLinExpr()}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// NewBinary declares a binary variable.
func (m *Model) NewBinary(name string) Var {
	m.vars = append(m.vars, varData{name: name, typ: Binary, lb: 0, ub: 1})
	return Var{idx: int32(len(m.vars) - 1)}
}

// NewContinuous declares a continuous variable with the given bounds. Use
// math.Inf for an unbounded side.
func (m *Model) NewContinuous(name string, lb, ub float64) Var {
	m.vars = append(m.vars, varData{name: name, typ: Continuous, lb: lb, ub: ub})
	return Var{idx: int32(len(m.vars) - 1)}
}

// AddConstr appends a named linear constraint.
func (m *Model) AddConstr(expr *LinExpr, sense Sense, rhs float64, name string) {
	m.constrs = append(m.constrs, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

// SetObjective sets the minimization objective.
func (m *Model) SetObjective(expr *LinExpr) { m.obj = expr }

// Objective returns the minimization objective.
func (m *Model) Objective() *LinExpr { return m.obj }

// SetStart records a warm-start hint for the variable. Hints are suggestions
// for the solver, never constraints.
func (m *Model) SetStart(v Var, value float64) {
	m.vars[v.Index()].start = value
	m.vars[v.Index()].hasStart = true
}

// Start returns the warm-start hint for the variable, if any.
func (m *Model) Start(v Var) (float64, bool) {
	d := m.vars[v.Index()]
	return d.start, d.hasStart
}

// ClearStarts removes all warm-start hints.
func (m *Model) ClearStarts() {
	for i := range m.vars {
		m.vars[i].hasStart = false
		m.vars[i].start = 0
	}
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstrs returns the number of declared constraints.
func (m *Model) NumConstrs() int { return len(m.constrs) }

// Constraints returns the declared constraints in insertion order.
func (m *Model) Constraints() []Constraint { return m.constrs }

// ConstraintByName returns the first constraint with the given name.
func (m *Model) ConstraintByName(name string) (Constraint, bool) {
	for _, c := range m.constrs {
		if c.Name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// VarName returns the name of the variable.
func (m *Model) VarName(v Var) string { return m.vars[v.Index()].name }

// TypeOf returns the type of the variable.
func (m *Model) TypeOf(v Var) VarType { return m.vars[v.Index()].typ }

// Bounds returns the lower and upper bound of the variable.
func (m *Model) Bounds(v Var) (lb, ub float64) {
	d := m.vars[v.Index()]
	return d.lb, d.ub
}

// VarAt returns the handle for the i-th declared variable. It panics on an
// out-of-range index: requesting an undeclared variable is a programming
// defect, not a recoverable condition.
func (m *Model) VarAt(i int) Var {
	if i < 0 || i >= len(m.vars) {
		panic(fmt.Sprintf("mip: variable index %d out of range [0,%d)", i, len(m.vars)))
	}
	return Var{idx: int32(i)}
}

// CheckFeasible evaluates every constraint and bound against the given dense
// value vector within tol. It reports the first violated constraint name.
func (m *Model) CheckFeasible(values []float64, tol float64) (bool, string) {
	if len(values) != len(m.vars) {
		return false, "value vector length mismatch"
	}
	for i, d := range m.vars {
		v := values[i]
		if v < d.lb-tol || v > d.ub+tol {
			return false, d.name
		}
		if d.typ == Binary && math.Abs(v-math.Round(v)) > tol {
			return false, d.name
		}
	}
	for _, c := range m.constrs {
		lhs := c.Expr.Eval(values)
		switch c.Sense {
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return false, c.Name
			}
		case LessEq:
			if lhs > c.RHS+tol {
				return false, c.Name
			}
		case GreaterEq:
			if lhs < c.RHS-tol {
				return false, c.Name
			}
		}
	}
	return true, ""
}
