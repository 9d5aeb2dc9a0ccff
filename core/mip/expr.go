package mip

// Term is one variable/coefficient pair of a linear expression.
type Term struct {
	Var   Var
	Coeff float64
}

// LinExpr is a builder for linear expressions over model variables.
type LinExpr struct {
	terms  []Term
	offset float64
}

// NewLinExpr creates a new empty LinExpr.
func NewLinExpr() *LinExpr {
	return &LinExpr{}
}

// Add adds the variable with coefficient 1 and returns the expression.
func (e *LinExpr) Add(v Var) *LinExpr {
	return e.AddTerm(v, 1)
}

// AddTerm adds the variable with the given coefficient and returns the
// expression.
func (e *LinExpr) AddTerm(v Var, coeff float64) *LinExpr {
	e.terms = append(e.terms, Term{Var: v, Coeff: coeff})
	return e
}

// AddSum adds all variables with coefficient 1 and returns the expression.
func (e *LinExpr) AddSum(vars ...Var) *LinExpr {
	for _, v := range vars {
		e.Add(v)
	}
	return e
}

// AddConstant adds a constant offset and returns the expression.
func (e *LinExpr) AddConstant(c float64) *LinExpr {
	e.offset += c
	return e
}

// AddExpr adds every term and the offset of other and returns the expression.
func (e *LinExpr) AddExpr(other *LinExpr) *LinExpr {
	e.terms = append(e.terms, other.terms...)
	e.offset += other.offset
	return e
}

// AddScaledExpr adds other multiplied by coeff and returns the expression.
func (e *LinExpr) AddScaledExpr(other *LinExpr, coeff float64) *LinExpr {
	for _, t := range other.terms {
		e.AddTerm(t.Var, t.Coeff*coeff)
	}
	e.offset += other.offset * coeff
	return e
}

// Terms returns the accumulated variable/coefficient pairs. Variables may
// repeat; consumers must aggregate.
func (e *LinExpr) Terms() []Term { return e.terms }

// Offset returns the constant part of the expression.
func (e *LinExpr) Offset() float64 { return e.offset }

// Copy returns an independent copy of the expression.
func (e *LinExpr) Copy() *LinExpr {
	cp := &LinExpr{terms: make([]Term, len(e.terms)), offset: e.offset}
	copy(cp.terms, e.terms)
	return cp
}

// Eval evaluates the expression against a dense value vector indexed by
// variable index.
func (e *LinExpr) Eval(values []float64) float64 {
	v := e.offset
	for _, t := range e.terms {
		v += t.Coeff * values[t.Var.Index()]
	}
	return v
}
