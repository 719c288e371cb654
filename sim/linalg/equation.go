package linalg

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Term is one coefficient of a LinearEquation.
type Term struct {
	Index int
	Coef  float64
}

// LinearEquation is a sparse linear combination Σ Coef·x[Index]. Terms are
// kept sorted by index with no duplicates and no zero coefficients, so two
// equations describing the same combination compare equal. Operations
// return new values and never mutate their receiver.
type LinearEquation struct {
	terms []Term
}

// NewLinearEquation builds an equation from terms in any order, merging
// duplicate indices and dropping zero coefficients.
func NewLinearEquation(terms ...Term) LinearEquation {
	ts := slices.Clone(terms)
	for _, t := range ts {
		if t.Index < 0 {
			panic(fmt.Sprintf("linalg: negative variable index %d", t.Index))
		}
	}
	slices.SortStableFunc(ts, func(a, b Term) int { return cmp.Compare(a.Index, b.Index) })
	out := ts[:0]
	for _, t := range ts {
		if n := len(out); n > 0 && out[n-1].Index == t.Index {
			out[n-1].Coef += t.Coef
			continue
		}
		out = append(out, t)
	}
	return LinearEquation{terms: dropZeros(out)}
}

// FromDense builds an equation from the nonzero entries of coefs.
func FromDense(coefs []float64) LinearEquation {
	var ts []Term
	for i, c := range coefs {
		if c != 0 {
			ts = append(ts, Term{Index: i, Coef: c})
		}
	}
	return LinearEquation{terms: ts}
}

func dropZeros(ts []Term) []Term {
	out := ts[:0]
	for _, t := range ts {
		if t.Coef != 0 {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Terms returns the terms in increasing index order. The slice must not be
// modified.
func (e LinearEquation) Terms() []Term { return e.terms }

// Len returns the number of nonzero terms.
func (e LinearEquation) Len() int { return len(e.terms) }

// IsEmpty reports whether the equation has no terms.
func (e LinearEquation) IsEmpty() bool { return len(e.terms) == 0 }

// Coef returns the coefficient of variable idx (0 when absent).
func (e LinearEquation) Coef(idx int) float64 {
	i, ok := slices.BinarySearchFunc(e.terms, idx, func(t Term, target int) int { return cmp.Compare(t.Index, target) })
	if !ok {
		return 0
	}
	return e.terms[i].Coef
}

// MaxIndex returns the largest variable index, or -1 for an empty equation.
func (e LinearEquation) MaxIndex() int {
	if len(e.terms) == 0 {
		return -1
	}
	return e.terms[len(e.terms)-1].Index
}

// Add returns e + o.
func (e LinearEquation) Add(o LinearEquation) LinearEquation {
	return e.combine(o, 1)
}

// Sub returns e - o.
func (e LinearEquation) Sub(o LinearEquation) LinearEquation {
	return e.combine(o, -1)
}

// AddTerm returns e + coef·x[idx].
func (e LinearEquation) AddTerm(idx int, coef float64) LinearEquation {
	return e.Add(NewLinearEquation(Term{Index: idx, Coef: coef}))
}

func (e LinearEquation) combine(o LinearEquation, sign float64) LinearEquation {
	out := make([]Term, 0, len(e.terms)+len(o.terms))
	i, j := 0, 0
	for i < len(e.terms) || j < len(o.terms) {
		switch {
		case j == len(o.terms) || (i < len(e.terms) && e.terms[i].Index < o.terms[j].Index):
			out = append(out, e.terms[i])
			i++
		case i == len(e.terms) || o.terms[j].Index < e.terms[i].Index:
			out = append(out, Term{Index: o.terms[j].Index, Coef: sign * o.terms[j].Coef})
			j++
		default:
			out = append(out, Term{Index: e.terms[i].Index, Coef: e.terms[i].Coef + sign*o.terms[j].Coef})
			i++
			j++
		}
	}
	return LinearEquation{terms: dropZeros(out)}
}

// Scale returns f·e.
func (e LinearEquation) Scale(f float64) LinearEquation {
	if f == 0 {
		return LinearEquation{}
	}
	out := make([]Term, len(e.terms))
	for i, t := range e.terms {
		out[i] = Term{Index: t.Index, Coef: t.Coef * f}
	}
	return LinearEquation{terms: dropZeros(out)}
}

// Neg returns -e.
func (e LinearEquation) Neg() LinearEquation { return e.Scale(-1) }

// Evaluate returns Σ Coef·x[Index]. Every index must be within x.
func (e LinearEquation) Evaluate(x []float64) float64 {
	var sum float64
	for _, t := range e.terms {
		sum += t.Coef * x[t.Index]
	}
	return sum
}

// AbsEvaluate returns Σ |Coef·x[Index]|, the magnitude scale used when
// judging how far Evaluate may drift from its exact value.
func (e LinearEquation) AbsEvaluate(x []float64) float64 {
	var sum float64
	for _, t := range e.terms {
		v := t.Coef * x[t.Index]
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}

// Scatter adds the coefficients into a dense row, mapping each variable
// index through col. Variables with col < 0 are skipped.
func (e LinearEquation) Scatter(row []float64, col func(idx int) int) {
	for _, t := range e.terms {
		if c := col(t.Index); c >= 0 {
			row[c] += t.Coef
		}
	}
}

// Compare orders equations lexicographically by (index, coefficient) pairs.
func (e LinearEquation) Compare(o LinearEquation) int {
	n := min(len(e.terms), len(o.terms))
	for i := 0; i < n; i++ {
		if c := cmp.Compare(e.terms[i].Index, o.terms[i].Index); c != 0 {
			return c
		}
		if c := cmp.Compare(e.terms[i].Coef, o.terms[i].Coef); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(e.terms), len(o.terms))
}

// Equal reports whether e and o have identical terms.
func (e LinearEquation) Equal(o LinearEquation) bool { return e.Compare(o) == 0 }

func (e LinearEquation) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range e.terms {
		c := t.Coef
		switch {
		case i == 0 && c < 0:
			sb.WriteString("-")
			c = -c
		case i > 0 && c < 0:
			sb.WriteString(" - ")
			c = -c
		case i > 0:
			sb.WriteString(" + ")
		}
		if c != 1 {
			fmt.Fprintf(&sb, "%g*", c)
		}
		fmt.Fprintf(&sb, "x%d", t.Index)
	}
	return sb.String()
}
