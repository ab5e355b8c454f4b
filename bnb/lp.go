package bnb

import (
	"math"

	"git.solver4all.com/azaryc2s/cvrp/mip"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const simplexTol = 1e-10

type stdRow struct {
	ind   []int
	val   []float64
	slack float64
	rhs   float64
}

/* Solve the LP relaxation of rows over the box [lb,ub]. Variables are shifted by their lower bound and every
row gets its own slack column, so the standard form matrix always has full row rank. Equalities become a <= and
a >= row. */

func relax(obj []float64, rows []mip.Constr, lb, ub []float64) (float64, []float64, error) {
	nv := len(obj)
	var std []stdRow
	used := make([]bool, nv)

	add := func(ind []int, val []float64, slack, rhs float64) {
		if rhs < 0 {
			neg := make([]float64, len(val))
			for k, v := range val {
				neg[k] = -v
			}
			val, slack, rhs = neg, -slack, -rhs
		}
		std = append(std, stdRow{ind: ind, val: val, slack: slack, rhs: rhs})
	}

	for _, r := range rows {
		shift := 0.0
		for k, i := range r.Ind {
			shift += r.Val[k] * lb[i]
			if r.Val[k] != 0 {
				used[i] = true
			}
		}
		rhs := r.Rhs - shift
		switch r.Sense {
		case mip.LessEqual:
			add(r.Ind, r.Val, 1, rhs)
		case mip.GreaterEqual:
			add(r.Ind, r.Val, -1, rhs)
		default:
			add(r.Ind, r.Val, 1, rhs)
			add(r.Ind, r.Val, -1, rhs)
		}
	}
	for j := 0; j < nv; j++ {
		if math.IsInf(ub[j], 1) {
			continue
		}
		if ub[j] < lb[j]-mip.FeasTol {
			return 0, nil, lp.ErrInfeasible
		}
		add([]int{j}, []float64{1}, 1, math.Max(ub[j]-lb[j], 0))
		used[j] = true
	}

	col := make([]int, nv)
	nc := 0
	for j := 0; j < nv; j++ {
		if !used[j] {
			//a free column with a negative cost runs off to infinity, otherwise it sits at its lower bound
			if obj[j] < 0 {
				return 0, nil, lp.ErrUnbounded
			}
			col[j] = mip.NoVar
			continue
		}
		col[j] = nc
		nc++
	}

	x := make([]float64, nv)
	copy(x, lb)
	m := len(std)
	if m > 0 {
		cols := nc + m
		a := mat.NewDense(m, cols, nil)
		b := make([]float64, m)
		c := make([]float64, cols)
		for j := 0; j < nv; j++ {
			if col[j] >= 0 {
				c[col[j]] = obj[j]
			}
		}
		for r, s := range std {
			for k, i := range s.ind {
				if col[i] >= 0 {
					a.Set(r, col[i], a.At(r, col[i])+s.val[k])
				}
			}
			a.Set(r, nc+r, s.slack)
			b[r] = s.rhs
		}
		_, y, err := lp.Simplex(c, a, b, simplexTol, nil)
		if err != nil {
			return 0, nil, err
		}
		for j := 0; j < nv; j++ {
			if col[j] >= 0 {
				x[j] = lb[j] + y[col[j]]
			}
		}
	}

	val := 0.0
	for j := 0; j < nv; j++ {
		val += obj[j] * x[j]
	}
	return val, x, nil
}
