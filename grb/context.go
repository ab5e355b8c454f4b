//go:build gurobi

package grb

import (
	"fmt"

	"git.solver4all.com/azaryc2s/cvrp/mip"
	"git.solver4all.com/azaryc2s/gorobi/gurobi"
)

type context struct {
	event  mip.Event
	engine *Engine
	cbdata gurobi.CPVoid
	where  int32
	point  []float64
}

func (c *context) Event() mip.Event { return c.event }
func (c *context) ThreadID() int    { return 0 }

func (c *context) solution() ([]float64, error) {
	if c.event != mip.Candidate {
		return nil, mip.ErrNotCandidate
	}
	if c.point == nil {
		sol, err := gurobi.CbGetDblArray(c.cbdata, c.where, gurobi.CB_MIPSOL_SOL, c.engine.nvars)
		if err != nil {
			return nil, err
		}
		c.point = sol
	}
	return c.point, nil
}

func (c *context) CandidatePoint(vars []int) ([]float64, error) {
	sol, err := c.solution()
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(vars))
	for k, j := range vars {
		if j < 0 || j >= len(sol) {
			return nil, fmt.Errorf("%w: %d", mip.ErrBadIndex, j)
		}
		vals[k] = sol[j]
	}
	return vals, nil
}

func (c *context) CandidateObjective() (float64, error) {
	if c.event != mip.Candidate {
		return 0, mip.ErrNotCandidate
	}
	return gurobi.CbGetDbl(c.cbdata, c.where, gurobi.CB_MIPSOL_OBJ)
}

func (c *context) RejectCandidate(cst mip.Constr) error {
	if c.event != mip.Candidate {
		return mip.ErrNotCandidate
	}
	ind, err := c.engine.indices(cst)
	if err != nil {
		return err
	}
	return gurobi.CbLazy(c.cbdata, len(ind), ind, cst.Val, sense(cst.Sense), cst.Rhs)
}
