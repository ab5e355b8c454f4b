package bnb

import (
	"fmt"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

type cbContext struct {
	event    mip.Event
	thread   int
	point    []float64
	obj      float64
	engine   *Engine
	rejected []mip.Constr
}

func (c *cbContext) Event() mip.Event { return c.event }
func (c *cbContext) ThreadID() int    { return c.thread }

func (c *cbContext) CandidatePoint(vars []int) ([]float64, error) {
	if c.event != mip.Candidate {
		return nil, mip.ErrNotCandidate
	}
	vals := make([]float64, len(vars))
	for k, j := range vars {
		if j < 0 || j >= len(c.point) {
			return nil, fmt.Errorf("%w: %d", mip.ErrBadIndex, j)
		}
		vals[k] = c.point[j]
	}
	return vals, nil
}

func (c *cbContext) CandidateObjective() (float64, error) {
	if c.event != mip.Candidate {
		return 0, mip.ErrNotCandidate
	}
	return c.obj, nil
}

func (c *cbContext) RejectCandidate(cst mip.Constr) error {
	if c.event != mip.Candidate {
		return mip.ErrNotCandidate
	}
	if len(cst.Ind) != len(cst.Val) {
		return fmt.Errorf("bnb: lazy constraint %s has %d indices but %d values", cst.Name, len(cst.Ind), len(cst.Val))
	}
	cp, err := c.engine.copyConstr(cst)
	if err != nil {
		return err
	}
	c.rejected = append(c.rejected, cp)
	return nil
}
