// Package bnb is a small in-process branch-and-cut engine. LP relaxations are
// solved with gonum's simplex, the tree is explored best-bound first by a fixed
// number of goroutines and integer candidates are offered to a generic
// callback that may reject them with lazy constraints.
package bnb

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"git.solver4all.com/azaryc2s/cvrp/mip"
	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	intTol   = 1e-6
	pruneTol = 1e-6
)

var ErrUnbounded = errors.New("bnb: relaxation is unbounded")

type variable struct {
	name  string
	obj   float64
	lb    float64
	ub    float64
	vtype mip.VarType
}

type Engine struct {
	name      string
	vars      []variable
	rows      []mip.Constr
	lazy      []mip.Constr
	threads   int
	timeLimit time.Duration
	cb        mip.Callback
	mask      mip.Event
	running   atomic.Bool
}

func New(name string) *Engine {
	return &Engine{name: name, threads: DefaultThreads()}
}

// DefaultThreads is the number of logical cpus, as reported by gopsutil.
func DefaultThreads() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

func (e *Engine) AddVar(name string, obj, lb, ub float64, vtype mip.VarType) (int, error) {
	if vtype == mip.Binary {
		lb, ub = math.Max(lb, 0), math.Min(ub, 1)
	}
	if math.IsNaN(lb) || math.IsNaN(ub) || lb > ub || math.IsInf(lb, 0) {
		return mip.NoVar, fmt.Errorf("bnb: invalid bounds [%g,%g] for %s", lb, ub, name)
	}
	e.vars = append(e.vars, variable{name: name, obj: obj, lb: lb, ub: ub, vtype: vtype})
	return len(e.vars) - 1, nil
}

func (e *Engine) AddConstr(c mip.Constr) error {
	if len(c.Ind) != len(c.Val) {
		return fmt.Errorf("bnb: constraint %s has %d indices but %d values", c.Name, len(c.Ind), len(c.Val))
	}
	cp, err := e.copyConstr(c)
	if err != nil {
		return err
	}
	e.rows = append(e.rows, cp)
	return nil
}

func (e *Engine) copyConstr(c mip.Constr) (mip.Constr, error) {
	for _, i := range c.Ind {
		if i < 0 || i >= len(e.vars) {
			return mip.Constr{}, fmt.Errorf("%w: %d in %s", mip.ErrBadIndex, i, c.Name)
		}
	}
	cp := c
	cp.Ind = append([]int(nil), c.Ind...)
	cp.Val = append([]float64(nil), c.Val...)
	return cp, nil
}

func (e *Engine) NumVars() int    { return len(e.vars) }
func (e *Engine) NumConstrs() int { return len(e.rows) }

// VarName returns the name given to column i.
func (e *Engine) VarName(i int) string {
	if i < 0 || i >= len(e.vars) {
		return ""
	}
	return e.vars[i].name
}

// Constrs returns a copy of the rows of the model.
func (e *Engine) Constrs() []mip.Constr {
	return append([]mip.Constr(nil), e.rows...)
}

// LazyConstrs returns the constraints collected from rejected candidates
// during the last Optimize.
func (e *Engine) LazyConstrs() []mip.Constr {
	return append([]mip.Constr(nil), e.lazy...)
}

func (e *Engine) SetThreads(n int) error {
	if n < 1 {
		return fmt.Errorf("bnb: thread count must be positive, got %d", n)
	}
	e.threads = n
	return nil
}

func (e *Engine) Threads() int { return e.threads }

func (e *Engine) SetTimeLimit(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("bnb: time limit must be positive, got %s", d)
	}
	e.timeLimit = d
	return nil
}

func (e *Engine) Use(cb mip.Callback, mask mip.Event) error {
	if e.running.Load() {
		return mip.ErrAlreadyOptimize
	}
	e.cb, e.mask = cb, mask
	return nil
}

func (e *Engine) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.WriteLP(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Engine) Free() {
	e.cb = nil
	e.lazy = nil
}

func (e *Engine) Optimize() (*mip.Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, mip.ErrAlreadyOptimize
	}
	defer e.running.Store(false)

	start := time.Now()
	s := newSearch(start, e.timeLimit)
	root := &node{lb: make([]float64, len(e.vars)), ub: make([]float64, len(e.vars)), bound: math.Inf(-1)}
	for j, v := range e.vars {
		root.lb[j], root.ub[j] = v.lb, v.ub
	}
	s.push(root)

	var g errgroup.Group
	for t := 0; t < e.threads; t++ {
		id := t
		g.Go(func() error {
			return e.thread(id, s)
		})
	}
	err := g.Wait()

	e.lazy = s.cuts
	res := s.result()
	res.Runtime = time.Since(start)
	if err != nil {
		res.Status = mip.Error
		if errors.Is(err, ErrUnbounded) {
			res.Status = mip.Unbounded
		}
		return res, err
	}
	return res, nil
}

func (e *Engine) invoke(ctx *cbContext) error {
	if e.cb == nil || !e.mask.Has(ctx.event) {
		return nil
	}
	return e.cb.Invoke(ctx)
}

func (e *Engine) thread(id int, s *search) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bnb: thread %d panicked: %v", id, r)
		}
		if err != nil {
			s.abort()
		}
	}()
	if err = e.invoke(&cbContext{event: mip.ThreadUp, thread: id}); err != nil {
		return err
	}
	defer func() {
		if derr := e.invoke(&cbContext{event: mip.ThreadDown, thread: id}); derr != nil && err == nil {
			err = derr
		}
	}()
	for {
		nd := s.next()
		if nd == nil {
			return nil
		}
		err = e.process(id, nd, s)
		s.release(nd)
		if err != nil {
			return err
		}
	}
}

func (e *Engine) objective() []float64 {
	obj := make([]float64, len(e.vars))
	for j, v := range e.vars {
		obj[j] = v.obj
	}
	return obj
}

/* Solve the relaxation of nd, branch if it is fractional, otherwise offer the point to the callback. A rejected
candidate is resolved at the same node with the new cuts. */

func (e *Engine) process(id int, nd *node, s *search) error {
	obj := e.objective()
	for {
		rows := append(e.rows[:len(e.rows):len(e.rows)], s.snapshot()...)
		val, x, err := relax(obj, rows, nd.lb, nd.ub)
		if errors.Is(err, lp.ErrInfeasible) {
			return nil
		}
		if errors.Is(err, lp.ErrUnbounded) {
			return ErrUnbounded
		}
		if err != nil {
			return fmt.Errorf("bnb: relaxation at depth %d: %w", nd.depth, err)
		}
		if val >= s.cutoff()-pruneTol {
			return nil
		}

		if j := e.branchVar(x); j >= 0 {
			down := nd.child(val)
			down.ub[j] = math.Floor(x[j])
			up := nd.child(val)
			up.lb[j] = math.Ceil(x[j])
			s.push(down, up)
			return nil
		}

		for j, v := range e.vars {
			if v.vtype != mip.Continuous {
				x[j] = math.Round(x[j])
			}
		}
		val = 0
		for j := range x {
			val += obj[j] * x[j]
		}

		ctx := &cbContext{event: mip.Candidate, thread: id, point: x, obj: val, engine: e}
		if err := e.invoke(ctx); err != nil {
			return err
		}
		if len(ctx.rejected) > 0 {
			violated := false
			for _, c := range ctx.rejected {
				if c.Violation(x) > mip.FeasTol {
					violated = true
					break
				}
			}
			if !violated {
				return mip.ErrCutNotViolated
			}
			s.addCuts(ctx.rejected)
			continue
		}
		if s.offer(x, val) {
			return nil
		}
	}
}

// branchVar picks the integer column whose fractional part is closest to 1/2,
// or -1 if x is integral.
func (e *Engine) branchVar(x []float64) int {
	best := mip.NoVar
	bestDist := math.Inf(1)
	for j, v := range e.vars {
		if v.vtype == mip.Continuous {
			continue
		}
		_, f := math.Modf(x[j])
		f = math.Abs(f)
		if f <= intTol || f >= 1-intTol {
			continue
		}
		if d := math.Abs(0.5 - f); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}
