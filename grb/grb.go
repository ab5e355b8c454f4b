//go:build gurobi

package grb

import (
	"fmt"
	"math"
	"time"

	"git.solver4all.com/azaryc2s/cvrp/mip"
	"git.solver4all.com/azaryc2s/gorobi/gurobi"
	"github.com/shirou/gopsutil/cpu"
)

type Engine struct {
	env       *gurobi.Env
	model     *gurobi.Model
	nvars     int
	nconstrs  int
	threads   int
	timeLimit time.Duration
	cb        mip.Callback
	mask      mip.Event
	cbErr     error
}

// New creates a Gurobi environment logging to logFile and an empty
// minimization model.
func New(name, logFile string) (*Engine, error) {
	env, err := gurobi.LoadEnv(logFile)
	if err != nil {
		return nil, err
	}
	model, err := env.NewModel(name, 0, nil, nil, nil, nil, nil)
	if err != nil {
		env.Free()
		return nil, err
	}
	if err := model.SetIntAttr(gurobi.INT_ATTR_MODELSENSE, gurobi.MINIMIZE); err != nil {
		model.Free()
		env.Free()
		return nil, err
	}
	e := &Engine{env: env, model: model}
	threads, _ := env.GetIntParam(gurobi.INT_PAR_THREADS)
	e.threads = int(threads)
	if e.threads <= 0 {
		if n, err := cpu.Counts(true); err == nil && n > 0 {
			e.threads = n
		} else {
			e.threads = 1
		}
	}
	return e, nil
}

func vtype(t mip.VarType) int8 {
	switch t {
	case mip.Binary:
		return gurobi.BINARY
	case mip.Integer:
		return gurobi.INTEGER
	}
	return gurobi.CONTINUOUS
}

func sense(s mip.Sense) int8 {
	switch s {
	case mip.LessEqual:
		return gurobi.LESS_EQUAL
	case mip.GreaterEqual:
		return gurobi.GREATER_EQUAL
	}
	return gurobi.EQUAL
}

func (e *Engine) AddVar(name string, obj, lb, ub float64, t mip.VarType) (int, error) {
	if err := e.model.AddVar(nil, nil, obj, lb, ub, vtype(t), name); err != nil {
		return mip.NoVar, err
	}
	e.nvars++
	return e.nvars - 1, nil
}

func (e *Engine) indices(c mip.Constr) ([]int32, error) {
	if len(c.Ind) != len(c.Val) {
		return nil, fmt.Errorf("grb: constraint %s has %d indices but %d values", c.Name, len(c.Ind), len(c.Val))
	}
	ind := make([]int32, len(c.Ind))
	for k, j := range c.Ind {
		if j < 0 || j >= e.nvars {
			return nil, fmt.Errorf("%w: %d in %s", mip.ErrBadIndex, j, c.Name)
		}
		ind[k] = int32(j)
	}
	return ind, nil
}

func (e *Engine) AddConstr(c mip.Constr) error {
	ind, err := e.indices(c)
	if err != nil {
		return err
	}
	if err := e.model.AddConstr(ind, c.Val, sense(c.Sense), c.Rhs, c.Name); err != nil {
		return err
	}
	e.nconstrs++
	return nil
}

func (e *Engine) NumVars() int    { return e.nvars }
func (e *Engine) NumConstrs() int { return e.nconstrs }
func (e *Engine) Threads() int    { return e.threads }

func (e *Engine) SetThreads(n int) error {
	if n < 1 {
		return fmt.Errorf("grb: thread count must be positive, got %d", n)
	}
	if err := e.model.SetIntParam(gurobi.INT_PAR_THREADS, int32(n)); err != nil {
		return err
	}
	e.threads = n
	return nil
}

func (e *Engine) SetTimeLimit(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("grb: time limit must be positive, got %s", d)
	}
	e.timeLimit = d
	return e.model.SetDblParam("TimeLimit", d.Seconds())
}

func (e *Engine) Use(cb mip.Callback, mask mip.Event) error {
	e.cb, e.mask = cb, mask
	return nil
}

func (e *Engine) Write(path string) error {
	return e.model.Write(path)
}

func (e *Engine) Free() {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	if e.env != nil {
		e.env.Free()
		e.env = nil
	}
}

func (e *Engine) invoke(ctx mip.Context) error {
	if e.cb == nil || !e.mask.Has(ctx.Event()) {
		return nil
	}
	return e.cb.Invoke(ctx)
}

func (e *Engine) Optimize() (*mip.Result, error) {
	start := time.Now()
	e.cbErr = nil
	if e.cb != nil {
		if err := e.model.SetIntParam(gurobi.INT_PAR_LAZYCONSTRAINTS, 1); err != nil {
			return nil, err
		}
		if err := e.model.SetCallbackFuncGo(candidateCallback, e); err != nil {
			return nil, err
		}
	}
	if err := e.invoke(&context{event: mip.ThreadUp}); err != nil {
		return nil, err
	}
	optErr := e.model.Optimize()
	downErr := e.invoke(&context{event: mip.ThreadDown})

	res := &mip.Result{Status: mip.Error, Bound: math.Inf(-1), Runtime: time.Since(start)}
	switch {
	case e.cbErr != nil:
		return res, e.cbErr
	case optErr != nil:
		return res, optErr
	case downErr != nil:
		return res, downErr
	}
	if err := e.collect(res); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) collect(res *mip.Result) error {
	status, err := e.model.GetIntAttr(gurobi.INT_ATTR_STATUS)
	if err != nil {
		return err
	}
	switch status {
	case gurobi.OPTIMAL:
		res.Status = mip.Optimal
	case gurobi.TIME_LIMIT:
		res.Status = mip.TimeLimit
	case gurobi.INF_OR_UNBD:
		// edge costs are non-negative, the model cannot be unbounded
		res.Status = mip.Infeasible
		res.Bound = math.Inf(1)
		return nil
	default:
		res.Status = mip.Unknown
	}
	if lb, err := e.model.GetDblAttr(gurobi.DBL_ATTR_OBJBOUND); err == nil {
		res.Bound = lb
	}
	solcount, err := e.model.GetIntAttr(gurobi.INT_ATTR_SOLCOUNT)
	if err != nil || solcount == 0 {
		return err
	}
	if res.Objective, err = e.model.GetDblAttr(gurobi.DBL_ATTR_OBJVAL); err != nil {
		return err
	}
	res.X, err = e.model.GetDblAttrArray(gurobi.DBL_ATTR_X, 0, int32(e.nvars))
	return err
}

/* Called by Gurobi for every callback location. Only new incumbents (MIPSOL) are forwarded as candidates, a
rejection is translated into lazy constraints. A non zero return value makes Gurobi stop the optimization. */

func candidateCallback(model *gurobi.Model, cbdata gurobi.CPVoid, where int32, usrdata interface{}) int32 {
	e := usrdata.(*Engine)
	if where != gurobi.CB_MIPSOL {
		return 0
	}
	ctx := &context{event: mip.Candidate, engine: e, cbdata: cbdata, where: where}
	if err := e.invoke(ctx); err != nil {
		e.cbErr = err
		return 1
	}
	return 0
}
