package cvrp

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"git.solver4all.com/azaryc2s/cvrp/mip"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Driver owns one engine and runs the branch-and-cut on it. The capacity
// callback it registers lives exactly as long as one Solve call.
type Driver struct {
	Engine  mip.Engine
	Config  *Config
	Factory WorkerFactory
	Metrics *Metrics
	System  SysInfo
}

// Solve validates inst, builds the model and runs the search. The returned
// error is a *ConfigurationError when nothing was solved, a *SeparationError
// or *SolverError when the search failed or proved infeasibility. The
// solution is non-nil as soon as the instance passed validation.
func (d *Driver) Solve(inst *CVRPInstance) (*CVRPSolution, error) {
	if err := inst.Validate(); err != nil {
		Log(LOG_ERR, "Instance %s is invalid: %s", inst.Name, err.Error())
		return nil, err
	}
	cfg := d.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		Log(LOG_ERR, "Config is invalid: %s", err.Error())
		return nil, err
	}

	sol := &CVRPSolution{RunID: uuid.New().String(), System: d.System, Status: mip.Unknown.String()}
	model, err := CreateCVRPModel(d.Engine, inst)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return sol, &SolverError{Status: mip.Error, Err: errors.Wrap(err, "building the model")}
	}
	if err := d.Engine.SetTimeLimit(cfg.TimeLimitDuration()); err != nil {
		return sol, &SolverError{Status: mip.Error, Err: errors.Wrap(err, "setting the time limit")}
	}

	threads := d.Engine.Threads()
	factory := d.Factory
	if factory == nil {
		factory = CapsepFactory(inst)
	}
	cb := NewCapacityCallback(model, threads, factory, d.Metrics)
	defer cb.Close()
	if err := d.Engine.Use(cb, mip.Candidate|mip.ThreadUp|mip.ThreadDown); err != nil {
		return sol, &SolverError{Status: mip.Error, Err: errors.Wrap(err, "registering the callback")}
	}
	d.export(cfg, "model.lp")

	Log(LOG_INFO, "Solving %s (run %s) with %d threads and a time limit of %s", inst.Name, sol.RunID, threads, cfg.TimeLimitDuration())
	startTime := time.Now()
	res, err := optimize(d.Engine)
	sol.Time = time.Since(startTime).String()
	sol.Cuts = cb.Cuts()
	if err != nil {
		sol.Status = mip.Error.String()
		Log(LOG_ERR, "Optimization of %s failed: %s", inst.Name, err.Error())
		var sepErr *SeparationError
		if errors.As(err, &sepErr) {
			return sol, sepErr
		}
		status := mip.Error
		if res != nil && res.Status != mip.Unknown {
			status = res.Status
		}
		return sol, &SolverError{Status: status, Err: err}
	}
	Log(LOG_INFO, "---OPTIMIZATION DONE---")
	d.export(cfg, "model_end.lp")

	captureSolution(inst, model, res, sol)
	if res.Status == mip.Infeasible || res.Status == mip.Unbounded {
		return sol, &SolverError{Status: res.Status}
	}
	return sol, nil
}

func (d *Driver) export(cfg *Config, name string) {
	if !cfg.ExportModel {
		return
	}
	path := filepath.Join(cfg.OutputDir, name)
	if err := d.Engine.Write(path); err != nil {
		Log(LOG_ERR, "Couldn't export the model to %s: %s", path, err.Error())
	}
}

// optimize turns a panic inside the engine into an error so one broken solve
// does not take the process down.
func optimize(engine mip.Engine) (res *mip.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return engine.Optimize()
}

func captureSolution(inst *CVRPInstance, model *CVRPModel, res *mip.Result, sol *CVRPSolution) {
	sol.Status = res.Status.String()
	sol.Nodes = res.Nodes
	switch res.Status {
	case mip.Optimal:
		sol.Optimal = true
	case mip.Infeasible:
		Log(LOG_ERR, "Model for %s is infeasible", inst.Name)
		sol.Comment += "Model is infeasible. "
	case mip.TimeLimit:
		sol.Comment += "Time limit reached. "
	default:
		sol.Comment += "For some reason the optimization stopped before the time limit without an optimal solution. "
	}
	if !math.IsInf(res.Bound, 0) && !math.IsNaN(res.Bound) {
		sol.LBound = int(math.Ceil(res.Bound - 1e-6))
	}
	if !res.HasSolution() {
		Log(LOG_INFO, "No solution found for %s", inst.Name)
		return
	}

	sol.Obj = int(res.Objective + 0.5)
	edges := model.ExtractEdgeMatrix(res.X)
	sol.Edges = nil
	for i := 0; i < model.N; i++ {
		for j := i + 1; j < model.N; j++ {
			if edges[i][j] > 0 {
				sol.Edges = append(sol.Edges, []int{i, j, edges[i][j]})
			}
		}
	}
	routes, unvisited := ExtractRoutes(edges)
	if len(unvisited) > 0 {
		Log(LOG_ERR, "Customers %v are not connected to the depot", unvisited)
	}
	sol.Routes = routes
	sol.RouteLoads = sol.RouteLoads[:0]
	sol.RouteCosts = sol.RouteCosts[:0]
	for _, route := range routes {
		sol.RouteLoads = append(sol.RouteLoads, RouteLoad(inst.Demands, route))
		sol.RouteCosts = append(sol.RouteCosts, RouteCost(inst.EdgeWeights, route))
	}
	if ok, comment := CheckSolutionValidity(inst, routes, sol.Obj); !ok {
		Log(LOG_ERR, "%s", comment)
		sol.Comment += comment
	}
	Log(LOG_INFO, "Added %d capacity cuts", sol.Cuts)
	Log(LOG_INFO, "Found routes with objective %d : %v", sol.Obj, sol.Routes)
}
