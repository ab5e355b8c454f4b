package cvrp

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"git.solver4all.com/azaryc2s/cvrp/capsep"
	"git.solver4all.com/azaryc2s/cvrp/mip"
)

// CutsCapacityCount numbers the capacity cuts of the process. It is only used
// to name them.
var CutsCapacityCount atomic.Int64

// CapacityCallback rejects integer candidates that violate a capacity
// inequality. It reacts to the ThreadUp, ThreadDown and Candidate events.
type CapacityCallback struct {
	model   *CVRPModel
	pool    *WorkerPool
	metrics *Metrics
	vars    []int
	cuts    atomic.Int64
}

func NewCapacityCallback(model *CVRPModel, threads int, factory WorkerFactory, metrics *Metrics) *CapacityCallback {
	cb := &CapacityCallback{
		model:   model,
		pool:    NewWorkerPool(threads, factory),
		metrics: metrics,
		vars:    model.EdgeVars(),
	}
	cb.pool.live = metrics.workers
	return cb
}

func (cb *CapacityCallback) Pool() *WorkerPool { return cb.pool }

// Cuts returns how many cuts this callback submitted.
func (cb *CapacityCallback) Cuts() int64 { return cb.cuts.Load() }

// Close tears the worker pool down.
func (cb *CapacityCallback) Close() {
	if n := cb.pool.Close(); n > 0 {
		Log(LOG_DEBUG, "Released %d separation workers left over after the search", n)
	}
}

func (cb *CapacityCallback) Invoke(ctx mip.Context) error {
	thNum := ctx.ThreadID()
	switch ctx.Event() {
	case mip.ThreadUp:
		Log(LOG_SPAM, "Thread %d up", thNum)
		return cb.pool.Up(thNum)
	case mip.ThreadDown:
		Log(LOG_SPAM, "Thread %d down", thNum)
		return cb.pool.Down(thNum)
	case mip.Candidate:
		return cb.lazyCapacity(ctx, thNum)
	}
	return nil
}

func (cb *CapacityCallback) lazyCapacity(ctx mip.Context, thNum int) error {
	cb.metrics.candidate()
	xi, err := cb.extractCandidate(ctx)
	if err != nil {
		Log(LOG_ERR, "Couldn't read the candidate on thread %d: %s", thNum, err.Error())
		return err
	}

	if maxLvl >= LOG_SPAM {
		Log(LOG_SPAM, "Candidate edges on thread %d:\n%s", thNum, Print2DArray(xi))
	}

	start := time.Now()
	cuts, err := cb.pool.Separate(thNum, xi)
	cb.metrics.separated(time.Since(start).Seconds())
	if err != nil {
		Log(LOG_ERR, "Separation failed on thread %d: %s", thNum, err.Error())
		return &SeparationError{Thread: thNum, Err: err}
	}
	if len(cuts) == 0 {
		Log(LOG_SPAM, "No capacity cut violated by the candidate on thread %d", thNum)
		return nil
	}
	for _, cut := range cuts {
		if err := cb.addCut(ctx, cut); err != nil {
			return err
		}
	}
	return nil
}

// extractCandidate reads the candidate value of every edge variable into an
// NxN matrix with only i<j populated.
func (cb *CapacityCallback) extractCandidate(ctx mip.Context) ([][]float64, error) {
	vals, err := ctx.CandidatePoint(cb.vars)
	if err != nil {
		return nil, fmt.Errorf("reading candidate point: %w", err)
	}
	if len(vals) != len(cb.vars) {
		return nil, fmt.Errorf("reading candidate point: got %d values for %d edges", len(vals), len(cb.vars))
	}
	return cb.model.EdgeMatrix(vals), nil
}

func (cb *CapacityCallback) addCut(ctx mip.Context, cut capsep.Cut) error {
	k := CutsCapacityCount.Add(1)
	c := CapacityCut(cb.model.Xi, cut.Set, cut.Rhs, fmt.Sprintf("S_%d", k))
	Log(LOG_DEBUG, "Adding capacity cut %s", cb.model.FormatCut(c.Name, cut))
	if err := ctx.RejectCandidate(c); err != nil {
		Log(LOG_ERR, "Couldn't reject the candidate with %s: %s", c.Name, err.Error())
		return err
	}
	cb.cuts.Add(1)
	cb.metrics.cut()
	return nil
}

// FormatCut renders a capacity cut with the edge names, e.g.
// "S_3: xi_1_2 + xi_1_3 + xi_2_3 <= 1".
func (cm *CVRPModel) FormatCut(name string, cut capsep.Cut) string {
	var sb strings.Builder
	sb.WriteString(name + ":")
	first := true
	for a := 0; a < len(cut.Set); a++ {
		for b := a + 1; b < len(cut.Set); b++ {
			if !first {
				sb.WriteString(" +")
			}
			first = false
			sb.WriteString(" " + cm.EdgeName(cut.Set[a], cut.Set[b]))
		}
	}
	if first {
		sb.WriteString(" 0")
	}
	fmt.Fprintf(&sb, " <= %d", cut.Rhs)
	return sb.String()
}

// CapacityCut builds sum_{i<j in set} xi_ij <= rhs.
func CapacityCut(xi [][]int, set []int, rhs int, name string) mip.Constr {
	c := mip.Constr{Name: name, Sense: mip.LessEqual, Rhs: float64(rhs)}
	for _, i := range set {
		for _, j := range set {
			if i < j {
				c.Ind = append(c.Ind, xi[i][j])
				c.Val = append(c.Val, 1.0)
			}
		}
	}
	return c
}
