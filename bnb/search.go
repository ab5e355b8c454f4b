package bnb

import (
	"container/heap"
	"math"
	"sync"
	"time"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

type node struct {
	lb, ub []float64
	bound  float64
	depth  int
	index  int
}

func (nd *node) child(bound float64) *node {
	c := &node{
		lb:    append([]float64(nil), nd.lb...),
		ub:    append([]float64(nil), nd.ub...),
		bound: bound,
		depth: nd.depth + 1,
	}
	return c
}

// nodeQueue orders open nodes by bound, deeper nodes first on ties.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return q[i].depth > q[j].depth
}
func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *nodeQueue) Push(x interface{}) {
	nd := x.(*node)
	nd.index = len(*q)
	*q = append(*q, nd)
}
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return nd
}

/* Shared state of one Optimize call: the open nodes, the incumbent and the pool of lazy constraints collected from
rejected candidates. Everything is guarded by mu. */

type search struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     nodeQueue
	inflight  map[*node]struct{}
	stopped   bool
	timedOut  bool
	deadline  time.Time
	cuts      []mip.Constr
	incumbent []float64
	incObj    float64
	nodes     int
}

func newSearch(start time.Time, limit time.Duration) *search {
	s := &search{inflight: make(map[*node]struct{}), incObj: math.Inf(1)}
	s.cond = sync.NewCond(&s.mu)
	if limit > 0 {
		s.deadline = start.Add(limit)
	}
	return s
}

func (s *search) push(nds ...*node) {
	s.mu.Lock()
	for _, nd := range nds {
		heap.Push(&s.queue, nd)
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// next blocks until a node is available or the search is over, in which case
// it returns nil.
func (s *search) next() *node {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopped {
			return nil
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			s.timedOut = true
			s.stop()
			return nil
		}
		if s.queue.Len() > 0 {
			nd := heap.Pop(&s.queue).(*node)
			if nd.bound >= s.incObj-pruneTol {
				continue
			}
			s.inflight[nd] = struct{}{}
			s.nodes++
			return nd
		}
		if len(s.inflight) == 0 {
			s.stop()
			return nil
		}
		s.cond.Wait()
	}
}

func (s *search) release(nd *node) {
	s.mu.Lock()
	delete(s.inflight, nd)
	done := len(s.inflight) == 0 && s.queue.Len() == 0
	s.mu.Unlock()
	if done {
		s.cond.Broadcast()
	}
}

// stop must be called with mu held.
func (s *search) stop() {
	s.stopped = true
	s.cond.Broadcast()
}

func (s *search) abort() {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()
}

func (s *search) cutoff() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incObj
}

func (s *search) snapshot() []mip.Constr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cuts[:len(s.cuts):len(s.cuts)]
}

func (s *search) addCuts(cs []mip.Constr) {
	s.mu.Lock()
	s.cuts = append(s.cuts, cs...)
	s.mu.Unlock()
}

// offer installs x as incumbent if it improves on the current one. It returns
// false when a cut added by another thread since the relaxation was solved
// cuts x off, so the caller has to resolve.
func (s *search) offer(x []float64, obj float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cuts {
		if c.Violation(x) > mip.FeasTol {
			return false
		}
	}
	if obj < s.incObj {
		s.incumbent = x
		s.incObj = obj
	}
	return true
}

func (s *search) result() *mip.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := &mip.Result{Nodes: s.nodes}
	if s.incumbent != nil {
		res.X = s.incumbent
		res.Objective = s.incObj
	}
	switch {
	case s.timedOut:
		res.Status = mip.TimeLimit
		res.Bound = s.incObj
		for _, nd := range s.queue {
			res.Bound = math.Min(res.Bound, nd.bound)
		}
		for nd := range s.inflight {
			res.Bound = math.Min(res.Bound, nd.bound)
		}
	case s.incumbent == nil:
		res.Status = mip.Infeasible
		res.Bound = math.Inf(1)
	default:
		res.Status = mip.Optimal
		res.Bound = s.incObj
	}
	return res
}
