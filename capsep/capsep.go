// Package capsep separates rounded capacity inequalities for the two-index
// CVRP formulation.
//
// A Worker looks at the support graph of a candidate point restricted to the
// customers. Every connected component S (at a couple of thresholds) is
// checked against x(E(S)) <= |S| - r(S) with r(S) = max(1, ceil(q(S)/Q)), so
// customers without demand still need a vehicle to reach them. On integer
// points that satisfy the degree equations this finds every violated subset,
// on fractional points it is a heuristic.
package capsep

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	Eps            = 1e-6
	DefaultMaxCuts = 50
)

var ErrMalformedPoint = errors.New("capsep: malformed candidate point")

// thresholds on edge values used to build the support graph.
var thresholds = []float64{Eps, 0.5}

// Cut stands for sum_{i<j in Set} x[i][j] <= Rhs.
type Cut struct {
	Set []int
	Rhs int
}

// Worker holds the separation state of one search thread. It is not safe for
// concurrent use.
type Worker struct {
	demand    []int
	customers int
	capacity  int
	MaxCuts   int

	// scratch buffers reused across calls
	comp  []int
	stack []int
	seen  map[string]struct{}
	calls int
}

func NewWorker(demand []int, customers, capacity int) (*Worker, error) {
	if customers < 1 {
		return nil, fmt.Errorf("capsep: need at least one customer, got %d", customers)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("capsep: capacity must be positive, got %d", capacity)
	}
	if len(demand) != customers+1 {
		return nil, fmt.Errorf("capsep: demand vector has %d entries, expected %d", len(demand), customers+1)
	}
	return &Worker{
		demand:    append([]int(nil), demand...),
		customers: customers,
		capacity:  capacity,
		MaxCuts:   DefaultMaxCuts,
		comp:      make([]int, customers+1),
		stack:     make([]int, 0, customers+1),
		seen:      make(map[string]struct{}),
	}, nil
}

// Calls returns how many times FindCuts ran on this worker.
func (w *Worker) Calls() int { return w.calls }

// Release drops the buffers of the worker. A released worker must not be used.
func (w *Worker) Release() {
	w.comp = nil
	w.stack = nil
	w.seen = nil
	w.demand = nil
}

// MinVehicles returns ceil(demand/capacity).
func MinVehicles(demand, capacity int) int {
	return (demand + capacity - 1) / capacity
}

// SetVehicles is r(S): a non-empty customer set is served by at least one
// vehicle whatever its demand.
func SetVehicles(demand, capacity int) int {
	return max(1, MinVehicles(demand, capacity))
}

// FindCuts returns the capacity cuts violated by x. Only the entries x[i][j]
// with i < j are read. An empty result means no violated cut was found.
func (w *Worker) FindCuts(x [][]float64) ([]Cut, error) {
	if w.comp == nil {
		return nil, errors.New("capsep: worker already released")
	}
	if err := w.check(x); err != nil {
		return nil, err
	}
	w.calls++
	for k := range w.seen {
		delete(w.seen, k)
	}

	var cuts []Cut
	for _, th := range thresholds {
		for _, set := range w.components(x, th) {
			if len(cuts) >= w.MaxCuts {
				return cuts, nil
			}
			key := setKey(set)
			if _, ok := w.seen[key]; ok {
				continue
			}
			w.seen[key] = struct{}{}
			q := 0
			for _, i := range set {
				q += w.demand[i]
			}
			cut := Cut{Set: set, Rhs: len(set) - SetVehicles(q, w.capacity)}
			if Lhs(x, cut.Set) > float64(cut.Rhs)+Eps {
				cuts = append(cuts, cut)
			}
		}
	}
	return cuts, nil
}

func (w *Worker) check(x [][]float64) error {
	n := w.customers + 1
	if len(x) != n {
		return fmt.Errorf("%w: %d rows, expected %d", ErrMalformedPoint, len(x), n)
	}
	for i := 0; i < n; i++ {
		if len(x[i]) != n {
			return fmt.Errorf("%w: row %d has %d entries, expected %d", ErrMalformedPoint, i, len(x[i]), n)
		}
		for j := i + 1; j < n; j++ {
			v := x[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) || v < -Eps {
				return fmt.Errorf("%w: x[%d][%d] = %g", ErrMalformedPoint, i, j, v)
			}
		}
	}
	return nil
}

// components returns the connected components of the customer graph holding
// the edges with x >= th, each sorted ascending.
func (w *Worker) components(x [][]float64, th float64) [][]int {
	n := w.customers + 1
	for i := range w.comp {
		w.comp[i] = -1
	}
	var sets [][]int
	for s := 1; s < n; s++ {
		if w.comp[s] >= 0 {
			continue
		}
		id := len(sets)
		set := []int{}
		w.stack = append(w.stack[:0], s)
		w.comp[s] = id
		for len(w.stack) > 0 {
			v := w.stack[len(w.stack)-1]
			w.stack = w.stack[:len(w.stack)-1]
			set = append(set, v)
			for u := 1; u < n; u++ {
				if u == v || w.comp[u] >= 0 {
					continue
				}
				if edge(x, v, u) >= th {
					w.comp[u] = id
					w.stack = append(w.stack, u)
				}
			}
		}
		sort.Ints(set)
		sets = append(sets, set)
	}
	return sets
}

func edge(x [][]float64, i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return x[i][j]
}

// Lhs sums x over the edges with both ends in set.
func Lhs(x [][]float64, set []int) float64 {
	sum := 0.0
	for a := 0; a < len(set); a++ {
		for b := a + 1; b < len(set); b++ {
			sum += edge(x, set[a], set[b])
		}
	}
	return sum
}

// Violation returns by how much x violates c.
func Violation(x [][]float64, c Cut) float64 {
	return Lhs(x, c.Set) - float64(c.Rhs)
}

func setKey(set []int) string {
	var sb strings.Builder
	for k, i := range set {
		if k > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}
