package capsep

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeros(n int) [][]float64 {
	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, n)
	}
	return x
}

func setEdge(x [][]float64, i, j int, v float64) {
	if i > j {
		i, j = j, i
	}
	x[i][j] = v
}

// routesPoint builds the edge point of the given depot routes.
func routesPoint(n int, routes ...[]int) [][]float64 {
	x := zeros(n)
	for _, r := range routes {
		if len(r) == 1 {
			setEdge(x, 0, r[0], 2)
			continue
		}
		prev := 0
		for _, v := range r {
			setEdge(x, prev, v, x[min(prev, v)][max(prev, v)]+1)
			prev = v
		}
		setEdge(x, prev, 0, x[0][prev]+1)
	}
	return x
}

func newUnitWorker(t *testing.T, customers, capacity int) *Worker {
	t.Helper()
	demand := make([]int, customers+1)
	for i := 1; i <= customers; i++ {
		demand[i] = 1
	}
	w, err := NewWorker(demand, customers, capacity)
	require.NoError(t, err)
	return w
}

func TestFeasibleRoutesYieldNoCut(t *testing.T) {
	w := newUnitWorker(t, 4, 2)
	cuts, err := w.FindCuts(routesPoint(5, []int{1, 2}, []int{3, 4}))
	require.NoError(t, err)
	assert.Empty(t, cuts)
	assert.Equal(t, 1, w.Calls())
}

func TestOverloadedRoute(t *testing.T) {
	w := newUnitWorker(t, 4, 2)
	x := routesPoint(5, []int{1, 2, 3}, []int{4})
	cuts, err := w.FindCuts(x)
	require.NoError(t, err)
	require.Len(t, cuts, 1)
	assert.Equal(t, []int{1, 2, 3}, cuts[0].Set)
	assert.Equal(t, 1, cuts[0].Rhs)
	assert.Greater(t, Violation(x, cuts[0]), 0.0)
}

func TestDisconnectedSubtour(t *testing.T) {
	w := newUnitWorker(t, 5, 10)
	x := zeros(6)
	setEdge(x, 1, 2, 1)
	setEdge(x, 2, 3, 1)
	setEdge(x, 1, 3, 1)
	setEdge(x, 0, 4, 1)
	setEdge(x, 4, 5, 1)
	setEdge(x, 0, 5, 1)
	cuts, err := w.FindCuts(x)
	require.NoError(t, err)
	require.Len(t, cuts, 1)
	assert.Equal(t, []int{1, 2, 3}, cuts[0].Set)
	assert.Equal(t, 2, cuts[0].Rhs)
}

func TestZeroDemandSubtour(t *testing.T) {
	w, err := NewWorker([]int{0, 1, 1, 0, 0, 0}, 5, 10)
	require.NoError(t, err)
	x := routesPoint(6, []int{1, 2})
	setEdge(x, 3, 4, 1)
	setEdge(x, 4, 5, 1)
	setEdge(x, 3, 5, 1)
	cuts, err := w.FindCuts(x)
	require.NoError(t, err)
	require.Len(t, cuts, 1)
	assert.Equal(t, []int{3, 4, 5}, cuts[0].Set)
	assert.Equal(t, 2, cuts[0].Rhs)
	assert.InDelta(t, 1.0, Violation(x, cuts[0]), 1e-9)
}

func TestZeroDemandRouteIsFeasible(t *testing.T) {
	w, err := NewWorker([]int{0, 0, 0, 0}, 3, 5)
	require.NoError(t, err)
	cuts, err := w.FindCuts(routesPoint(4, []int{1, 2, 3}))
	require.NoError(t, err)
	assert.Empty(t, cuts)
}

func TestEveryCutIsViolated(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		customers := 3 + rng.Intn(6)
		n := customers + 1
		demand := make([]int, n)
		for i := 1; i < n; i++ {
			demand[i] = rng.Intn(6)
		}
		w, err := NewWorker(demand, customers, 5+rng.Intn(6))
		require.NoError(t, err)
		x := zeros(n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				switch rng.Intn(4) {
				case 0:
					x[i][j] = 1
				case 1:
					x[i][j] = rng.Float64()
				}
			}
		}
		cuts, err := w.FindCuts(x)
		require.NoError(t, err)
		for _, c := range cuts {
			assert.Greater(t, Violation(x, c), Eps, "trial %d cut %v", trial, c)
			for _, i := range c.Set {
				assert.True(t, i >= 1 && i < n)
			}
		}
	}
}

func TestMaxCuts(t *testing.T) {
	w := newUnitWorker(t, 6, 1)
	w.MaxCuts = 1
	x := zeros(7)
	setEdge(x, 1, 2, 1)
	setEdge(x, 3, 4, 1)
	setEdge(x, 5, 6, 1)
	cuts, err := w.FindCuts(x)
	require.NoError(t, err)
	assert.Len(t, cuts, 1)
}

func TestMalformedPoint(t *testing.T) {
	w := newUnitWorker(t, 3, 2)
	_, err := w.FindCuts(zeros(3))
	require.ErrorIs(t, err, ErrMalformedPoint)

	x := zeros(4)
	x[1][2] = math.NaN()
	_, err = w.FindCuts(x)
	require.ErrorIs(t, err, ErrMalformedPoint)

	x = zeros(4)
	x[0][3] = -1
	_, err = w.FindCuts(x)
	require.ErrorIs(t, err, ErrMalformedPoint)

	x = zeros(4)
	x[2] = x[2][:2]
	_, err = w.FindCuts(x)
	require.ErrorIs(t, err, ErrMalformedPoint)
}

func TestNewWorkerValidation(t *testing.T) {
	_, err := NewWorker([]int{0, 1}, 1, 0)
	require.Error(t, err)
	_, err = NewWorker([]int{0, 1}, 2, 3)
	require.Error(t, err)
	_, err = NewWorker([]int{0}, 0, 3)
	require.Error(t, err)
}

func TestReleasedWorker(t *testing.T) {
	w := newUnitWorker(t, 2, 2)
	w.Release()
	_, err := w.FindCuts(zeros(3))
	require.Error(t, err)
}

func TestMinVehicles(t *testing.T) {
	assert.Equal(t, 0, MinVehicles(0, 5))
	assert.Equal(t, 1, MinVehicles(5, 5))
	assert.Equal(t, 2, MinVehicles(6, 5))
	assert.Equal(t, 1, SetVehicles(0, 5))
	assert.Equal(t, 1, SetVehicles(3, 5))
	assert.Equal(t, 3, SetVehicles(11, 5))
}
