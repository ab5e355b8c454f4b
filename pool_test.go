package cvrp

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"git.solver4all.com/azaryc2s/cvrp/capsep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	id       int
	released atomic.Int32
	calls    atomic.Int32
	cuts     []capsep.Cut
	err      error
}

func (w *fakeWorker) FindCuts(x [][]float64) ([]capsep.Cut, error) {
	w.calls.Add(1)
	return w.cuts, w.err
}

func (w *fakeWorker) Release() { w.released.Add(1) }

// fakeFactory hands out fakeWorkers and remembers them.
type fakeFactory struct {
	mu      sync.Mutex
	workers []*fakeWorker
	cuts    []capsep.Cut
	sepErr  error
	err     error
}

func (f *fakeFactory) new() (SeparationWorker, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &fakeWorker{id: len(f.workers), cuts: f.cuts, err: f.sepErr}
	f.workers = append(f.workers, w)
	return w, nil
}

func TestThreadUpTwiceReleasesPreviousWorker(t *testing.T) {
	f := &fakeFactory{}
	p := NewWorkerPool(2, f.new)
	require.NoError(t, p.Up(0))
	require.NoError(t, p.Up(0))
	require.Len(t, f.workers, 2)
	assert.EqualValues(t, 1, f.workers[0].released.Load())
	assert.EqualValues(t, 0, f.workers[1].released.Load())
	assert.Equal(t, SlotActive, p.State(0))
	assert.Equal(t, SlotIdle, p.State(1))
}

func TestThreadDownReleasesWorker(t *testing.T) {
	f := &fakeFactory{}
	p := NewWorkerPool(1, f.new)
	require.NoError(t, p.Up(0))
	require.NoError(t, p.Down(0))
	assert.EqualValues(t, 1, f.workers[0].released.Load())
	assert.Equal(t, SlotIdle, p.State(0))

	_, err := p.Separate(0, nil)
	assert.Error(t, err)
	assert.Zero(t, p.Close())
}

func TestSeparateNeedsActiveThread(t *testing.T) {
	f := &fakeFactory{cuts: []capsep.Cut{{Set: []int{1, 2}, Rhs: 1}}}
	p := NewWorkerPool(2, f.new)
	_, err := p.Separate(1, nil)
	require.Error(t, err)
	_, err = p.Separate(-1, nil)
	require.Error(t, err)

	require.NoError(t, p.Up(1))
	cuts, err := p.Separate(1, nil)
	require.NoError(t, err)
	assert.Equal(t, f.cuts, cuts)
	assert.EqualValues(t, 1, f.workers[0].calls.Load())
}

func TestPoolGrowsForUnknownThread(t *testing.T) {
	f := &fakeFactory{}
	p := NewWorkerPool(1, f.new)
	require.NoError(t, p.Up(3))
	assert.Equal(t, 4, p.Size())
	assert.Equal(t, SlotActive, p.State(3))
	assert.Equal(t, SlotIdle, p.State(7))
}

func TestFactoryFailureLeavesSlotIdle(t *testing.T) {
	f := &fakeFactory{err: errors.New("out of memory")}
	p := NewWorkerPool(1, f.new)
	err := p.Up(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, f.err)
	assert.Equal(t, SlotIdle, p.State(0))
}

func TestCloseReleasesLeftovers(t *testing.T) {
	f := &fakeFactory{}
	live := 0
	p := NewWorkerPool(3, f.new)
	p.live = func(d int) { live += d }
	require.NoError(t, p.Up(0))
	require.NoError(t, p.Up(2))
	assert.Equal(t, 2, live)

	assert.Equal(t, 2, p.Close())
	assert.Equal(t, 0, live)
	for _, w := range f.workers {
		assert.EqualValues(t, 1, w.released.Load())
	}
}

func TestConcurrentThreads(t *testing.T) {
	f := &fakeFactory{}
	p := NewWorkerPool(8, f.new)
	var wg sync.WaitGroup
	for th := 0; th < 8; th++ {
		wg.Add(1)
		go func(th int) {
			defer wg.Done()
			assert.NoError(t, p.Up(th))
			for k := 0; k < 50; k++ {
				_, err := p.Separate(th, nil)
				assert.NoError(t, err)
			}
			assert.NoError(t, p.Down(th))
		}(th)
	}
	wg.Wait()
	require.Len(t, f.workers, 8)
	for _, w := range f.workers {
		assert.EqualValues(t, 50, w.calls.Load())
		assert.EqualValues(t, 1, w.released.Load())
	}
}

func TestSlotStateString(t *testing.T) {
	assert.Equal(t, "Idle", SlotIdle.String())
	assert.Equal(t, "ThreadActive", SlotActive.String())
	assert.Equal(t, "SlotState(9)", SlotState(9).String())
}
