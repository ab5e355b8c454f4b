package cvrp

import (
	"fmt"
	"sync"

	"git.solver4all.com/azaryc2s/cvrp/capsep"
)

// SeparationWorker is the per-thread separation oracle. Implementations may
// keep state between calls and need not be safe for concurrent use.
type SeparationWorker interface {
	FindCuts(x [][]float64) ([]capsep.Cut, error)
	Release()
}

type WorkerFactory func() (SeparationWorker, error)

// CapsepFactory creates capsep workers for inst.
func CapsepFactory(inst *CVRPInstance) WorkerFactory {
	return func() (SeparationWorker, error) {
		w, err := capsep.NewWorker(inst.Demands, inst.NodeCount-1, inst.Capacity)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

type SlotState int8

const (
	SlotIdle SlotState = iota
	SlotStarting
	SlotActive
	SlotStopping
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "Idle"
	case SlotStarting:
		return "ThreadStarting"
	case SlotActive:
		return "ThreadActive"
	case SlotStopping:
		return "ThreadStopping"
	}
	return fmt.Sprintf("SlotState(%d)", int8(s))
}

// workerSlot belongs to one thread id. mu serializes the lifecycle events and
// the separation calls on the worker it holds.
type workerSlot struct {
	mu     sync.Mutex
	state  SlotState
	worker SeparationWorker
}

/* One slot per solver thread id. A thread only ever touches its own slot, the slot array itself is guarded by mu
since it grows when an engine reports a thread id beyond the initial size. */

type WorkerPool struct {
	mu      sync.RWMutex
	slots   []*workerSlot
	factory WorkerFactory
	live    func(delta int)
}

func NewWorkerPool(size int, factory WorkerFactory) *WorkerPool {
	if size < 1 {
		size = 1
	}
	p := &WorkerPool{slots: make([]*workerSlot, size), factory: factory}
	for i := range p.slots {
		p.slots[i] = &workerSlot{}
	}
	return p
}

func (p *WorkerPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.slots)
}

func (p *WorkerPool) slot(thread int) (*workerSlot, error) {
	if thread < 0 {
		return nil, fmt.Errorf("invalid thread id %d", thread)
	}
	p.mu.RLock()
	if thread < len(p.slots) {
		s := p.slots[thread]
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.slots) <= thread {
		p.slots = append(p.slots, &workerSlot{})
	}
	return p.slots[thread], nil
}

func (p *WorkerPool) track(delta int) {
	if p.live != nil {
		p.live(delta)
	}
}

// Up installs a fresh worker for thread, releasing the one it replaces.
func (p *WorkerPool) Up(thread int) error {
	s, err := p.slot(thread)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SlotStarting
	if s.worker != nil {
		s.worker.Release()
		s.worker = nil
		p.track(-1)
	}
	w, err := p.factory()
	if err != nil {
		s.state = SlotIdle
		return fmt.Errorf("creating separation worker for thread %d: %w", thread, err)
	}
	s.worker = w
	s.state = SlotActive
	p.track(1)
	return nil
}

// Down releases the worker of thread.
func (p *WorkerPool) Down(thread int) error {
	s, err := p.slot(thread)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SlotStopping
	if s.worker != nil {
		s.worker.Release()
		s.worker = nil
		p.track(-1)
	}
	s.state = SlotIdle
	return nil
}

// Separate runs the worker of thread on xi. The thread has to be active.
func (p *WorkerPool) Separate(thread int, xi [][]float64) ([]capsep.Cut, error) {
	s, err := p.slot(thread)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SlotActive || s.worker == nil {
		return nil, fmt.Errorf("thread %d is %s, no separation worker bound", thread, s.state)
	}
	return s.worker.FindCuts(xi)
}

func (p *WorkerPool) State(thread int) SlotState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if thread < 0 || thread >= len(p.slots) {
		return SlotIdle
	}
	s := p.slots[thread]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases every worker still alive, in case a thread-down event was
// never delivered. It returns how many workers it released.
func (p *WorkerPool) Close() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	released := 0
	for _, s := range p.slots {
		s.mu.Lock()
		if s.worker != nil {
			s.worker.Release()
			s.worker = nil
			released++
			p.track(-1)
		}
		s.state = SlotIdle
		s.mu.Unlock()
	}
	return released
}
