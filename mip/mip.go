// Package mip holds the contract between the CVRP branch-and-cut code and the
// MIP engines that drive it: how a model is assembled, which events an engine
// reports to a registered callback and how a callback may reject a candidate.
package mip

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// NoVar marks a slot of an index matrix that is not bound to a column.
const NoVar = -1

// FeasTol is the tolerance used when comparing constraint activities.
const FeasTol = 1e-6

var (
	ErrBadIndex        = errors.New("mip: variable index out of range")
	ErrNotCandidate    = errors.New("mip: context is not a candidate context")
	ErrCutNotViolated  = errors.New("mip: rejected candidate satisfies every submitted constraint")
	ErrNoSolution      = errors.New("mip: no solution available")
	ErrAlreadyOptimize = errors.New("mip: optimize already running")
)

type VarType int8

const (
	Continuous VarType = iota
	Binary
	Integer
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "C"
	case Binary:
		return "B"
	case Integer:
		return "I"
	}
	return fmt.Sprintf("VarType(%d)", int8(t))
}

type Sense int8

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	}
	return fmt.Sprintf("Sense(%d)", int8(s))
}

// Constr is a named linear row sum(Val[k]*x[Ind[k]]) Sense Rhs.
type Constr struct {
	Name  string
	Ind   []int
	Val   []float64
	Sense Sense
	Rhs   float64
}

// Activity evaluates the left hand side of c at x.
func (c Constr) Activity(x []float64) float64 {
	act := 0.0
	for k, i := range c.Ind {
		act += c.Val[k] * x[i]
	}
	return act
}

// Violation returns by how much x violates c. Values <= 0 mean satisfied.
func (c Constr) Violation(x []float64) float64 {
	act := c.Activity(x)
	switch c.Sense {
	case LessEqual:
		return act - c.Rhs
	case GreaterEqual:
		return c.Rhs - act
	default:
		return math.Abs(act - c.Rhs)
	}
}

// Event enumerates the callback contexts an engine can report. Values are bit
// flags so that a registration mask can be built with |.
type Event uint8

const (
	ThreadUp Event = 1 << iota
	ThreadDown
	Candidate
)

func (e Event) String() string {
	switch e {
	case ThreadUp:
		return "ThreadUp"
	case ThreadDown:
		return "ThreadDown"
	case Candidate:
		return "Candidate"
	}
	return fmt.Sprintf("Event(%#x)", uint8(e))
}

// Has reports whether the mask e contains every flag in o.
func (e Event) Has(o Event) bool {
	return e&o == o
}

// Context is handed to a Callback for a single invocation. It must not be
// retained after Invoke returns.
type Context interface {
	Event() Event
	ThreadID() int
	// CandidatePoint returns the value of each requested column in the
	// current candidate. Only valid for Candidate events.
	CandidatePoint(vars []int) ([]float64, error)
	CandidateObjective() (float64, error)
	// RejectCandidate rejects the current candidate and hands c to the
	// engine as a lazy constraint.
	RejectCandidate(c Constr) error
}

type Callback interface {
	Invoke(ctx Context) error
}

// CallbackFunc adapts a plain function to the Callback interface.
type CallbackFunc func(ctx Context) error

func (f CallbackFunc) Invoke(ctx Context) error {
	return f(ctx)
}

type Status int8

const (
	Unknown Status = iota
	Optimal
	TimeLimit
	Infeasible
	Unbounded
	Error
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case TimeLimit:
		return "TIME_LIMIT"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Result is what an engine reports after Optimize returns.
type Result struct {
	Status    Status
	Objective float64
	Bound     float64
	X         []float64
	Nodes     int
	Runtime   time.Duration
}

func (r *Result) HasSolution() bool {
	return r != nil && r.X != nil
}

func (r *Result) Value(i int) (float64, error) {
	if !r.HasSolution() {
		return 0, ErrNoSolution
	}
	if i < 0 || i >= len(r.X) {
		return 0, ErrBadIndex
	}
	return r.X[i], nil
}

// Model is the construction side of an engine.
type Model interface {
	AddVar(name string, obj, lb, ub float64, vtype VarType) (int, error)
	AddConstr(c Constr) error
	NumVars() int
	NumConstrs() int
}

// Engine is a MIP engine supporting lazy constraints through a generic
// callback.
type Engine interface {
	Model
	SetTimeLimit(d time.Duration) error
	// Threads is the number of parallel search threads Optimize will use.
	// Thread ids passed to the callback are in [0, Threads()).
	Threads() int
	// Use registers cb for the events set in mask. A later call replaces the
	// previous registration.
	Use(cb Callback, mask Event) error
	Optimize() (*Result, error)
	// Write exports the model to path. The format follows the file extension.
	Write(path string) error
	Free()
}
