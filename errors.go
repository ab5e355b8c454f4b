package cvrp

import (
	"fmt"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

// ConfigurationError reports a malformed instance or parameter set. It is
// raised before any solver resource is allocated.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErrorf(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SolverError reports that the engine could not optimize the model.
type SolverError struct {
	Status mip.Status
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("solver error: status %s", e.Status)
	}
	return fmt.Sprintf("solver error (status %s): %s", e.Status, e.Err.Error())
}

func (e *SolverError) Unwrap() error { return e.Err }

// SeparationError reports that the separation worker of a thread could not
// process a candidate.
type SeparationError struct {
	Thread int
	Err    error
}

func (e *SeparationError) Error() string {
	return fmt.Sprintf("separation error on thread %d: %s", e.Thread, e.Err.Error())
}

func (e *SeparationError) Unwrap() error { return e.Err }
