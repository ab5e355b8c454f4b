// Package grb runs the model on Gurobi through gorobi. It is only compiled
// with the gurobi build tag since it needs cgo and a Gurobi installation.
//
// Gurobi serializes its callbacks, so every event is reported on thread 0:
// ThreadUp right before the optimization starts and ThreadDown once it
// returned.
package grb
