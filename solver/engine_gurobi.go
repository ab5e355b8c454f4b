//go:build gurobi

package main

import (
	"git.solver4all.com/azaryc2s/cvrp/grb"
	"git.solver4all.com/azaryc2s/cvrp/mip"
)

func newGurobiEngine(name, logFile string, threads int) (mip.Engine, error) {
	e, err := grb.New(name, logFile)
	if err != nil {
		return nil, err
	}
	if threads > 0 {
		if err := e.SetThreads(threads); err != nil {
			e.Free()
			return nil, err
		}
	}
	return e, nil
}
