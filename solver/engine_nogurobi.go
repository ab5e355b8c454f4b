//go:build !gurobi

package main

import (
	"errors"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

func newGurobiEngine(name, logFile string, threads int) (mip.Engine, error) {
	return nil, errors.New("this binary was built without Gurobi support, rebuild with -tags gurobi")
}
