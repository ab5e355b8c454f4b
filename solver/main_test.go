//go:build !gurobi

package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"git.solver4all.com/azaryc2s/cvrp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func writeInstance(t *testing.T, demands []int) string {
	t.Helper()
	inst := &cvrp.CVRPInstance{
		Name:            "line",
		EdgeWeightType:  cvrp.EDGE_WEIGHT_EUC_2D,
		NodeCoordinates: [][]float64{{0, 0}, {3, 4}, {6, 8}},
		Demands:         demands,
		Capacity:        2,
		VehicleCount:    1,
	}
	path := filepath.Join(t.TempDir(), "line.json")
	require.NoError(t, cvrp.WriteInstanceJSON(path, inst))
	return path
}

// runSolver runs the CLI and returns the exit code it asked for, -1 when it
// never called the exiter, and the error of the action.
func runSolver(t *testing.T, args ...string) (int, error) {
	t.Helper()
	code := -1
	exiter := cli.OsExiter
	cli.OsExiter = func(c int) { code = c }
	defer func() { cli.OsExiter = exiter }()

	app := newApp()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"cvrp-solver"}, args...))
	return code, err
}

func TestSolverWritesSolution(t *testing.T) {
	input := writeInstance(t, []int{0, 1, 1})
	outDir := t.TempDir()
	code, err := runSolver(t, "--input", input, "--output-dir", outDir, "--threads", "1", "--log", "1")
	require.NoError(t, err)
	assert.Equal(t, -1, code)

	edges, err := os.ReadFile(filepath.Join(outDir, "solutionEdges.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0 1 1\n0 2 1\n1 2 1\n", string(edges))
	inst, err := cvrp.LoadInstance(input)
	require.NoError(t, err)
	require.NotNil(t, inst.Solution)
	assert.Equal(t, 20, inst.Solution.Obj)
}

func TestSolverExitsOnInvalidInstance(t *testing.T) {
	input := writeInstance(t, []int{0, 3, 1})
	code, err := runSolver(t, "--input", input, "--output-dir", t.TempDir(), "--log", "1")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestSolverExitsOnInvalidConfig(t *testing.T) {
	input := writeInstance(t, []int{0, 1, 1})
	code, err := runSolver(t, "--input", input, "--engine", "CPLEX", "--log", "1")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestSolverSucceedsWhenEngineIsUnavailable(t *testing.T) {
	input := writeInstance(t, []int{0, 1, 1})
	outDir := t.TempDir()
	code, err := runSolver(t, "--input", input, "--output-dir", outDir, "--engine", cvrp.ENGINE_GUROBI, "--log", "1")
	assert.NoError(t, err)
	assert.Equal(t, -1, code)
	assert.NoFileExists(t, filepath.Join(outDir, "solutionEdges.txt"))
}
