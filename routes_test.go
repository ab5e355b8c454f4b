package cvrp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// edgeMatrix builds a symmetric integer matrix from "i j v" triples.
func edgeMatrix(n int, triples ...[3]int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for _, tr := range triples {
		m[tr[0]][tr[1]] += tr[2]
		m[tr[1]][tr[0]] += tr[2]
	}
	return m
}

func TestExtractRoutes(t *testing.T) {
	edges := edgeMatrix(6, [3]int{0, 1, 2}, [3]int{0, 2, 1}, [3]int{2, 3, 1}, [3]int{3, 0, 1}, [3]int{0, 4, 1}, [3]int{4, 5, 1}, [3]int{5, 0, 1})
	routes, unvisited := ExtractRoutes(edges)
	assert.Equal(t, [][]int{{1}, {2, 3}, {4, 5}}, routes)
	assert.Empty(t, unvisited)
}

func TestExtractRoutesReportsSubtours(t *testing.T) {
	edges := edgeMatrix(6, [3]int{0, 1, 2}, [3]int{2, 3, 1}, [3]int{3, 4, 1}, [3]int{4, 2, 1})
	routes, unvisited := ExtractRoutes(edges)
	assert.Equal(t, [][]int{{1}}, routes)
	assert.Equal(t, []int{2, 3, 4, 5}, unvisited)
}

func TestCheckSolutionValidity(t *testing.T) {
	inst := unitInstance(uniformCosts(5, 3), 2, 2)
	ok, comment := CheckSolutionValidity(inst, [][]int{{1, 2}, {3, 4}}, 18)
	assert.True(t, ok, comment)
	assert.Equal(t, 9, RouteCost(inst.EdgeWeights, []int{1, 2}))
	assert.Equal(t, 2, RouteLoad(inst.Demands, []int{3, 4}))

	cases := map[string]struct {
		routes [][]int
		obj    int
		reason string
	}{
		"overload":    {[][]int{{1, 2, 3}, {4}}, 18, "capacity"},
		"missing":     {[][]int{{1, 2}, {3}}, 15, "visited 0 times"},
		"twice":       {[][]int{{1, 2}, {2, 3}, {4}}, 24, "visited 2 times"},
		"route count": {[][]int{{1, 2}, {3}, {4}}, 21, "vehicles"},
		"objective":   {[][]int{{1, 2}, {3, 4}}, 17, "objective"},
		"depot":       {[][]int{{0, 1}, {2, 3}}, 18, "invalid node"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			ok, comment := CheckSolutionValidity(inst, c.routes, c.obj)
			assert.False(t, ok)
			assert.Contains(t, comment, c.reason)
		})
	}
}

func TestGetEdgeIndex(t *testing.T) {
	k := 0
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			assert.Equal(t, k+3, GetEdgeIndex(i, j, 5, 3))
			assert.Equal(t, k+3, GetEdgeIndex(j, i, 5, 3))
			k++
		}
	}
}

func TestCalcEdgeDist(t *testing.T) {
	coords := [][]float64{{0, 0}, {1, 1}, {3, 4}}
	assert.Equal(t, [][]int{{0, 1, 5}, {1, 0, 4}, {5, 4, 0}}, CalcEdgeDist(coords, EDGE_WEIGHT_EUC_2D))
	assert.Equal(t, [][]int{{0, 2, 5}, {2, 0, 4}, {5, 4, 0}}, CalcEdgeDist(coords, EDGE_WEIGHT_CEIL))
}

func TestPrint2DArray(t *testing.T) {
	assert.Equal(t, "0,1,\n1,0,\n", Print2DArray([][]int{{0, 1}, {1, 0}}))
	assert.Equal(t, "0,0.5,\n", Print2DArray([][]float64{{0, 0.5}}))
}

func TestSanitizeJsonArrayLineBreaks(t *testing.T) {
	in := "{\n\t\"a\": [\n\t\t1,\n\t\t-2.5,\n\t\t3\n\t],\n\t\"b\": 4\n}"
	assert.Equal(t, "{\n\t\"a\": [1,-2.5,3],\n\t\"b\": 4\n}", SanitizeJsonArrayLineBreaks(in))
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	InitLoggersTo(&buf, LOG_INFO)
	defer InitLoggersTo(&buf, 0)
	Log(LOG_ERR, "broken %d", 1)
	Log(LOG_INFO, "fine")
	Log(LOG_DEBUG, "hidden")
	out := buf.String()
	assert.Contains(t, out, "broken 1")
	assert.Contains(t, out, "fine")
	assert.False(t, strings.Contains(out, "hidden"))
}
