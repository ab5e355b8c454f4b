package cvrp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallVRP = `NAME : P-n5-k2
COMMENT : (Augerat et al, No of trucks: 2, Optimal value: 0)
TYPE : CVRP
DIMENSION : 5
EDGE_WEIGHT_TYPE : EUC_2D
CAPACITY : 3
NODE_COORD_SECTION
 1 0 0
 2 3 4
 3 6 8
 4 -3 -4
 5 0 10
DEMAND_SECTION
1 0
2 1
3 2
4 1
5 1
DEPOT_SECTION
 1
 -1
EOF
`

func TestReadCVRPLIB(t *testing.T) {
	inst, err := ReadCVRPLIB(strings.NewReader(smallVRP))
	require.NoError(t, err)
	inst.Prepare()

	assert.Equal(t, "P-n5-k2", inst.Name)
	assert.Equal(t, 5, inst.NodeCount)
	assert.Equal(t, 3, inst.Capacity)
	assert.Equal(t, 2, inst.VehicleCount)
	assert.Equal(t, []int{0, 1, 2, 1, 1}, inst.Demands)
	require.Len(t, inst.NodeCoordinates, 5)
	assert.Equal(t, []float64{-3, -4}, inst.NodeCoordinates[3])
	assert.Equal(t, 5, inst.EdgeWeights[0][1])
	assert.Equal(t, 10, inst.EdgeWeights[3][1])
	assert.Equal(t, 10, inst.EdgeWeights[0][4])
	require.NoError(t, inst.Validate())
}

func TestReadCVRPLIBExplicitWeights(t *testing.T) {
	src := `NAME : E-n4
DIMENSION : 4
EDGE_WEIGHT_TYPE : EXPLICIT
EDGE_WEIGHT_FORMAT : LOWER_ROW
CAPACITY : 10
EDGE_WEIGHT_SECTION
 3
 4 5
 6 7 8
DEMAND_SECTION
1 0
2 4
3 4
4 4
EOF
`
	inst, err := ReadCVRPLIB(strings.NewReader(src))
	require.NoError(t, err)
	inst.Prepare()
	assert.Equal(t, EDGE_WEIGHT_EXPL, inst.EdgeWeightType)
	assert.Equal(t, [][]int{
		{0, 3, 4, 6},
		{3, 0, 5, 7},
		{4, 5, 0, 8},
		{6, 7, 8, 0},
	}, inst.EdgeWeights)
	assert.Equal(t, 2, inst.VehicleCount)
	require.NoError(t, inst.Validate())
}

func TestReadCVRPLIBErrors(t *testing.T) {
	cases := map[string]string{
		"bad dimension": "DIMENSION : five\n",
		"bad demand":    "DIMENSION : 2\nDEMAND_SECTION\n1 x\n",
		"node range":    "DIMENSION : 2\nDEMAND_SECTION\n3 1\n",
		"other depot":   "DIMENSION : 2\nDEPOT_SECTION\n2\n",
		"short weights": "DIMENSION : 3\nEDGE_WEIGHT_FORMAT : UPPER_ROW\nEDGE_WEIGHT_SECTION\n1 2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCVRPLIB(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadInstanceByExtension(t *testing.T) {
	dir := t.TempDir()
	vrp := filepath.Join(dir, "P-n5-k2.vrp")
	require.NoError(t, os.WriteFile(vrp, []byte(smallVRP), 0644))
	inst, err := LoadInstance(vrp)
	require.NoError(t, err)
	assert.Equal(t, 2, inst.VehicleCount)

	js := filepath.Join(dir, "inst.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"name":"j","demands":[0,1,1],"capacity":1,"node_coordinates":[[0,0],[0,1],[1,0]]}`), 0644))
	inst, err = LoadInstance(js)
	require.NoError(t, err)
	assert.Equal(t, 3, inst.NodeCount)
	assert.Equal(t, 2, inst.VehicleCount)
	assert.Equal(t, 1, inst.EdgeWeights[0][2])

	_, err = LoadInstance(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestVehicleCountFromComment(t *testing.T) {
	inst := &CVRPInstance{Comment: "No of trucks: 4", Demands: []int{0, 1}, Capacity: 10}
	inst.Prepare()
	assert.Equal(t, 4, inst.VehicleCount)
}

func TestValidate(t *testing.T) {
	valid := func() *CVRPInstance { return unitInstance(uniformCosts(3, 2), 2, 1) }
	require.NoError(t, valid().Validate())

	cases := map[string]func(inst *CVRPInstance){
		"node_count":       func(inst *CVRPInstance) { inst.NodeCount = 1 },
		"capacity":         func(inst *CVRPInstance) { inst.Capacity = 0 },
		"vehicle_count":    func(inst *CVRPInstance) { inst.VehicleCount = 0 },
		"demands":          func(inst *CVRPInstance) { inst.Demands[0] = 1 },
		"edge_weights":     func(inst *CVRPInstance) { inst.EdgeWeights[0][1] = 7 },
		"node_coordinates": func(inst *CVRPInstance) { inst.NodeCoordinates = [][]float64{{0, 0}} },
	}
	for field, breakIt := range cases {
		t.Run(field, func(t *testing.T) {
			inst := valid()
			breakIt(inst)
			err := inst.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}
