package cvrp

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	trucksInName    = regexp.MustCompile(`-k(\d+)`)
	trucksInComment = regexp.MustCompile(`(?i)no of trucks:\s*(\d+)`)
)

// LoadInstance reads a JSON instance or, for the .vrp extension, a CVRPLIB
// file and prepares it for validation.
func LoadInstance(path string) (*CVRPInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening instance %s", path)
	}
	defer f.Close()

	var inst *CVRPInstance
	if strings.EqualFold(filepath.Ext(path), ".vrp") {
		inst, err = ReadCVRPLIB(f)
	} else {
		inst = &CVRPInstance{}
		err = json.NewDecoder(f).Decode(inst)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing instance %s", path)
	}
	inst.Prepare()
	return inst, nil
}

// Prepare fills the fields that can be derived from the others: the node
// count, the cost matrix from the coordinates and the minimum number of
// vehicles.
func (inst *CVRPInstance) Prepare() {
	if inst.NodeCount == 0 {
		inst.NodeCount = len(inst.Demands)
	}
	if len(inst.EdgeWeights) == 0 && len(inst.NodeCoordinates) > 0 {
		inst.EdgeWeights = CalcEdgeDist(inst.NodeCoordinates, inst.EdgeWeightType)
	}
	if inst.VehicleCount <= 0 {
		if m := trucksInName.FindStringSubmatch(inst.Name); m != nil {
			inst.VehicleCount, _ = strconv.Atoi(m[1])
		} else if m := trucksInComment.FindStringSubmatch(inst.Comment); m != nil {
			inst.VehicleCount, _ = strconv.Atoi(m[1])
		} else if inst.Capacity > 0 {
			total := 0
			for _, q := range inst.Demands {
				total += q
			}
			inst.VehicleCount = (total + inst.Capacity - 1) / inst.Capacity
		}
	}
}

// Validate checks everything the model builder and the separation rely on.
func (inst *CVRPInstance) Validate() error {
	n := inst.NodeCount
	if n < 2 {
		return configErrorf("node_count", "must be at least 2, got %d", n)
	}
	if inst.Capacity <= 0 {
		return configErrorf("capacity", "must be positive, got %d", inst.Capacity)
	}
	if inst.VehicleCount <= 0 {
		return configErrorf("vehicle_count", "must be positive, got %d", inst.VehicleCount)
	}
	if len(inst.Demands) != n {
		return configErrorf("demands", "has %d entries for %d nodes", len(inst.Demands), n)
	}
	if inst.Demands[0] != 0 {
		return configErrorf("demands", "depot demand must be 0, got %d", inst.Demands[0])
	}
	for i, q := range inst.Demands {
		if q < 0 {
			return configErrorf("demands", "node %d has negative demand %d", i, q)
		}
		if q > inst.Capacity {
			return configErrorf("demands", "node %d demand %d exceeds the capacity %d", i, q, inst.Capacity)
		}
	}
	if len(inst.NodeCoordinates) != 0 && len(inst.NodeCoordinates) != n {
		return configErrorf("node_coordinates", "has %d entries for %d nodes", len(inst.NodeCoordinates), n)
	}
	if len(inst.EdgeWeights) != n {
		return configErrorf("edge_weights", "has %d rows for %d nodes", len(inst.EdgeWeights), n)
	}
	for i := 0; i < n; i++ {
		if len(inst.EdgeWeights[i]) != n {
			return configErrorf("edge_weights", "row %d has %d entries for %d nodes", i, len(inst.EdgeWeights[i]), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if inst.EdgeWeights[i][j] < 0 {
				return configErrorf("edge_weights", "d[%d][%d] is negative", i, j)
			}
			if inst.EdgeWeights[i][j] != inst.EdgeWeights[j][i] {
				return configErrorf("edge_weights", "d[%d][%d] != d[%d][%d]", i, j, j, i)
			}
		}
	}
	return nil
}

/* Read an instance in CVRPLIB (TSPLIB) format. Only the depot 1 layout used by the CVRPLIB benchmark sets is
supported: the first node is the depot. */

func ReadCVRPLIB(r io.Reader) (*CVRPInstance, error) {
	inst := &CVRPInstance{Type: "CVRP", EdgeWeightType: EDGE_WEIGHT_EUC_2D}
	sc := bufio.NewScanner(r)
	section := ""
	weightFormat := ""
	var weights []int
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if key, val, ok := strings.Cut(text, ":"); ok && !strings.HasSuffix(strings.TrimSpace(key), "SECTION") {
			key, val = strings.TrimSpace(key), strings.TrimSpace(val)
			section = ""
			var err error
			switch key {
			case "NAME":
				inst.Name = val
			case "COMMENT":
				inst.Comment = val
			case "TYPE":
				inst.Type = val
			case "DIMENSION":
				inst.NodeCount, err = strconv.Atoi(val)
			case "CAPACITY":
				inst.Capacity, err = strconv.Atoi(val)
			case "VEHICLES":
				inst.VehicleCount, err = strconv.Atoi(val)
			case "EDGE_WEIGHT_TYPE":
				inst.EdgeWeightType = val
			case "EDGE_WEIGHT_FORMAT":
				weightFormat = val
			case "DISPLAY_DATA_TYPE":
				inst.DisplayDataType = val
			}
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			if key == "DIMENSION" {
				inst.NodeCoordinates = make([][]float64, 0, inst.NodeCount)
				inst.Demands = make([]int, inst.NodeCount)
			}
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "NODE_COORD_SECTION", "DEMAND_SECTION", "DEPOT_SECTION", "EDGE_WEIGHT_SECTION":
			section = fields[0]
			continue
		case "EOF":
			section = ""
			continue
		}
		switch section {
		case "NODE_COORD_SECTION":
			if len(fields) < 3 {
				return nil, errors.Errorf("line %d: expected 'id x y'", line)
			}
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			if errX != nil || errY != nil {
				return nil, errors.Errorf("line %d: bad coordinates %q", line, text)
			}
			inst.NodeCoordinates = append(inst.NodeCoordinates, []float64{x, y})
		case "DEMAND_SECTION":
			if len(fields) < 2 {
				return nil, errors.Errorf("line %d: expected 'id demand'", line)
			}
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			q, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			if id < 1 || id > len(inst.Demands) {
				return nil, errors.Errorf("line %d: node %d out of range", line, id)
			}
			inst.Demands[id-1] = q
		case "EDGE_WEIGHT_SECTION":
			for _, f := range fields {
				w, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", line)
				}
				weights = append(weights, int(w+0.5))
			}
		case "DEPOT_SECTION":
			if fields[0] != "1" && fields[0] != "-1" {
				return nil, errors.Errorf("line %d: only node 1 is supported as depot, got %s", line, fields[0])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(weights) > 0 {
		m, err := expandWeights(weights, inst.NodeCount, weightFormat)
		if err != nil {
			return nil, err
		}
		inst.EdgeWeights = m
		inst.EdgeWeightType = EDGE_WEIGHT_EXPL
	}
	return inst, nil
}

func expandWeights(w []int, n int, format string) ([][]int, error) {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	k := 0
	next := func() (int, error) {
		if k >= len(w) {
			return 0, errors.Errorf("EDGE_WEIGHT_SECTION too short for %d nodes (%s)", n, format)
		}
		k++
		return w[k-1], nil
	}
	for i := 0; i < n; i++ {
		var lo, hi int
		switch format {
		case "LOWER_ROW":
			lo, hi = 0, i
		case "LOWER_DIAG_ROW":
			lo, hi = 0, i+1
		case "UPPER_ROW":
			lo, hi = i+1, n
		case "FULL_MATRIX", "":
			lo, hi = 0, n
		default:
			return nil, errors.Errorf("unsupported EDGE_WEIGHT_FORMAT %s", format)
		}
		for j := lo; j < hi; j++ {
			v, err := next()
			if err != nil {
				return nil, err
			}
			m[i][j] = v
			if format != "FULL_MATRIX" && format != "" {
				m[j][i] = v
			}
		}
	}
	return m, nil
}
