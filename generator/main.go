package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.solver4all.com/azaryc2s/cvrp"
)

var demandStrats cvrp.ArrayStringFlags
var nodes cvrp.ArrayIntFlags
var capacities cvrp.ArrayIntFlags
var name *string
var input *string
var output *string
var count *int
var dMin *int
var dMax *int
var xTo *int
var yTo *int
var w *string
var seed *int64

func main() {
	flag.Var(&demandStrats, "d", "List of demand-generation strategies. (UNIT|RNG)")
	flag.Var(&nodes, "n", "List of number of nodes (depot included)")
	flag.Var(&capacities, "q", "List of vehicle capacities")
	name = flag.String("name", "zarychta", "Name for the instance")
	input = flag.String("inputDir", "", "Input directory with files as base problem (to extract coordinates from)")
	output = flag.String("outputDir", ".", "Output directory")
	count = flag.Int("count", 1, "Number of instances per combination")
	dMin = flag.Int("dMin", 1, "The lowest value for a customer demand")
	dMax = flag.Int("dMax", 10, "The highest value for a customer demand")
	xTo = flag.Int("x", 1000, "Max value on the x-axis")
	yTo = flag.Int("y", 1000, "Max value on the y-axis")
	w = flag.String("w", cvrp.EDGE_WEIGHT_EUC_2D, "EDGE_WEIGHT_TYPE - how the distance between nodes is calculated. (EUC_2D|CEIL_2D)")
	seed = flag.Int64("seed", 0, "Seed of the random generator, 0 uses the current time")

	flag.Parse()
	cvrp.InitLoggers(cvrp.LOG_INFO)
	if len(demandStrats) == 0 {
		demandStrats.Set("RNG")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var baseInst []*cvrp.CVRPInstance
	if *input != "" {
		dir, err := os.ReadDir(*input)
		if err != nil {
			cvrp.Log(cvrp.LOG_ERR, "Couldn't open directory %s: %s", *input, err.Error())
			return
		}
		nodes = nodes[:0]
		for _, f := range dir {
			ext := strings.ToLower(filepath.Ext(f.Name()))
			if ext != ".json" && ext != ".vrp" {
				continue
			}
			inst, err := cvrp.LoadInstance(filepath.Join(*input, f.Name()))
			if err != nil {
				cvrp.Log(cvrp.LOG_ERR, "Couldn't read %s: %s", f.Name(), err.Error())
				return
			}
			if len(inst.NodeCoordinates) == 0 {
				cvrp.Log(cvrp.LOG_INFO, "Skipping %s, it has no coordinates", f.Name())
				continue
			}
			baseInst = append(baseInst, inst)
			nodes = append(nodes, len(inst.NodeCoordinates))
		}
	}

	for l := 0; l < *count; l++ {
		for i, n := range nodes {
			if n < 2 {
				cvrp.Log(cvrp.LOG_ERR, "Skipping n=%d, an instance needs a depot and a customer", n)
				continue
			}
			baseName := *name
			var coordinatesArray [][]float64
			if baseInst != nil {
				coordinatesArray = baseInst[i].NodeCoordinates
				baseName = baseInst[i].Name
			} else {
				coordinatesArray = make([][]float64, n)
				for node := 0; node < n; node++ {
					coordinatesArray[node] = []float64{float64(rng.Intn(*xTo)), float64(rng.Intn(*yTo))}
				}
			}
			for _, q := range capacities {
				for _, s := range demandStrats {
					demands, err := genDemands(rng, n, q, s)
					if err != nil {
						cvrp.Log(cvrp.LOG_ERR, "%s", err.Error())
						return
					}
					instName := fmt.Sprintf("%s_%d_%d_%s_%d", baseName, n, q, s, l)
					inst := &cvrp.CVRPInstance{
						Name:            instName,
						Comment:         fmt.Sprintf("%s instance Nr. %d with %d nodes, capacity %d and demands generated as %s", baseName, l, n, q, s),
						Type:            "CVRP",
						NodeCount:       n,
						DisplayDataType: "COORD_DISPLAY",
						EdgeWeightType:  *w,
						NodeCoordinates: coordinatesArray,
						Demands:         demands,
						Capacity:        q,
					}
					inst.Prepare()
					inst.EdgeWeights = nil
					if err := cvrp.WriteInstanceJSON(filepath.Join(*output, instName+".json"), inst); err != nil {
						cvrp.Log(cvrp.LOG_ERR, "%s", err.Error())
						return
					}
				}
			}
		}
	}
}

// genDemands draws the customer demands, the depot always gets 0.
func genDemands(rng *rand.Rand, n, q int, strat string) ([]int, error) {
	demands := make([]int, n)
	for c := 1; c < n; c++ {
		switch strat {
		case "UNIT":
			demands[c] = 1
		case "RNG":
			hi := *dMax
			if hi > q {
				hi = q
			}
			if hi < *dMin {
				return nil, fmt.Errorf("demand range [%d,%d] does not fit capacity %d", *dMin, *dMax, q)
			}
			demands[c] = *dMin + rng.Intn(hi-*dMin+1)
		default:
			return nil, fmt.Errorf("unsupported demand strategy %s", strat)
		}
	}
	return demands, nil
}
