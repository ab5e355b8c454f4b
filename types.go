package cvrp

import "git.solver4all.com/azaryc2s/cvrp/mip"

const (
	ENGINE_BNB         = "BNB"
	ENGINE_GUROBI      = "GUROBI"
	EDGE_WEIGHT_EUC_2D = "EUC_2D"
	EDGE_WEIGHT_CEIL   = "CEIL_2D"
	EDGE_WEIGHT_EXPL   = "EXPLICIT"
)

type CVRPInstance struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`

	NodeCount       int         `json:"node_count"`
	DisplayDataType string      `json:"display_data_type"`
	EdgeWeightType  string      `json:"edge_weight_type"`
	NodeCoordinates [][]float64 `json:"node_coordinates"`
	EdgeWeights     [][]int     `json:"edge_weights,omitempty"`

	Demands      []int `json:"demands"`
	Capacity     int   `json:"capacity"`
	VehicleCount int   `json:"vehicle_count"`

	Solution *CVRPSolution `json:"solution,omitempty"`
}

type CVRPSolution struct {
	RunID      string  `json:"run_id"`
	Status     string  `json:"status"`
	Obj        int     `json:"obj"`
	LBound     int     `json:"lbound"`
	Optimal    bool    `json:"optimal"`
	Edges      [][]int `json:"edges"`
	Routes     [][]int `json:"routes"`
	RouteLoads []int   `json:"route_loads"`
	RouteCosts []int   `json:"route_costs"`
	Cuts       int64   `json:"cuts"`
	Nodes      int     `json:"nodes"`

	Time    string  `json:"time"`
	System  SysInfo `json:"system"`
	Comment string  `json:"comment"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}

// CVRPModel is the two-index formulation as handed to an engine. Xi[i][j] is
// the column of edge {i,j} for i<j, every other slot holds mip.NoVar.
type CVRPModel struct {
	Model       mip.Model
	Xi          [][]int
	N           int
	M           int
	Capacity    int
	Demands     []int
	EdgeWeights [][]int
	VarNames    []string
	VarCount    int
}
