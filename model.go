package cvrp

import (
	"fmt"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

/* Two index vehicle flow formulation
 * G = (V,E), V = {0,...,n-1}, vertex 0 is the depot
 * xi_ij (i<j) selects edge ij, in {0,1,2} for depot edges and {0,1} otherwise
 *
 * min sum_{i<j} d_ij xi_ij
 * (C2_i) sum_{j<i} xi_ji + sum_{j>i} xi_ij = 2   for every customer i
 * (C4)   sum_{j>0} xi_0j = 2m                   m vehicles leave and return to the depot
 * capacity cuts sum_{i<j in S} xi_ij <= |S| - r(S) are added lazily during the search
 */

func CreateCVRPModel(model mip.Model, inst *CVRPInstance) (*CVRPModel, error) {
	N := inst.NodeCount
	if N < 2 {
		return nil, configErrorf("node_count", "must be at least 2, got %d", N)
	}
	if inst.Capacity <= 0 {
		return nil, configErrorf("capacity", "must be positive, got %d", inst.Capacity)
	}
	if inst.VehicleCount <= 0 {
		return nil, configErrorf("vehicle_count", "must be positive, got %d", inst.VehicleCount)
	}
	if len(inst.EdgeWeights) != N {
		return nil, configErrorf("edge_weights", "has %d rows for %d nodes", len(inst.EdgeWeights), N)
	}

	cm := &CVRPModel{
		Model:       model,
		N:           N,
		M:           inst.VehicleCount,
		Capacity:    inst.Capacity,
		Demands:     inst.Demands,
		EdgeWeights: inst.EdgeWeights,
	}
	if err := cm.initXi(); err != nil {
		return nil, err
	}
	if err := cm.setDegreeConstraints(); err != nil {
		return nil, err
	}
	if err := cm.setDepotReturnConstraint(); err != nil {
		return nil, err
	}
	return cm, nil
}

// initXi adds one column per edge i<j. The cost of the edge is its objective
// coefficient.
func (cm *CVRPModel) initXi() error {
	N := cm.N
	Log(LOG_INFO, "Creating %d edge variables", N*(N-1)/2)
	cm.Xi = make([][]int, N)
	for i := 0; i < N; i++ {
		cm.Xi[i] = make([]int, N)
		for j := range cm.Xi[i] {
			cm.Xi[i][j] = mip.NoVar
		}
	}
	for i := 0; i < N; i++ {
		for j := i + 1; j < N; j++ {
			ub, vtype := 1.0, mip.Binary
			//a vehicle serving a single customer uses the depot edge twice
			if i == 0 {
				ub, vtype = 2.0, mip.Integer
			}
			name := fmt.Sprintf("xi_%d_%d", i, j)
			idx, err := cm.Model.AddVar(name, float64(cm.EdgeWeights[i][j]), 0, ub, vtype)
			if err != nil {
				Log(LOG_ERR, "Error adding variable %s: %s", name, err.Error())
				return err
			}
			cm.Xi[i][j] = idx
			cm.VarNames = append(cm.VarNames, name)
			cm.VarCount++
		}
	}
	return nil
}

func (cm *CVRPModel) setDegreeConstraints() error {
	Log(LOG_INFO, "Creating and setting degree constraints sum_j(xi_ij) = 2 (C2)")
	N := cm.N
	for i := 1; i < N; i++ {
		ind := make([]int, 0, N-1)
		val := make([]float64, 0, N-1)
		for j := i - 1; j >= 0; j-- {
			ind = append(ind, cm.Xi[j][i])
			val = append(val, 1.0)
		}
		for j := i + 1; j < N; j++ {
			ind = append(ind, cm.Xi[i][j])
			val = append(val, 1.0)
		}
		err := cm.Model.AddConstr(mip.Constr{Name: fmt.Sprintf("C2_%d", i), Ind: ind, Val: val, Sense: mip.Equal, Rhs: 2})
		if err != nil {
			Log(LOG_ERR, "Error adding degree constraint at i=%d with error: %s", i, err.Error())
			return err
		}
	}
	return nil
}

func (cm *CVRPModel) setDepotReturnConstraint() error {
	Log(LOG_INFO, "Creating and setting depot constraint sum_j(xi_0j) = 2m (C4) with m=%d", cm.M)
	ind := make([]int, 0, cm.N-1)
	val := make([]float64, 0, cm.N-1)
	for j := 1; j < cm.N; j++ {
		ind = append(ind, cm.Xi[0][j])
		val = append(val, 1.0)
	}
	err := cm.Model.AddConstr(mip.Constr{Name: "C4", Ind: ind, Val: val, Sense: mip.Equal, Rhs: float64(2 * cm.M)})
	if err != nil {
		Log(LOG_ERR, "Error adding depot constraint: %s", err.Error())
	}
	return err
}

// EdgeVars lists the columns of the materialized edges in i<j order.
func (cm *CVRPModel) EdgeVars() []int {
	vars := make([]int, 0, cm.VarCount)
	for i := 0; i < cm.N; i++ {
		for j := i + 1; j < cm.N; j++ {
			vars = append(vars, cm.Xi[i][j])
		}
	}
	return vars
}

// EdgeMatrix scatters values given in EdgeVars order into an NxN matrix with
// only the upper triangle populated.
func (cm *CVRPModel) EdgeMatrix(vals []float64) [][]float64 {
	xi := make([][]float64, cm.N)
	for i := 0; i < cm.N; i++ {
		xi[i] = make([]float64, cm.N)
		for j := i + 1; j < cm.N; j++ {
			xi[i][j] = vals[GetEdgeIndex(i, j, cm.N, 0)]
		}
	}
	return xi
}

// EdgeName is the column name of edge {i,j}.
func (cm *CVRPModel) EdgeName(i, j int) string {
	return cm.VarNames[GetEdgeIndex(i, j, cm.N, 0)]
}

// ExtractEdgeMatrix rounds the engine solution to the integer edge values.
func (cm *CVRPModel) ExtractEdgeMatrix(x []float64) [][]int {
	yMat := make([][]int, cm.N)
	for i := 0; i < cm.N; i++ {
		yMat[i] = make([]int, cm.N)
	}
	for i := 0; i < cm.N; i++ {
		for j := i + 1; j < cm.N; j++ {
			v := int(x[cm.Xi[i][j]] + 0.5)
			yMat[i][j] = v
			yMat[j][i] = v
		}
	}
	return yMat
}
