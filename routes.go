package cvrp

import "fmt"

/* Given an integer edge matrix (symmetric, depot edges may carry 2), follow every route leaving the depot.
Customers that are not reached from the depot (sub-tours) are returned in unvisited. */

func ExtractRoutes(edges [][]int) (routes [][]int, unvisited []int) {
	n := len(edges)
	rem := make([][]int, n)
	for i := range edges {
		rem[i] = append([]int(nil), edges[i]...)
	}
	seen := make([]bool, n)
	seen[0] = true
	for j := 1; j < n; j++ {
		for rem[0][j] > 0 {
			if rem[0][j] >= 2 && !seen[j] {
				rem[0][j] -= 2
				rem[j][0] -= 2
				seen[j] = true
				routes = append(routes, []int{j})
				continue
			}
			rem[0][j]--
			rem[j][0]--
			route := []int{j}
			seen[j] = true
			node := j
			for {
				next := -1
				for k := 0; k < n; k++ {
					if k != node && rem[node][k] > 0 && (k == 0 || !seen[k]) {
						next = k
						if k != 0 {
							break
						}
					}
				}
				if next == -1 {
					break
				}
				rem[node][next]--
				rem[next][node]--
				if next == 0 {
					break
				}
				seen[next] = true
				route = append(route, next)
				node = next
			}
			routes = append(routes, route)
		}
	}
	for j := 1; j < n; j++ {
		if !seen[j] {
			unvisited = append(unvisited, j)
		}
	}
	return routes, unvisited
}

// RouteCost is the length of the closed tour depot -> route -> depot.
func RouteCost(d [][]int, route []int) int {
	cost := 0
	prev := 0
	for _, v := range route {
		cost += d[prev][v]
		prev = v
	}
	return cost + d[prev][0]
}

func RouteLoad(demands []int, route []int) int {
	load := 0
	for _, v := range route {
		load += demands[v]
	}
	return load
}

func CheckSolutionValidity(inst *CVRPInstance, routes [][]int, obj int) (bool, string) {
	visits := make([]int, inst.NodeCount)
	total := 0
	for r, route := range routes {
		if load := RouteLoad(inst.Demands, route); load > inst.Capacity {
			return false, fmt.Sprintf("Route %d %v has load %d but the capacity is %d!", r, route, load, inst.Capacity)
		}
		for _, v := range route {
			if v <= 0 || v >= inst.NodeCount {
				return false, fmt.Sprintf("Route %d visits invalid node %d!", r, v)
			}
			visits[v]++
		}
		total += RouteCost(inst.EdgeWeights, route)
	}
	for v := 1; v < inst.NodeCount; v++ {
		if visits[v] != 1 {
			return false, fmt.Sprintf("Customer %d is visited %d times!", v, visits[v])
		}
	}
	if len(routes) != inst.VehicleCount {
		return false, fmt.Sprintf("The solution uses %d routes but %d vehicles are required!", len(routes), inst.VehicleCount)
	}
	if total != obj {
		return false, fmt.Sprintf("The routes cost %d but the objective is %d!", total, obj)
	}
	return true, ""
}
