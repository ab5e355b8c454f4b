package cvrp

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// GetEdgeIndex returns the position of the undirected edge {j,k} in the
// row-major enumeration of the upper triangle of an NxN matrix.
func GetEdgeIndex(j, k, N, start int) int {
	if k < j {
		j, k = k, j
	}
	//rows 0..j-1 hold N-1, N-2, ..., N-j edges
	return start + j*(2*N-j-1)/2 + k - j - 1
}

func CalcEdgeDist(coordinates [][]float64, distType string) [][]int {
	n := len(coordinates)
	result := make([][]int, n)
	for node := 0; node < n; node++ {
		result[node] = make([]int, n)
	}
	for node := 0; node < n; node++ {
		for node2 := 0; node2 < node; node2++ {
			xDist := coordinates[node][0] - coordinates[node2][0]
			yDist := coordinates[node][1] - coordinates[node2][1]
			var distance int
			if distType == EDGE_WEIGHT_CEIL {
				distance = int(math.Ceil(math.Sqrt(math.Pow(xDist, 2) + math.Pow(yDist, 2))))
			} else {
				distance = int(math.Sqrt(math.Pow(xDist, 2)+math.Pow(yDist, 2)) + 0.5)
			}
			result[node][node2] = distance
			result[node2][node] = distance
		}
	}
	return result
}

func Print2DArray[T int | float64](a [][]T) string {
	var sb strings.Builder
	for _, x := range a {
		for _, y := range x {
			fmt.Fprintf(&sb, "%v,", y)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func SanitizeJsonArrayLineBreaks(json string) string {
	res := json
	var numbers = regexp.MustCompile(`\s*([-]?[0-9]+(\.[0-9]+)?),\s+([-]?[0-9]+(\.[0-9]+)?)(,)?`)
	var brackets = regexp.MustCompile(`\[(([-]?[0-9]+(\.[0-9]+)?,)+[-]?[0-9]+(\.[0-9]+)?)\s+\](,?)(\s+)`)
	for numbers.MatchString(res) {
		res = numbers.ReplaceAllString(res, "$1,$3$5")
	}
	for brackets.MatchString(res) {
		res = brackets.ReplaceAllString(res, "[$1]$5$6")
	}
	return res
}
