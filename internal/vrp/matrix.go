package vrp

import (
	"fmt"
	"math"
)

// NoEdge marks an unreachable ordered pair of stops.
var NoEdge = math.Inf(1)

// CostMatrix holds the pairwise distance (meters) and duration (seconds)
// between every stop, depot included. It is read-only once built.
type CostMatrix struct {
	n        int
	distance []float64
	duration []float64
}

// NewCostMatrix builds a matrix from two square tables of the same size.
//
// Negative and NaN values are rejected; NoEdge is accepted anywhere. The
// diagonal is never traversed and is not checked.
// The input slices are copied so later caller mutations do not leak in.
func NewCostMatrix(distance, duration [][]float64) (*CostMatrix, error) {
	n := len(distance)
	if n == 0 {
		return nil, inputErr("matrix", "distance table is empty")
	}
	if len(duration) != n {
		return nil, inputErr("matrix", fmt.Sprintf("duration table has %d rows, distance has %d", len(duration), n))
	}

	m := &CostMatrix{
		n:        n,
		distance: make([]float64, n*n),
		duration: make([]float64, n*n),
	}

	for i := 0; i < n; i++ {
		if len(distance[i]) != n {
			return nil, inputErr("matrix", fmt.Sprintf("distance row %d has %d columns, want %d", i, len(distance[i]), n))
		}
		if len(duration[i]) != n {
			return nil, inputErr("matrix", fmt.Sprintf("duration row %d has %d columns, want %d", i, len(duration[i]), n))
		}
		for j := 0; j < n; j++ {
			if err := checkCell("distance", i, j, distance[i][j]); err != nil {
				return nil, err
			}
			if err := checkCell("duration", i, j, duration[i][j]); err != nil {
				return nil, err
			}
			m.distance[i*n+j] = distance[i][j]
			m.duration[i*n+j] = duration[i][j]
		}
	}

	return m, nil
}

func checkCell(table string, i, j int, v float64) error {
	if math.IsNaN(v) {
		return inputErr("matrix", fmt.Sprintf("%s[%d][%d] is NaN", table, i, j))
	}
	if v < 0 {
		return inputErr("matrix", fmt.Sprintf("%s[%d][%d] is negative (%g)", table, i, j, v))
	}
	return nil
}

// Size returns the number of stops N.
func (m *CostMatrix) Size() int { return m.n }

func (m *CostMatrix) Distance(from, to int) float64 { return m.distance[from*m.n+to] }

func (m *CostMatrix) Duration(from, to int) float64 { return m.duration[from*m.n+to] }

// Reachable reports whether both tables carry an edge from -> to.
// The diagonal is always reachable.
func (m *CostMatrix) Reachable(from, to int) bool {
	if from == to {
		return true
	}
	return !math.IsInf(m.distance[from*m.n+to], 1) && !math.IsInf(m.duration[from*m.n+to], 1)
}
