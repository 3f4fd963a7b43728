package vrp

import "fmt"

// Unassigned is the successor of stops that no vehicle serves.
const Unassigned = -1

// Successors is the route-graph form of a solution. Starts[k] is the first
// stop of vehicle k (the depot if unused); Next[i] is the stop after i, the
// depot at a route's end, or Unassigned.
type Successors struct {
	Depot  int
	Starts []int
	Next   []int
}

// Encode builds the successor structure for routes given without the depot.
func Encode(routes [][]int, n, depot int) Successors {
	s := Successors{
		Depot:  depot,
		Starts: make([]int, len(routes)),
		Next:   make([]int, n),
	}
	for i := range s.Next {
		s.Next[i] = Unassigned
	}
	for k, r := range routes {
		if len(r) == 0 {
			s.Starts[k] = depot
			continue
		}
		s.Starts[k] = r[0]
		for i := 0; i < len(r)-1; i++ {
			s.Next[r[i]] = r[i+1]
		}
		s.Next[r[len(r)-1]] = depot
	}
	return s
}

// Decode turns the successor structure into one depot-to-depot sequence per
// vehicle. Unused vehicles decode to [depot, depot]. It does not modify s.
func Decode(s Successors) ([][]int, error) {
	n := len(s.Next)
	if s.Depot < 0 || s.Depot >= n {
		return nil, fmt.Errorf("decode: depot %d out of range [0,%d)", s.Depot, n)
	}

	seen := make([]bool, n)
	routes := make([][]int, len(s.Starts))
	for k, start := range s.Starts {
		route := []int{s.Depot}
		for cur := start; cur != s.Depot; cur = s.Next[cur] {
			if cur < 0 || cur >= n {
				return nil, fmt.Errorf("decode: vehicle %d reaches invalid stop %d", k, cur)
			}
			if seen[cur] {
				return nil, fmt.Errorf("decode: stop %d visited twice (vehicle %d)", cur, k)
			}
			seen[cur] = true
			route = append(route, cur)
		}
		routes[k] = append(route, s.Depot)
	}
	return routes, nil
}
