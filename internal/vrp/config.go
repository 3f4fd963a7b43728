package vrp

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultHorizon is 24 hours in the matrix's duration unit (seconds).
	DefaultHorizon = 86400.0
	// DefaultTimeLimit bounds the improvement phase.
	DefaultTimeLimit = 10 * time.Second

	DefaultPenaltyFactor = 0.2
	DefaultPenaltyDecay  = 0.5
)

// FirstSolution selects the construction heuristic.
type FirstSolution int

const (
	CheapestInsertion FirstSolution = iota
	PathCheapestArc
)

func (f FirstSolution) String() string {
	switch f {
	case CheapestInsertion:
		return "cheapest_insertion"
	case PathCheapestArc:
		return "path_cheapest_arc"
	default:
		return fmt.Sprintf("first_solution(%d)", int(f))
	}
}

func ParseFirstSolution(s string) (FirstSolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cheapest_insertion", "insertion":
		return CheapestInsertion, nil
	case "path_cheapest_arc", "cheapest_arc":
		return PathCheapestArc, nil
	default:
		return 0, inputErr("first_solution", fmt.Sprintf("unknown strategy %q", s))
	}
}

// Config is the solve-scoped configuration. It is copied into the Problem
// and never shared between solves.
type Config struct {
	Objective Objective

	// TimeDimension enables the cumulative duration ceiling.
	TimeDimension bool
	// Horizon is the duration ceiling per route. Zero means DefaultHorizon.
	Horizon float64

	// TimeLimit is the wall-clock budget for the whole solve.
	// Zero means DefaultTimeLimit.
	TimeLimit time.Duration

	// BestEffort returns partial routes instead of an empty infeasible result.
	BestEffort bool

	FirstSolution FirstSolution

	// MaxIterations stops the search after that many iterations when > 0.
	MaxIterations int
	// Workers bounds parallel move evaluation. Zero means GOMAXPROCS.
	Workers int

	// PenaltyFactor scales the guided search penalty weight against the
	// average arc cost of the first local optimum.
	PenaltyFactor float64
	// PenaltyDecay multiplies every penalty when a new best is found. Values
	// are in (0,1]; penalties are floored afterwards, so small factors reset.
	PenaltyDecay float64

	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Horizon <= 0 {
		c.Horizon = DefaultHorizon
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.PenaltyFactor <= 0 {
		c.PenaltyFactor = DefaultPenaltyFactor
	}
	if c.PenaltyDecay <= 0 || c.PenaltyDecay > 1 {
		c.PenaltyDecay = DefaultPenaltyDecay
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}
