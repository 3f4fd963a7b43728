package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vrp-route-service/internal/api/dto"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/services"
	"vrp-route-service/internal/vrp"

	"github.com/spf13/cobra"
)

var errNoSolution = errors.New("no valid solution found")

type solveFlags struct {
	problem       string
	objective     string
	firstSolution string
	timeLimit     time.Duration
	iterations    int
	horizon       float64
	timeDimension bool
	bestEffort    bool
	asJSON        bool
	verbose       bool
}

func newSolveCmd() *cobra.Command {
	var f solveFlags

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a problem file and print the itinerary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.problem, "problem", "p", "", "problem file (YAML or JSON)")
	fl.StringVar(&f.objective, "objective", "distance", "arc cost: distance or duration")
	fl.StringVar(&f.firstSolution, "first-solution", "cheapest_insertion", "construction: cheapest_insertion or path_cheapest_arc")
	fl.DurationVar(&f.timeLimit, "time-limit", vrp.DefaultTimeLimit, "wall-clock search budget")
	fl.IntVar(&f.iterations, "iterations", 0, "stop the search after this many iterations (0: run to the time limit)")
	fl.Float64Var(&f.horizon, "horizon", vrp.DefaultHorizon, "per-route duration ceiling in seconds")
	fl.BoolVar(&f.timeDimension, "time-dimension", false, "enforce the duration horizon")
	fl.BoolVar(&f.bestEffort, "best-effort", false, "print partial routes when not every stop fits")
	fl.BoolVar(&f.asJSON, "json", false, "print the full result as JSON")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log solver progress to stderr")
	_ = cmd.MarkFlagRequired("problem")

	return cmd
}

func runSolve(cmd *cobra.Command, f solveFlags) error {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})

	p, err := loadProblem(f.problem)
	if err != nil {
		return err
	}

	res, err := services.SolveMatrix(cmd.Context(), services.SolverDefaults{MaxIterations: f.iterations}, services.SolveMatrixRequest{
		Distances:    p.Distances,
		Durations:    p.Durations,
		Depot:        p.Depot,
		Demands:      p.Demands,
		VehicleCount: p.VehicleCount,
		Capacities:   p.Capacities,
		Labels:       p.Labels,
		Options: services.SolveOverrides{
			Objective:      f.objective,
			TimeLimit:      f.timeLimit,
			HorizonSeconds: f.horizon,
			TimeDimension:  timeDimension(cmd, f.timeDimension),
			BestEffort:     f.bestEffort,
			FirstSolution:  f.firstSolution,
		},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dto.NewSolveResponse(res)); err != nil {
			return err
		}
	} else if res.Status != vrp.StatusInfeasible {
		fmt.Fprint(out, res.Itinerary.Text)
	}

	switch res.Status {
	case vrp.StatusInfeasible:
		fmt.Fprintln(cmd.ErrOrStderr(), "No valid solution found. Please check your constraints.")
		return errNoSolution
	case vrp.StatusDeadlineExceeded:
		fmt.Fprintln(cmd.ErrOrStderr(), "note: time limit reached, routes may be suboptimal")
	case vrp.StatusIncomplete:
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %d stop(s) not served\n", len(res.Unserved))
	}
	return nil
}

// timeDimension leaves the default in place unless the flag was given.
func timeDimension(cmd *cobra.Command, on bool) *bool {
	if !cmd.Flags().Changed("time-dimension") {
		return nil
	}
	return &on
}
