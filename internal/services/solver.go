package services

import (
	"errors"
	"time"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/platform/metrics"
	"vrp-route-service/internal/vrp"
)

// SolverDefaults are the service-wide solve settings; requests may
// override the objective, limits and flags per call.
type SolverDefaults struct {
	Objective      string
	TimeLimit      time.Duration
	HorizonSeconds float64
	TimeDimension  bool
	FirstSolution  string
	Workers        int
	// MaxIterations caps the guided search; zero runs until the time limit.
	MaxIterations int
}

// SolveOverrides carries the per-request settings. Zero values fall back to
// SolverDefaults.
type SolveOverrides struct {
	Objective      string
	TimeLimit      time.Duration
	HorizonSeconds float64
	// TimeDimension, when set, wins over the default in either direction.
	TimeDimension *bool
	BestEffort    bool
	FirstSolution string
}

func (d SolverDefaults) config(o SolveOverrides) (vrp.Config, error) {
	objName := o.Objective
	if objName == "" {
		objName = d.Objective
	}
	obj, err := vrp.ParseObjective(objName)
	if err != nil {
		return vrp.Config{}, apperr.Wrap(err, apperr.CodeInvalidInput, "objective")
	}

	fsName := o.FirstSolution
	if fsName == "" {
		fsName = d.FirstSolution
	}
	fs, err := vrp.ParseFirstSolution(fsName)
	if err != nil {
		return vrp.Config{}, apperr.Wrap(err, apperr.CodeInvalidInput, "first solution strategy")
	}

	if o.TimeLimit < 0 || o.HorizonSeconds < 0 {
		return vrp.Config{}, apperr.New(apperr.CodeInvalidInput, "time limit and horizon must not be negative")
	}
	limit := o.TimeLimit
	if limit == 0 {
		limit = d.TimeLimit
	}
	horizon := o.HorizonSeconds
	if horizon == 0 {
		horizon = d.HorizonSeconds
	}

	timeDim := d.TimeDimension
	if o.TimeDimension != nil {
		timeDim = *o.TimeDimension
	}

	log := logging.Component("solver")
	return vrp.Config{
		Objective:     obj,
		TimeDimension: timeDim,
		Horizon:       horizon,
		TimeLimit:     limit,
		BestEffort:    o.BestEffort,
		FirstSolution: fs,
		Workers:       d.Workers,
		MaxIterations: d.MaxIterations,
		Logger:        &log,
	}, nil
}

// solve runs the solver and records its outcome.
func solve(p *vrp.Problem) (*vrp.Result, error) {
	cfg := p.Config()
	start := time.Now()

	res, err := vrp.Solve(p)
	if err != nil {
		metrics.SolveOutcomes.WithLabelValues("error", cfg.Objective.String()).Inc()
		return nil, apperr.Wrap(err, apperr.CodeInternal, "solve")
	}

	metrics.SolveOutcomes.WithLabelValues(res.Status.String(), cfg.Objective.String()).Inc()
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	metrics.SolveIterations.Observe(float64(res.Stats.Iterations))
	metrics.SolveStops.Observe(float64(p.Size() - 1))

	log := logging.Component("solver")
	log.Info().
		Str("status", res.Status.String()).
		Str("objective", cfg.Objective.String()).
		Int("stops", p.Size()-1).
		Int("vehicles", p.Vehicles()).
		Float64("cost", res.Cost).
		Int("iterations", res.Stats.Iterations).
		Dur("elapsed", res.Stats.Elapsed).
		Msg("solve finished")

	return res, nil
}

// classify maps solver errors onto application codes.
func classify(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, vrp.ErrMatrixUnavailable):
		return apperr.Wrap(err, apperr.CodeMatrixUnavailable, message)
	case errors.Is(err, vrp.ErrInvalidInput):
		return apperr.Wrap(err, apperr.CodeInvalidInput, message)
	default:
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.Wrap(err, apperr.CodeInternal, message)
	}
}
