package vrp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMatrixUnavailable signals that the cost matrix could not be obtained
	// or was malformed. Collaborators wrap their failures with it.
	ErrMatrixUnavailable = errors.New("matrix unavailable")
)

// InputError names the problem constraint that a solve request violated.
type InputError struct {
	Constraint string
	Detail     string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Constraint, e.Detail)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func inputErr(constraint, detail string) error {
	return &InputError{Constraint: constraint, Detail: detail}
}

// Status is the outcome kind of a solve. Infeasibility and deadline expiry
// are outcomes, not errors.
type Status int

const (
	// StatusSolved: every stop served and the search stopped on its own.
	StatusSolved Status = iota
	// StatusDeadlineExceeded: every stop served, the time limit ended the
	// search, so the routes may be suboptimal.
	StatusDeadlineExceeded
	// StatusIncomplete: best-effort partial routes, or construction ran out
	// of time. Result.Unserved lists the stops left out.
	StatusIncomplete
	// StatusInfeasible: no assignment satisfies capacity and time limits.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusDeadlineExceeded:
		return "deadline_exceeded"
	case StatusIncomplete:
		return "incomplete"
	case StatusInfeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Feasible reports whether the routes of a result serve every stop.
func (s Status) Feasible() bool {
	return s == StatusSolved || s == StatusDeadlineExceeded
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
