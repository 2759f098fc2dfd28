// Package search solves a build.Model under a wall-clock budget and returns
// an Outcome: a certified-optimal or best-known-feasible assignment, a
// proof of infeasibility, or an Unknown signal when the budget expired
// before any feasible solution was found.
//
// There is no CP-SAT (or other off-the-shelf constraint solver) binding
// available to this codebase, so the engine constructs a feasible incumbent
// with a due-date-driven greedy list scheduler and improves it with a
// small, deterministically-seeded local-search operator set under a
// simulated-annealing-style acceptance rule, in the spirit of this
// codebase's other metaheuristic search loops (deadline-bounded, weighted
// operator selection, incumbent tracking).
package search

import "github.com/DrPhilDSI/harmony-scheduler/internal/core/build"

// Status is the solve outcome's classification.
type Status int

const (
	// StatusOptimal means the search completed and the objective is
	// provably minimal (for this engine: tardiness hit its lower bound of
	// zero, which nothing can improve on).
	StatusOptimal Status = iota
	// StatusFeasible means the time budget expired after at least one
	// feasible solution was found; Objective is the best known.
	StatusFeasible
	// StatusInfeasible means the engine proved no assignment satisfies
	// the constraints.
	StatusInfeasible
	// StatusUnknown means the time budget expired before any feasible
	// solution was found.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Assignment pins an operation (identified by its build.Op index) to a
// resource and a start minute; End is Start+Duration.
type Assignment struct {
	OpID     int
	Resource int
	Start    int
}

// End returns the assignment's end minute given the model it was produced
// from.
func (a Assignment) End(m *build.Model) int {
	return a.Start + m.Ops[a.OpID].Duration
}

// Outcome is the result of one Solve call.
type Outcome struct {
	Status      Status
	Assignments []Assignment
	Objective   int
	Reasons     []string // populated when Status is StatusInfeasible or StatusUnknown
}
