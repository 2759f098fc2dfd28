package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
)

// iterationsPerModelSecond sizes the repair loop's iteration budget off the
// model itself rather than off how fast this particular machine happens to
// run, so the same model and time_limit_seconds always explore the same
// number of candidate moves regardless of host speed. The wall clock
// deadline below is only a safety net for pathologically large models
// where even this budget would overrun.
const iterationsPerModelSecond = 400

// checkGloballyInfeasible finds operations that cannot fit any eligible
// resource's calendar regardless of contention with other operations.
// A property of the model alone, cheap to check before entering search,
// and independent of the time budget: duration exceeding every calendar
// window of every eligible resource is always infeasible.
func checkGloballyInfeasible(m *build.Model) []string {
	var why []string
	for _, op := range m.Ops {
		if maxEligibleWindow(m, op) < op.Duration {
			why = append(why, fmt.Sprintf(
				"product %q operation %d (%s) duration %dm exceeds every calendar window of every eligible resource",
				op.Product, op.OpIndex, op.Capability, op.Duration))
		}
	}
	return why
}

// Solve runs the construct-then-repair search described in this package's
// doc comment and returns an Outcome. ctx cancellation and timeLimitSeconds
// both bound the search; whichever elapses first wins.
func Solve(ctx context.Context, m *build.Model, timeLimitSeconds int) Outcome {
	if len(m.Ops) == 0 {
		return Outcome{Status: StatusOptimal, Assignments: nil, Objective: 0}
	}

	if why := checkGloballyInfeasible(m); len(why) > 0 {
		return Outcome{Status: StatusInfeasible, Reasons: why}
	}

	if timeLimitSeconds <= 0 {
		return Outcome{Status: StatusUnknown, Reasons: []string{"time_limit_seconds <= 0: no budget to search with"}}
	}

	deadline := time.Now().Add(time.Duration(timeLimitSeconds) * time.Second)

	incumbent, ok, stuckAt := constructGreedy(m)
	if !ok {
		op := m.Ops[stuckAt]
		return Outcome{Status: StatusUnknown, Reasons: []string{
			fmt.Sprintf("construction could not place product %q operation %d (%s) on any eligible resource", op.Product, op.OpIndex, op.Capability),
		}}
	}

	best := incumbent.clone()
	bestObjective := objective(m, best)
	if bestObjective == 0 {
		return toOutcome(StatusOptimal, m, best, bestObjective)
	}

	iterBudget := iterationsPerModelSecond * timeLimitSeconds * (1 + len(m.Ops)/20)
	rng := rand.New(rand.NewSource(modelSeed(m)))
	ops := newOperatorSet()

	current := incumbent
	currentObjective := bestObjective
	temp := initialTemperature(bestObjective)

	for i := 0; i < iterBudget; i++ {
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return toOutcome(StatusFeasible, m, best, bestObjective)
			default:
			}
			if time.Now().After(deadline) {
				return toOutcome(StatusFeasible, m, best, bestObjective)
			}
		}

		idx := ops.selectIndex(rng)
		next, delta, applied := ops.index(idx).apply(m, current, currentObjective, rng)
		if !applied {
			continue
		}

		accept := delta < 0 || rng.Float64() < acceptanceProbability(delta, temp)
		if accept {
			current = next
			currentObjective += delta
			ops.reward(idx, delta < 0)
			if currentObjective < bestObjective {
				best = current.clone()
				bestObjective = currentObjective
				if bestObjective == 0 {
					return toOutcome(StatusOptimal, m, best, bestObjective)
				}
			}
		} else {
			ops.penalize(idx)
		}
		temp = cool(temp, i, iterBudget)
	}

	return toOutcome(StatusFeasible, m, best, bestObjective)
}

func toOutcome(status Status, m *build.Model, s state, objectiveValue int) Outcome {
	out := Outcome{Status: status, Objective: objectiveValue, Assignments: make([]Assignment, 0, len(m.Ops))}
	for opID := range m.Ops {
		if a, ok := s[opID]; ok {
			out.Assignments = append(out.Assignments, a)
		}
	}
	return out
}

func initialTemperature(bestObjective int) float64 {
	if bestObjective == 0 {
		return 1
	}
	return float64(bestObjective) / 4
}

func acceptanceProbability(delta int, temp float64) float64 {
	if temp <= 0 {
		return 0
	}
	return math.Exp(-float64(delta) / temp)
}

// cool applies linear annealing from the initial temperature to near zero
// across the iteration budget, matched to a fixed, model-derived schedule
// so repeated runs anneal identically.
func cool(temp float64, i, budget int) float64 {
	if budget <= 1 {
		return 0
	}
	frac := 1 - float64(i)/float64(budget)
	if frac < 0 {
		frac = 0
	}
	return temp * frac
}
