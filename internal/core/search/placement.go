package search

import (
	"sort"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
)

// state is the mutable placement under construction or repair: one
// Assignment per op, indexed by op id.
type state map[int]Assignment

func (s state) clone() state {
	out := make(state, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type interval struct{ start, end int }

// busyOn returns the sorted, non-overlapping-by-construction intervals
// currently occupying resIdx, excluding excludeOp (the op being
// relocated, if any).
func busyOn(m *build.Model, s state, resIdx, excludeOp int) []interval {
	var busy []interval
	for opID, a := range s {
		if opID == excludeOp || a.Resource != resIdx {
			continue
		}
		busy = append(busy, interval{a.Start, a.Start + m.Ops[opID].Duration})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start < busy[j].start })
	return busy
}

// earliestFit finds the earliest start >= notBefore such that an interval
// of the given duration fits entirely within one calendar window of
// resIdx and does not overlap any interval already busyOn that resource.
// It returns ok=false when no window of resIdx can host the interval at or
// after notBefore; a window that ends before notBefore is simply skipped.
func earliestFit(m *build.Model, s state, resIdx, duration, notBefore, excludeOp int) (int, bool) {
	res := m.Resources[resIdx]
	busy := busyOn(m, s, resIdx, excludeOp)

	best := -1
	for _, w := range res.Windows {
		if w.Close-w.Open < duration {
			continue
		}
		start := w.Open
		if notBefore > start {
			start = notBefore
		}
		if start+duration > w.Close {
			continue
		}
		for _, b := range busy {
			if b.start >= start+duration {
				break
			}
			if b.end <= start {
				continue
			}
			start = b.end
		}
		if start+duration > w.Close {
			continue
		}
		if best == -1 || start < best {
			best = start
		}
	}
	return best, best != -1
}

// maxEligibleWindow returns the longest calendar window available across
// every resource op is eligible for. If this is shorter than op's
// duration, no resource can ever host it regardless of contention: a
// global infeasibility, not a scheduling contention problem.
func maxEligibleWindow(m *build.Model, op build.Op) int {
	longest := 0
	for _, r := range op.Eligible {
		for _, w := range m.Resources[r].Windows {
			if l := w.Close - w.Open; l > longest {
				longest = l
			}
		}
	}
	return longest
}

// loadSorted returns a copy of eligible sorted by ascending total busy
// minutes already assigned on that resource, tie-broken by resource index
// for determinism.
func loadSorted(m *build.Model, s state, eligible []int) []int {
	load := make(map[int]int, len(eligible))
	for _, r := range eligible {
		load[r] = 0
	}
	for opID, a := range s {
		if _, ok := load[a.Resource]; ok {
			load[a.Resource] += m.Ops[opID].Duration
		}
	}
	out := make([]int, len(eligible))
	copy(out, eligible)
	sort.SliceStable(out, func(i, j int) bool {
		if load[out[i]] != load[out[j]] {
			return load[out[i]] < load[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
