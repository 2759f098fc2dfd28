package search

import "github.com/DrPhilDSI/harmony-scheduler/internal/core/build"

// constructGreedy builds a feasible incumbent with an earliest-due-date
// list scheduler: at each step it picks the ready operation (its
// predecessor, if any, already placed) belonging to the most urgent
// product, and assigns it to the least-loaded eligible resource's earliest
// feasible slot. Ties are broken by product id then op index so the same
// model always produces the same construction.
//
// It returns ok=false with the id of the first operation it could not
// place on any eligible resource at or after its predecessor's end.
// Construction is not time-bounded; Solve reports such a failure as
// StatusUnknown, since one greedy order failing does not prove that no
// schedule exists.
func constructGreedy(m *build.Model) (state, bool, int) {
	s := make(state, len(m.Ops))
	next := make([]int, len(m.Products))
	predEnd := make([]int, len(m.Products))

	remaining := len(m.Ops)
	for remaining > 0 {
		bestP := -1
		for p := range m.Products {
			if next[p] >= len(m.Products[p].OpIDs) {
				continue
			}
			if bestP == -1 || isMoreUrgent(m, p, bestP) {
				bestP = p
			}
		}
		if bestP == -1 {
			break // shouldn't happen while remaining > 0, but stay safe
		}

		opID := m.Products[bestP].OpIDs[next[bestP]]
		op := m.Ops[opID]
		notBefore := predEnd[bestP]

		placed := false
		for _, r := range loadSorted(m, s, op.Eligible) {
			if start, ok := earliestFit(m, s, r, op.Duration, notBefore, opID); ok {
				s[opID] = Assignment{OpID: opID, Resource: r, Start: start}
				predEnd[bestP] = start + op.Duration
				placed = true
				break
			}
		}
		if !placed {
			return s, false, opID
		}
		next[bestP]++
		remaining--
	}
	return s, true, -1
}

// isMoreUrgent reports whether product candidate should be preferred over
// current in earliest-due-date tie-breaking.
func isMoreUrgent(m *build.Model, candidate, current int) bool {
	cp, bp := m.Products[candidate], m.Products[current]
	if cp.DueMinutes != bp.DueMinutes {
		return cp.DueMinutes < bp.DueMinutes
	}
	return cp.ID < bp.ID
}

// objective computes total tardiness: for each product with every op
// placed, max(0, completion - due), summed. Products with unplaced ops
// contribute nothing here; callers only call this on a complete state.
func objective(m *build.Model, s state) int {
	total := 0
	for _, p := range m.Products {
		if len(p.OpIDs) == 0 {
			continue
		}
		last := p.OpIDs[len(p.OpIDs)-1]
		a, ok := s[last]
		if !ok {
			continue
		}
		completion := a.Start + m.Ops[last].Duration
		if t := completion - p.DueMinutes; t > 0 {
			total += t
		}
	}
	return total
}

// productTardiness returns product p's own tardiness contribution, used to
// bias which product gets perturbed during repair.
func productTardiness(m *build.Model, s state, p int) int {
	ops := m.Products[p].OpIDs
	if len(ops) == 0 {
		return 0
	}
	last := ops[len(ops)-1]
	a, ok := s[last]
	if !ok {
		return 0
	}
	completion := a.Start + m.Ops[last].Duration
	t := completion - m.Products[p].DueMinutes
	if t < 0 {
		return 0
	}
	return t
}
