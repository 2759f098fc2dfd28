package search

import (
	"math/rand"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
)

// operator is one repair move: given the current state and its objective,
// it proposes a neighbor state and the change in objective (next - current).
// applied is false when the move found nothing to do (e.g. fewer than two
// products to swap); the engine then neither accepts nor scores it, though
// the attempt still uses one iteration of the budget.
type operator struct {
	name  string
	apply func(m *build.Model, s state, currentObjective int, rng *rand.Rand) (state, int, bool)
}

// operatorSet is a small weighted-roulette pool in the style of this
// codebase's other local-search loops: operators that recently produced
// improving moves are reinforced, operators that only produced rejected
// moves decay, so the search spends more of its budget on what is working
// for this particular model.
type operatorSet struct {
	ops     []operator
	weights []float64
}

func newOperatorSet() *operatorSet {
	return &operatorSet{
		ops: []operator{
			{name: "reinsert", apply: reinsertProduct},
			{name: "swap", apply: swapProductPair},
			{name: "shift", apply: shiftToNextSlot},
		},
		weights: []float64{1, 1, 1},
	}
}

func (s *operatorSet) selectIndex(rng *rand.Rand) int {
	total := 0.0
	for _, w := range s.weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range s.weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(s.weights) - 1
}

func (s *operatorSet) reward(i int, improved bool) {
	if improved {
		s.weights[i] += 0.5
	} else {
		s.weights[i] += 0.05
	}
}

func (s *operatorSet) penalize(i int) {
	s.weights[i] *= 0.97
	if s.weights[i] < 0.1 {
		s.weights[i] = 0.1
	}
}

func (s operatorSet) Len() int { return len(s.ops) }

func (s operatorSet) index(i int) operator { return s.ops[i] }

// reinsertProduct picks one product, biased toward the tardiest, and
// replaces every one of its operations' assignments by re-running
// construction for that product alone against the rest of the current
// state.
func reinsertProduct(m *build.Model, s state, currentObjective int, rng *rand.Rand) (state, int, bool) {
	if len(m.Products) == 0 {
		return s, 0, false
	}
	p := pickTardyProduct(m, s, rng)
	if p == -1 {
		return s, 0, false
	}

	next := s.clone()
	for _, opID := range m.Products[p].OpIDs {
		delete(next, opID)
	}

	notBefore := 0
	for _, opID := range m.Products[p].OpIDs {
		op := m.Ops[opID]
		placed := false
		for _, r := range loadSorted(m, next, op.Eligible) {
			if start, ok := earliestFit(m, next, r, op.Duration, notBefore, opID); ok {
				next[opID] = Assignment{OpID: opID, Resource: r, Start: start}
				notBefore = start + op.Duration
				placed = true
				break
			}
		}
		if !placed {
			return s, 0, false
		}
	}

	return next, objective(m, next) - currentObjective, true
}

// swapProductPair exchanges the resource assignment of one operation from
// each of two distinct products that share an eligible resource, then
// re-threads each product's downstream operations forward from its new
// start. Exposes changeover and load-balancing improvements a single
// product reinsertion cannot reach.
func swapProductPair(m *build.Model, s state, currentObjective int, rng *rand.Rand) (state, int, bool) {
	if len(m.Products) < 2 {
		return s, 0, false
	}
	pa := rng.Intn(len(m.Products))
	pb := rng.Intn(len(m.Products))
	if pa == pb || len(m.Products[pa].OpIDs) == 0 || len(m.Products[pb].OpIDs) == 0 {
		return s, 0, false
	}

	opA := m.Products[pa].OpIDs[rng.Intn(len(m.Products[pa].OpIDs))]
	opB := m.Products[pb].OpIDs[rng.Intn(len(m.Products[pb].OpIDs))]
	if m.Ops[opA].Capability != m.Ops[opB].Capability {
		return s, 0, false
	}

	next := s.clone()
	a, aok := next[opA]
	b, bok := next[opB]
	if !aok || !bok {
		return s, 0, false
	}
	a.Resource, b.Resource = b.Resource, a.Resource
	next[opA] = a
	next[opB] = b

	if !reflowFrom(m, next, pa, indexOf(m.Products[pa].OpIDs, opA)) {
		return s, 0, false
	}
	if !reflowFrom(m, next, pb, indexOf(m.Products[pb].OpIDs, opB)) {
		return s, 0, false
	}

	return next, objective(m, next) - currentObjective, true
}

// shiftToNextSlot moves a single randomly chosen operation to the next
// feasible start after its current one on the same resource, which lets
// the search escape a local minimum caused only by arrival order rather
// than resource or route choice.
func shiftToNextSlot(m *build.Model, s state, currentObjective int, rng *rand.Rand) (state, int, bool) {
	if len(m.Ops) == 0 {
		return s, 0, false
	}
	opID := rng.Intn(len(m.Ops))
	a, ok := s[opID]
	if !ok {
		return s, 0, false
	}
	op := m.Ops[opID]

	next := s.clone()
	delete(next, opID)
	start, found := earliestFit(m, next, a.Resource, op.Duration, a.Start+1, opID)
	if !found {
		return s, 0, false
	}
	next[opID] = Assignment{OpID: opID, Resource: a.Resource, Start: start}

	productIdx := -1
	for pi, p := range m.Products {
		if p.ID == op.Product {
			productIdx = pi
			break
		}
	}
	if productIdx == -1 {
		return s, 0, false
	}
	if !reflowFrom(m, next, productIdx, indexOf(m.Products[productIdx].OpIDs, opID)+1) {
		return s, 0, false
	}

	return next, objective(m, next) - currentObjective, true
}

// reflowFrom re-places every operation of product p from route position
// startAt onward, each on its already-assigned resource but at the
// earliest feasible start no sooner than the previous operation's new end.
// Needed after a swap or shift moves one operation, since its successors
// may now overlap or precede it.
func reflowFrom(m *build.Model, s state, p, startAt int) bool {
	if startAt < 0 {
		return true
	}
	opIDs := m.Products[p].OpIDs
	notBefore := 0
	if startAt > 0 {
		prev, ok := s[opIDs[startAt-1]]
		if !ok {
			return false
		}
		notBefore = prev.End(m)
	}
	for i := startAt; i < len(opIDs); i++ {
		opID := opIDs[i]
		a, ok := s[opID]
		if !ok {
			return false
		}
		op := m.Ops[opID]
		delete(s, opID)
		start, found := earliestFit(m, s, a.Resource, op.Duration, notBefore, opID)
		if !found {
			return false
		}
		s[opID] = Assignment{OpID: opID, Resource: a.Resource, Start: start}
		notBefore = start + op.Duration
	}
	return true
}

func indexOf(ids []int, target int) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

// pickTardyProduct chooses a product to reinsert, biased toward whichever
// is currently tardiest so the repair loop spends effort where the
// objective actually is, while still occasionally picking a random
// non-tardy product to avoid getting stuck.
func pickTardyProduct(m *build.Model, s state, rng *rand.Rand) int {
	worst := -1
	worstT := -1
	for p := range m.Products {
		if t := productTardiness(m, s, p); t > worstT {
			worstT = t
			worst = p
		}
	}
	if worstT > 0 && rng.Float64() < 0.7 {
		return worst
	}
	return rng.Intn(len(m.Products))
}
