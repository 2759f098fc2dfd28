// Package validate independently re-verifies a search.Outcome against the
// build.Model it was produced from, and computes the KPIs reported
// alongside a successful schedule. It never trusts the search engine's own
// bookkeeping: every hard constraint is re-derived here from the raw
// assignment list, the same way this codebase's other validators are kept
// separate from the component whose output they check.
package validate

import (
	"fmt"
	"sort"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/search"
)

// Violations re-checks no-overlap, precedence, calendar compliance,
// resource capability, assignment completeness, and horizon bounds for
// every assignment in the outcome. An empty result means the outcome may
// be trusted; any entry means the search engine produced something
// unsound and callers must treat the request as model.ErrInternalValidationFail
// rather than return the schedule.
func Violations(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	why = append(why, checkNoOverlap(m, assignments)...)
	why = append(why, checkPrecedence(m, assignments)...)
	why = append(why, checkCalendar(m, assignments)...)
	why = append(why, checkCapability(m, assignments)...)
	why = append(why, checkComplete(m, assignments)...)
	why = append(why, checkHorizon(m, assignments)...)
	return why
}

func checkNoOverlap(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	byResource := map[int][]search.Assignment{}
	for _, a := range assignments {
		byResource[a.Resource] = append(byResource[a.Resource], a)
	}
	for resIdx, ops := range byResource {
		sort.Slice(ops, func(i, j int) bool { return ops[i].Start < ops[j].Start })
		for i := 1; i < len(ops); i++ {
			if ops[i].Start < ops[i-1].End(m) {
				why = append(why, fmt.Sprintf(
					"overlap on resource %q: op %d [%d,%d) overlaps op %d [%d,%d)",
					m.Resources[resIdx].ID, ops[i-1].OpID, ops[i-1].Start, ops[i-1].End(m),
					ops[i].OpID, ops[i].Start, ops[i].End(m)))
			}
		}
	}
	return why
}

func checkPrecedence(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	byOp := map[int]search.Assignment{}
	for _, a := range assignments {
		byOp[a.OpID] = a
	}
	for _, p := range m.Products {
		for i := 1; i < len(p.OpIDs); i++ {
			prev, pok := byOp[p.OpIDs[i-1]]
			cur, cok := byOp[p.OpIDs[i]]
			if !pok || !cok {
				continue
			}
			if prev.End(m) > cur.Start {
				why = append(why, fmt.Sprintf(
					"precedence violation in product %q: operation %d ends at %d but operation %d starts at %d",
					p.ID, i-1, prev.End(m), i, cur.Start))
			}
		}
	}
	return why
}

func checkCalendar(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	for _, a := range assignments {
		res := m.Resources[a.Resource]
		fits := false
		for _, w := range res.Windows {
			if a.Start >= w.Open && a.End(m) <= w.Close {
				fits = true
				break
			}
		}
		if !fits {
			why = append(why, fmt.Sprintf(
				"calendar violation: op %d on resource %q [%d,%d) not within any working window",
				a.OpID, res.ID, a.Start, a.End(m)))
		}
	}
	return why
}

func checkCapability(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	for _, a := range assignments {
		op := m.Ops[a.OpID]
		res := m.Resources[a.Resource]
		if !res.Capabilities[op.Capability] {
			why = append(why, fmt.Sprintf(
				"capability violation: op %d requires %q but resource %q offers %v",
				a.OpID, op.Capability, res.ID, res.Capabilities))
		}
	}
	return why
}

func checkComplete(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	seen := make(map[int]int, len(m.Ops))
	for _, a := range assignments {
		seen[a.OpID]++
	}
	for opID := range m.Ops {
		switch seen[opID] {
		case 1:
		case 0:
			why = append(why, fmt.Sprintf("missing assignment: op %d has no assignment", opID))
		default:
			why = append(why, fmt.Sprintf("duplicate assignment: op %d assigned %d times", opID, seen[opID]))
		}
	}
	return why
}

func checkHorizon(m *build.Model, assignments []search.Assignment) []string {
	var why []string
	for _, a := range assignments {
		if a.Start < 0 || a.End(m) > m.HorizonMinutes {
			why = append(why, fmt.Sprintf(
				"horizon violation: op %d [%d,%d) outside horizon [0,%d)",
				a.OpID, a.Start, a.End(m), m.HorizonMinutes))
		}
	}
	return why
}
