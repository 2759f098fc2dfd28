// Package build translates a canonical ScheduleRequest into a Constraint
// Model: integer-minute decision variables and the hard constraints and
// objective the Search Engine solves. It never performs search itself and
// it never mutates the request it is given.
package build

import (
	"fmt"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/quantize"
)

// Op is one decision-variable bundle: the operation identified by
// (Product, OpIndex), its duration, and the resources it is eligible to run
// on. Eligible is never empty by the time Build returns successfully. An
// operation with no eligible resource, or whose every eligible resource has
// an empty calendar, is a build-time error, not a search infeasibility.
type Op struct {
	Product    string
	OpIndex    int
	Capability string
	Duration   int
	Eligible   []int // indices into Model.Resources
}

// ResourceWindow is a calendar window expressed in minutes from horizon
// start.
type ResourceWindow struct {
	Open, Close int
}

// Resource is the build-time view of a model.Resource: its id, capability
// set, and calendar in minute units.
type Resource struct {
	ID           string
	Capabilities map[string]bool
	Windows      []ResourceWindow
}

// AvailableMinutes sums the duration of every calendar window.
func (r Resource) AvailableMinutes() int {
	total := 0
	for _, w := range r.Windows {
		total += w.Close - w.Open
	}
	return total
}

// Product is the build-time view of a model.Product: its route as indices
// into Model.Ops (in strict precedence order) and its due date in minutes.
type Product struct {
	ID         string
	Family     string
	DueMinutes int
	OpIDs      []int
}

// Model is the Constraint Model consumed by the Search Engine: decision
// variables (Ops), their domains (Resources, Eligible), the precedence
// structure (Products.OpIDs), and everything needed to evaluate the
// tardiness objective.
type Model struct {
	HorizonMinutes int
	Resources      []Resource
	Ops            []Op
	Products       []Product
	Changeover     model.ChangeoverMatrix
	Clock          quantize.Clock

	resourceIndex map[string]int
}

// ResourceIndex returns the index of a resource by id.
func (m *Model) ResourceIndex(id string) int { return m.resourceIndex[id] }

// Build constructs a Model from a ScheduleRequest. It first runs the
// request's own structural validation (horizon ordering, calendar
// monotonicity, capability coverage, positive durations); any failure there
// is returned unchanged. It then quantizes every instant to minutes and
// assembles decision variables. A capability with zero eligible resources
// is checked again here even though model.Validate already would have
// caught it, since Build is the boundary every caller treats as
// authoritative for build-time errors reported before search runs.
func Build(req model.ScheduleRequest) (*Model, *model.ScheduleError) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	clock := quantize.New(req.Horizon.Start)
	horizonEnd, err := clock.ToMinutes(req.Horizon.End)
	if err != nil {
		return nil, model.NewError(model.ErrInvalidRequest, fmt.Sprintf("horizon end: %v", err))
	}

	var why []string

	capabilityIndex := map[string][]int{}
	resources := make([]Resource, 0, len(req.Resources))
	resourceIndex := make(map[string]int, len(req.Resources))
	for ri, res := range req.Resources {
		caps := map[string]bool{}
		for _, c := range res.Capabilities {
			caps[c] = true
			capabilityIndex[c] = append(capabilityIndex[c], ri)
		}
		windows := make([]ResourceWindow, 0, len(res.Calendar))
		for _, w := range res.Calendar {
			open, oerr := clock.ToMinutes(w.Open)
			if oerr != nil {
				why = append(why, fmt.Sprintf("resource %q calendar: %v", res.ID, oerr))
				continue
			}
			closeM, cerr := clock.ToMinutes(w.Close)
			if cerr != nil {
				why = append(why, fmt.Sprintf("resource %q calendar: %v", res.ID, cerr))
				continue
			}
			windows = append(windows, ResourceWindow{Open: open, Close: closeM})
		}
		resources = append(resources, Resource{ID: res.ID, Capabilities: caps, Windows: windows})
		resourceIndex[res.ID] = ri
	}

	var ops []Op
	products := make([]Product, 0, len(req.Products))
	for _, p := range req.Products {
		dueMinutes, derr := clock.ToMinutes(p.Due)
		if derr != nil {
			why = append(why, fmt.Sprintf("product %q due date: %v", p.ID, derr))
			continue
		}
		opIDs := make([]int, 0, len(p.Route))
		for opIdx, rop := range p.Route {
			eligible := capabilityIndex[rop.Capability]
			if len(eligible) == 0 {
				why = append(why, fmt.Sprintf("product %q requires capability %q not provided by any resource", p.ID, rop.Capability))
				continue
			}
			hasCalendar := false
			for _, ri := range eligible {
				if len(resources[ri].Windows) > 0 {
					hasCalendar = true
					break
				}
			}
			if !hasCalendar {
				why = append(why, fmt.Sprintf("product %q operation %d (%s) is eligible only on resources with an empty calendar", p.ID, opIdx, rop.Capability))
				continue
			}
			elig := make([]int, len(eligible))
			copy(elig, eligible)
			opID := len(ops)
			ops = append(ops, Op{
				Product:    p.ID,
				OpIndex:    opIdx,
				Capability: rop.Capability,
				Duration:   rop.DurationMinutes,
				Eligible:   elig,
			})
			opIDs = append(opIDs, opID)
		}
		products = append(products, Product{ID: p.ID, Family: p.Family, DueMinutes: dueMinutes, OpIDs: opIDs})
	}

	if len(why) > 0 {
		return nil, model.NewError(model.ErrInvalidRequest, why...)
	}

	return &Model{
		HorizonMinutes: horizonEnd,
		Resources:      resources,
		Ops:            ops,
		Products:       products,
		Changeover:     req.ChangeoverMatrixMinutes,
		Clock:          clock,
		resourceIndex:  resourceIndex,
	}, nil
}
