package model

import (
	"fmt"
	"time"
)

// Validate performs the structural and semantic checks the Python reference
// implementation's pydantic validators perform on the canonical data model:
// horizon ordering, calendar monotonicity, positive durations, non-empty
// routes, and capability coverage. It returns a ScheduleError with code
// ErrInvalidRequest (never nil-valued) when any check fails; the Model
// Builder calls this before constructing decision variables so a malformed
// request never reaches search.
func (r ScheduleRequest) Validate() *ScheduleError {
	var why []string

	if !r.Horizon.Start.Before(r.Horizon.End) {
		why = append(why, fmt.Sprintf("horizon end %s must be after start %s", r.Horizon.End, r.Horizon.Start))
	}

	seenResource := map[string]bool{}
	capabilityProviders := map[string]bool{}
	for _, res := range r.Resources {
		if res.ID == "" {
			why = append(why, "resource with empty id")
			continue
		}
		if seenResource[res.ID] {
			why = append(why, fmt.Sprintf("duplicate resource id %q", res.ID))
		}
		seenResource[res.ID] = true

		if len(res.Capabilities) == 0 {
			why = append(why, fmt.Sprintf("resource %q has no capabilities", res.ID))
		}
		for _, cap := range res.Capabilities {
			capabilityProviders[cap] = true
		}

		why = append(why, validateCalendar(res, r.Horizon)...)
	}

	seenProduct := map[string]bool{}
	for _, p := range r.Products {
		if p.ID == "" {
			why = append(why, "product with empty id")
			continue
		}
		if seenProduct[p.ID] {
			why = append(why, fmt.Sprintf("duplicate product id %q", p.ID))
		}
		seenProduct[p.ID] = true

		if p.Due.Before(r.Horizon.Start) || p.Due.After(r.Horizon.End) {
			why = append(why, fmt.Sprintf("product %q due date %s is outside the horizon", p.ID, p.Due))
		}

		if len(p.Route) == 0 {
			why = append(why, fmt.Sprintf("product %q has an empty route", p.ID))
			continue
		}

		for i, op := range p.Route {
			if op.DurationMinutes <= 0 {
				why = append(why, fmt.Sprintf("product %q operation %d (%s) has non-positive duration %d", p.ID, i, op.Capability, op.DurationMinutes))
			}
			if !capabilityProviders[op.Capability] {
				why = append(why, fmt.Sprintf("product %q requires capability %q not provided by any resource", p.ID, op.Capability))
			}
		}
	}

	if r.Settings.TimeLimitSeconds < 0 {
		why = append(why, fmt.Sprintf("settings.time_limit_seconds must be >= 0, got %d", r.Settings.TimeLimitSeconds))
	}

	if len(why) == 0 {
		return nil
	}
	return NewError(ErrInvalidRequest, why...)
}

// validateCalendar checks that a resource's calendar windows are
// individually well-formed, lie within the horizon, and are pairwise
// disjoint and sorted (close of one window never exceeds open of the next).
func validateCalendar(res Resource, h Horizon) []string {
	var why []string
	var prevClose time.Time
	hasPrev := false
	for i, w := range res.Calendar {
		if !w.Close.After(w.Open) {
			why = append(why, fmt.Sprintf("resource %q calendar window %d has close %s <= open %s", res.ID, i, w.Close, w.Open))
			continue
		}
		if w.Open.Before(h.Start) || w.Close.After(h.End) {
			why = append(why, fmt.Sprintf("resource %q calendar window %d [%s, %s) is outside the horizon", res.ID, i, w.Open, w.Close))
		}
		if hasPrev && w.Open.Before(prevClose) {
			why = append(why, fmt.Sprintf("resource %q calendar window %d overlaps the previous window", res.ID, i))
		}
		prevClose = w.Close
		hasPrev = true
	}
	return why
}
