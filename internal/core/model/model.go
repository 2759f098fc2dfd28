// Package model holds the canonical data shapes the scheduling core
// accepts and returns. Every entity here is immutable once constructed; the
// core produces new values rather than mutating these.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Horizon is the global scheduling window. All other times in a request
// must fall within it.
type Horizon struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Resource is a machine/operator/cell offering one or more capabilities on
// an ordered, disjoint working calendar.
type Resource struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities"`
	Calendar     []Window `json:"calendar"`
}

// Window is a half-open working interval [Open, Close). On the wire it is a
// two-element array of ISO-8601 instants, [open, close], not an object.
type Window struct {
	Open  time.Time
	Close time.Time
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]time.Time{w.Open, w.Close})
}

func (w *Window) UnmarshalJSON(data []byte) error {
	var pair [2]time.Time
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("calendar window must be a [start, end] pair: %w", err)
	}
	w.Open, w.Close = pair[0], pair[1]
	return nil
}

// Operation is one step of a product's route: a capability and a duration.
type Operation struct {
	Capability       string `json:"capability"`
	DurationMinutes  int    `json:"duration_minutes"`
}

// Product is a unit of work with a due date and an ordered route of
// operations that must execute strictly in sequence.
type Product struct {
	ID    string      `json:"id"`
	Family string     `json:"family"`
	Due   time.Time   `json:"due"`
	Route []Operation `json:"route"`
}

// ChangeoverMatrix maps a "fromFamily->toFamily" key to a changeover time in
// minutes. A missing key means zero minutes.
type ChangeoverMatrix struct {
	Values map[string]int `json:"values"`
}

// Minutes returns the changeover time between two families, or 0 if absent.
func (m ChangeoverMatrix) Minutes(from, to string) int {
	if m.Values == nil {
		return 0
	}
	return m.Values[from+"->"+to]
}

// Settings carries solver tuning knobs.
type Settings struct {
	TimeLimitSeconds int `json:"time_limit_seconds"`
}

// DefaultTimeLimitSeconds is used when Settings.TimeLimitSeconds is zero and
// the request did not explicitly ask for an immediate timeout.
const DefaultTimeLimitSeconds = 30

// ScheduleRequest is the one canonical shape the core accepts.
type ScheduleRequest struct {
	Horizon                  Horizon          `json:"horizon"`
	Resources                []Resource       `json:"resources"`
	Products                 []Product        `json:"products"`
	ChangeoverMatrixMinutes  ChangeoverMatrix `json:"changeover_matrix_minutes"`
	Settings                 Settings         `json:"settings"`
}

// Assignment pins one operation to a resource and a time interval.
type Assignment struct {
	Product  string    `json:"product"`
	OpIndex  int       `json:"-"`
	Op       string    `json:"op"`
	Resource string    `json:"resource"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// KPIs are the metrics reported alongside a schedule.
type KPIs struct {
	TardinessMinutes   int            `json:"tardiness_minutes"`
	Changeovers        int            `json:"changeovers"`
	MakespanMinutes    int            `json:"makespan_minutes"`
	Utilization        map[string]int `json:"utilization"`
	UtilizationBalance float64        `json:"utilization_balance"`
}

// ScheduleResponse is the canonical success shape.
type ScheduleResponse struct {
	Assignments []Assignment `json:"assignments"`
	KPIs        KPIs         `json:"kpis"`
}

// Short error codes surfaced to callers; see ScheduleError.
const (
	ErrInvalidRequest         = "invalid_request"
	ErrInfeasible             = "infeasible"
	ErrTimeoutUnknown         = "timeout_unknown"
	ErrInternalValidationFail = "internal_validation_failed"
)

// ScheduleError is the canonical failure shape.
type ScheduleError struct {
	Code string   `json:"error"`
	Why  []string `json:"why"`
}

func (e *ScheduleError) Error() string {
	if len(e.Why) == 0 {
		return e.Code
	}
	return e.Code + ": " + e.Why[0]
}

// NewError builds a ScheduleError from a code and one or more reasons.
func NewError(code string, why ...string) *ScheduleError {
	return &ScheduleError{Code: code, Why: why}
}
