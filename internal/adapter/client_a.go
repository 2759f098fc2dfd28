package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
)

// ClientAAdapter handles Client A's payload, which already matches the
// canonical shape field-for-field. It round-trips through JSON rather than
// hand-mapping fields, so it stays correct automatically as model fields
// gain json tags.
type ClientAAdapter struct{}

func NewClientAAdapter() *ClientAAdapter { return &ClientAAdapter{} }

func (a *ClientAAdapter) ClientID() string { return "client_a" }

func (a *ClientAAdapter) ToCanonical(raw map[string]any) (model.ScheduleRequest, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_a: re-encoding payload: %w", err)
	}
	var req model.ScheduleRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_a: payload does not match the canonical shape: %w", err)
	}
	// An omitted time limit gets the default; an explicit 0 is kept as is.
	settings, _ := raw["settings"].(map[string]any)
	if _, ok := settings["time_limit_seconds"]; !ok {
		req.Settings.TimeLimitSeconds = model.DefaultTimeLimitSeconds
	}
	return req, nil
}
