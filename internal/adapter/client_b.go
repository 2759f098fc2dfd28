package adapter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
)

// ClientBAdapter handles Client B's legacy ERP export format: "orders"
// instead of "products", "machines" instead of "resources", MM/DD/YYYY
// shift windows, decimal-hour deadlines, and implicit full-shift calendars
// unless a machine break is specified.
type ClientBAdapter struct{}

func NewClientBAdapter() *ClientBAdapter { return &ClientBAdapter{} }

func (a *ClientBAdapter) ClientID() string { return "client_b" }

func (a *ClientBAdapter) ToCanonical(raw map[string]any) (model.ScheduleRequest, error) {
	shiftWindow, ok := raw["shift_window"].(string)
	if !ok {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: missing or non-string shift_window")
	}
	horizon, err := parseShiftWindow(shiftWindow)
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: %w", err)
	}

	machines, err := stringList(raw["machines"])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: machines: %w", err)
	}
	breaks, err := anyList(raw["machine_breaks"])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: machine_breaks: %w", err)
	}
	resources, err := buildResources(machines, breaks, horizon)
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: %w", err)
	}

	orders, err := anyList(raw["orders"])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: orders: %w", err)
	}
	products, err := buildProducts(orders, horizon.Start)
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: %w", err)
	}

	setupTimes, err := anyList(raw["setup_times"])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: setup_times: %w", err)
	}
	changeover, err := buildChangeoverMatrix(setupTimes)
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("client_b: %w", err)
	}

	timeLimit := model.DefaultTimeLimitSeconds
	if v, ok := raw["time_limit_seconds"]; ok {
		n, err := asInt(v)
		if err != nil {
			return model.ScheduleRequest{}, fmt.Errorf("client_b: time_limit_seconds: %w", err)
		}
		timeLimit = n
	}

	return model.ScheduleRequest{
		Horizon:                 horizon,
		Resources:               resources,
		Products:                products,
		ChangeoverMatrixMinutes: changeover,
		Settings:                model.Settings{TimeLimitSeconds: timeLimit},
	}, nil
}

// parseShiftWindow parses "11/03/2025 08:00 - 16:00": a start date+time and
// an end time that shares the start's date.
func parseShiftWindow(s string) (model.Horizon, error) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		return model.Horizon{}, fmt.Errorf("invalid shift_window %q", s)
	}
	start, err := time.Parse("01/02/2006 15:04", strings.TrimSpace(parts[0]))
	if err != nil {
		return model.Horizon{}, fmt.Errorf("invalid shift_window start %q: %w", parts[0], err)
	}
	hour, minute, err := parseHourMinute(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.Horizon{}, fmt.Errorf("invalid shift_window end %q: %w", parts[1], err)
	}
	end := time.Date(start.Year(), start.Month(), start.Day(), hour, minute, 0, 0, start.Location())
	return model.Horizon{Start: start, End: end}, nil
}

func parseHourMinute(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// buildResources infers each machine's sole capability from its name prefix
// ("Fill-1" -> "fill") and gives it the full shift calendar unless one or
// more breaks are specified for it.
func buildResources(machines []string, breaks []any, horizon model.Horizon) ([]model.Resource, error) {
	resources := make([]model.Resource, 0, len(machines))
	for _, machineID := range machines {
		capability := inferCapability(machineID)
		calendar, err := buildCalendar(machineID, breaks, horizon)
		if err != nil {
			return nil, err
		}
		resources = append(resources, model.Resource{
			ID:           machineID,
			Capabilities: []string{capability},
			Calendar:     calendar,
		})
	}
	return resources, nil
}

func inferCapability(machineID string) string {
	prefix := machineID
	if i := strings.Index(machineID, "-"); i >= 0 {
		prefix = machineID[:i]
	}
	return strings.ToLower(prefix)
}

type machineBreak struct {
	start, end string
}

func buildCalendar(machineID string, breaks []any, horizon model.Horizon) ([]model.Window, error) {
	var mine []machineBreak
	for _, raw := range breaks {
		b, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("machine_breaks entry is not an object")
		}
		if id, _ := b["machine"].(string); id != machineID {
			continue
		}
		start, _ := b["start"].(string)
		end, _ := b["end"].(string)
		mine = append(mine, machineBreak{start: start, end: end})
	}
	if len(mine) == 0 {
		return []model.Window{{Open: horizon.Start, Close: horizon.End}}, nil
	}

	type resolved struct{ start, end time.Time }
	resolvedBreaks := make([]resolved, 0, len(mine))
	for _, b := range mine {
		start, err := timeOnDate(b.start, horizon.Start)
		if err != nil {
			return nil, err
		}
		end, err := timeOnDate(b.end, horizon.Start)
		if err != nil {
			return nil, err
		}
		resolvedBreaks = append(resolvedBreaks, resolved{start, end})
	}
	sort.Slice(resolvedBreaks, func(i, j int) bool { return resolvedBreaks[i].start.Before(resolvedBreaks[j].start) })

	var windows []model.Window
	cursor := horizon.Start
	for _, b := range resolvedBreaks {
		if cursor.Before(b.start) {
			windows = append(windows, model.Window{Open: cursor, Close: b.start})
		}
		cursor = b.end
	}
	if cursor.Before(horizon.End) {
		windows = append(windows, model.Window{Open: cursor, Close: horizon.End})
	}
	return windows, nil
}

func timeOnDate(hhmm string, base time.Time) (time.Time, error) {
	hour, minute, err := parseHourMinute(hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location()), nil
}

func buildProducts(orders []any, baseDate time.Time) ([]model.Product, error) {
	products := make([]model.Product, 0, len(orders))
	for _, raw := range orders {
		order, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("orders entry is not an object")
		}
		id, _ := order["order_id"].(string)
		family, _ := order["product_family"].(string)

		deadlineHour, err := asFloat(order["deadline_hour"])
		if err != nil {
			return nil, fmt.Errorf("order %q: deadline_hour: %w", id, err)
		}
		hour := int(deadlineHour)
		minute := int((deadlineHour - float64(hour)) * 60)
		due := time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), hour, minute, 0, 0, baseDate.Location())

		opsRaw, err := anyList(order["operations"])
		if err != nil {
			return nil, fmt.Errorf("order %q: operations: %w", id, err)
		}
		type step struct {
			index int
			op    model.Operation
		}
		steps := make([]step, 0, len(opsRaw))
		for _, r := range opsRaw {
			opMap, ok := r.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("order %q: operation entry is not an object", id)
			}
			idx, err := asInt(opMap["step"])
			if err != nil {
				return nil, fmt.Errorf("order %q: operation step: %w", id, err)
			}
			capability, _ := opMap["type"].(string)
			minutes, err := asInt(opMap["minutes"])
			if err != nil {
				return nil, fmt.Errorf("order %q: operation minutes: %w", id, err)
			}
			steps = append(steps, step{index: idx, op: model.Operation{Capability: capability, DurationMinutes: minutes}})
		}
		sort.Slice(steps, func(i, j int) bool { return steps[i].index < steps[j].index })
		route := make([]model.Operation, len(steps))
		for i, st := range steps {
			route[i] = st.op
		}

		products = append(products, model.Product{ID: id, Family: family, Due: due, Route: route})
	}
	return products, nil
}

func buildChangeoverMatrix(setupTimes []any) (model.ChangeoverMatrix, error) {
	values := map[string]int{}
	for _, raw := range setupTimes {
		entry, ok := raw.(map[string]any)
		if !ok {
			return model.ChangeoverMatrix{}, fmt.Errorf("setup_times entry is not an object")
		}
		from, _ := entry["from_family"].(string)
		to, _ := entry["to_family"].(string)
		minutes, err := asInt(entry["minutes"])
		if err != nil {
			return model.ChangeoverMatrix{}, fmt.Errorf("setup_times %s->%s: %w", from, to, err)
		}
		values[from+"->"+to] = minutes
	}
	return model.ChangeoverMatrix{Values: values}, nil
}

func stringList(v any) ([]string, error) {
	items, err := anyList(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		out[i] = s
	}
	return out, nil
}

func anyList(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	return items, nil
}

func asInt(v any) (int, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
