// Package adapter translates client-specific JSON payloads into the core's
// canonical model.ScheduleRequest, keeping client format quirks out of the
// scheduling core entirely.
package adapter

import (
	"fmt"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
)

// Adapter transforms one client's raw JSON payload into the canonical
// request shape.
type Adapter interface {
	ClientID() string
	ToCanonical(raw map[string]any) (model.ScheduleRequest, error)
}

// Factory selects the right Adapter for an inbound payload, either from an
// explicit client_id field or by fingerprinting the payload's shape.
// Registering further client adapters never requires changing this type.
type Factory struct {
	adapters map[string]Adapter
}

// NewFactory returns a Factory pre-registered with every known adapter.
func NewFactory() *Factory {
	f := &Factory{adapters: map[string]Adapter{}}
	f.Register(NewClientAAdapter())
	f.Register(NewClientBAdapter())
	return f
}

// Register adds or replaces the adapter for its own ClientID().
func (f *Factory) Register(a Adapter) {
	f.adapters[a.ClientID()] = a
}

// Resolve picks an adapter for raw, preferring an explicit client_id field
// over schema fingerprinting.
func (f *Factory) Resolve(raw map[string]any) (Adapter, error) {
	if id, ok := raw["client_id"]; ok {
		idStr, ok := id.(string)
		if !ok {
			return nil, fmt.Errorf("client_id must be a string")
		}
		a, known := f.adapters[idStr]
		if !known {
			return nil, fmt.Errorf("unknown client_id %q", idStr)
		}
		return a, nil
	}
	return f.detect(raw)
}

// detect fingerprints the payload shape: Client B's "shift_window"+"orders"
// pair is checked first since Client A's own fields ("horizon", "products")
// are a strict canonical subset and would otherwise shadow it.
func (f *Factory) detect(raw map[string]any) (Adapter, error) {
	if _, hasWindow := raw["shift_window"]; hasWindow {
		if _, hasOrders := raw["orders"]; hasOrders {
			return f.adapters["client_b"], nil
		}
	}
	if _, hasHorizon := raw["horizon"]; hasHorizon {
		if _, hasProducts := raw["products"]; hasProducts {
			return f.adapters["client_a"], nil
		}
	}
	return nil, fmt.Errorf("unable to detect client format: expected either (horizon + products) or (shift_window + orders)")
}
