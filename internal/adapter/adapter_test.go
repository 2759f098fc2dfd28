package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
)

func TestFactoryResolvesExplicitClientID(t *testing.T) {
	f := NewFactory()
	a, err := f.Resolve(map[string]any{"client_id": "client_b"})
	require.NoError(t, err)
	require.Equal(t, "client_b", a.ClientID())
}

func TestFactoryRejectsUnknownClientID(t *testing.T) {
	f := NewFactory()
	_, err := f.Resolve(map[string]any{"client_id": "client_z"})
	require.Error(t, err)
}

func TestFactoryFingerprintsClientA(t *testing.T) {
	f := NewFactory()
	a, err := f.Resolve(map[string]any{"horizon": map[string]any{}, "products": []any{}})
	require.NoError(t, err)
	require.Equal(t, "client_a", a.ClientID())
}

func TestFactoryFingerprintsClientB(t *testing.T) {
	f := NewFactory()
	a, err := f.Resolve(map[string]any{"shift_window": "x", "orders": []any{}})
	require.NoError(t, err)
	require.Equal(t, "client_b", a.ClientID())
}

func TestFactoryRejectsUndetectableShape(t *testing.T) {
	f := NewFactory()
	_, err := f.Resolve(map[string]any{"foo": "bar"})
	require.Error(t, err)
}

func TestClientAAdapterRoundTripsCanonicalShape(t *testing.T) {
	raw := map[string]any{
		"horizon": map[string]any{
			"start": "2025-11-03T08:00:00Z",
			"end":   "2025-11-03T16:00:00Z",
		},
		"resources": []any{
			map[string]any{
				"id":           "Fill-1",
				"capabilities": []any{"fill"},
				"calendar": []any{
					[]any{"2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z"},
				},
			},
		},
		"products": []any{
			map[string]any{
				"id":     "P1",
				"family": "standard",
				"due":    "2025-11-03T12:00:00Z",
				"route": []any{
					map[string]any{"capability": "fill", "duration_minutes": float64(30)},
				},
			},
		},
		"settings": map[string]any{"time_limit_seconds": float64(30)},
	}
	req, err := NewClientAAdapter().ToCanonical(raw)
	require.NoError(t, err)
	require.Len(t, req.Products, 1)
	require.Equal(t, "P1", req.Products[0].ID)
	require.Len(t, req.Resources, 1)
	require.Equal(t, "Fill-1", req.Resources[0].ID)
}

func TestClientBAdapterTranslatesLegacyShape(t *testing.T) {
	raw := map[string]any{
		"shift_window": "11/03/2025 08:00 - 16:00",
		"machines":     []any{"Fill-1"},
		"machine_breaks": []any{
			map[string]any{"machine": "Fill-1", "start": "12:00", "end": "12:30"},
		},
		"orders": []any{
			map[string]any{
				"order_id":       "O1",
				"product_family": "red",
				"deadline_hour":  float64(15.5),
				"operations": []any{
					map[string]any{"step": float64(1), "type": "fill", "minutes": float64(30)},
				},
			},
		},
		"setup_times": []any{
			map[string]any{"from_family": "red", "to_family": "blue", "minutes": float64(10)},
		},
	}
	req, err := NewClientBAdapter().ToCanonical(raw)
	require.NoError(t, err)
	require.Len(t, req.Resources, 1)
	require.Equal(t, "fill", req.Resources[0].Capabilities[0])
	require.Lenf(t, req.Resources[0].Calendar, 2, "expected the break to split the calendar into 2 windows")
	require.Len(t, req.Products, 1)
	require.Equal(t, "fill", req.Products[0].Route[0].Capability)
	require.Equal(t, 15, req.Products[0].Due.Hour())
	require.Equal(t, 30, req.Products[0].Due.Minute())
	require.Equal(t, 10, req.ChangeoverMatrixMinutes.Minutes("red", "blue"))
	require.Equal(t, model.DefaultTimeLimitSeconds, req.Settings.TimeLimitSeconds)
}
