package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DrPhilDSI/harmony-scheduler/internal/cache"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
	"github.com/DrPhilDSI/harmony-scheduler/internal/logger"
	"github.com/DrPhilDSI/harmony-scheduler/internal/metrics"
	"github.com/DrPhilDSI/harmony-scheduler/internal/store"
)

type discardLogger struct{}

func (discardLogger) Debugf(string, ...any)                       {}
func (discardLogger) Debugw(string, map[string]any)                {}
func (discardLogger) Infof(string, ...any)                         {}
func (discardLogger) Infow(string, map[string]any)                 {}
func (discardLogger) Warnf(string, ...any)                         {}
func (discardLogger) Errorf(string, ...any)                        {}
func (discardLogger) Errorw(string, error, map[string]any)         {}

var _ logger.Logger = discardLogger{}

func newTestServer() *Server {
	return NewServer(store.NewMemory(), cache.NewMemory(time.Minute), metrics.New(), discardLogger{}, Config{
		RequestsPerSecond: 1000, Burst: 1000, MaxTimeLimitSeconds: 30,
	})
}

func clientARequest() []byte {
	body := map[string]any{
		"horizon": map[string]any{"start": "2025-11-03T08:00:00Z", "end": "2025-11-03T16:00:00Z"},
		"resources": []any{
			map[string]any{
				"id": "Fill-1", "capabilities": []any{"fill"},
				"calendar": []any{[]any{"2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z"}},
			},
		},
		"products": []any{
			map[string]any{
				"id": "P1", "family": "standard", "due": "2025-11-03T12:00:00Z",
				"route": []any{map[string]any{"capability": "fill", "duration_minutes": 30}},
			},
		},
		"settings": map[string]any{"time_limit_seconds": 5},
	}
	buf, _ := json.Marshal(body)
	return buf
}

func TestHandleScheduleReturnsOptimalSchedule(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(clientARequest()))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equalf(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
	var resp model.ScheduleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Assignments, 1)
	require.Equal(t, "miss", rr.Header().Get(headerCache))
}

func TestHandleScheduleSecondIdenticalRequestHitsCache(t *testing.T) {
	s := newTestServer()
	body := clientARequest()

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "hit", second.Header().Get(headerCache))
	require.Equal(t, first.Body.String(), second.Body.String())
}

func TestHandleScheduleInvalidRequestReturns400(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader([]byte(`{"foo":"bar"}`)))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleScheduleInfeasibleReturns422(t *testing.T) {
	s := newTestServer()
	body := map[string]any{
		"horizon": map[string]any{"start": "2025-11-03T08:00:00Z", "end": "2025-11-03T16:00:00Z"},
		"resources": []any{
			map[string]any{
				"id": "Fill-1", "capabilities": []any{"fill"},
				"calendar": []any{[]any{"2025-11-03T08:00:00Z", "2025-11-03T08:20:00Z"}},
			},
		},
		"products": []any{
			map[string]any{
				"id": "P1", "family": "standard", "due": "2025-11-03T16:00:00Z",
				"route": []any{map[string]any{"capability": "fill", "duration_minutes": 30}},
			},
		},
		"settings": map[string]any{"time_limit_seconds": 5},
	}
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equalf(t, http.StatusUnprocessableEntity, rr.Code, "body: %s", rr.Body.String())
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
