package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/search"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/validate"
	"github.com/DrPhilDSI/harmony-scheduler/internal/store"
)

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.NewError(model.ErrInvalidRequest, "only POST is supported"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, "could not read request body"))
		return
	}
	hash := contentHash(body)

	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), hash); err == nil && ok {
			s.Metrics.CacheHits.WithLabelValues("hit").Inc()
			w.Header().Set(headerCache, "hit")
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
		s.Metrics.CacheHits.WithLabelValues("miss").Inc()
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, "body is not valid JSON"))
		return
	}

	adapter, err := s.Adapters.Resolve(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, err.Error()))
		return
	}
	req, err := adapter.ToCanonical(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, err.Error()))
		return
	}

	if req.Settings.TimeLimitSeconds > s.MaxTimeLimitSeconds {
		req.Settings.TimeLimitSeconds = s.MaxTimeLimitSeconds
	}

	m, verr := build.Build(req)
	if verr != nil {
		writeError(w, http.StatusBadRequest, verr)
		return
	}

	ctx, cancel := r.Context(), func() {}
	if req.Settings.TimeLimitSeconds > 0 {
		ctx, cancel = contextWithTimeout(r.Context(), req.Settings.TimeLimitSeconds)
	}
	defer cancel()

	start := time.Now()
	outcome := search.Solve(ctx, m, req.Settings.TimeLimitSeconds)
	s.Metrics.SolveOutcomes.WithLabelValues(outcome.Status.String()).Inc()
	s.Metrics.SolveDuration.WithLabelValues(outcome.Status.String()).Observe(time.Since(start).Seconds())

	recID := uuid.New().String()
	defer func() {
		_ = s.Store.Record(r.Context(), store.Record{
			ID: recID, RequestHash: hash, Status: outcome.Status.String(),
			Objective: outcome.Objective, CreatedAt: time.Now(),
		})
	}()

	switch outcome.Status {
	case search.StatusInfeasible:
		writeError(w, http.StatusUnprocessableEntity, model.NewError(model.ErrInfeasible, outcome.Reasons...))
		return
	case search.StatusUnknown:
		writeError(w, http.StatusRequestTimeout, model.NewError(model.ErrTimeoutUnknown, outcome.Reasons...))
		return
	}

	if why := validate.Violations(m, outcome.Assignments); len(why) > 0 {
		s.Log.Errorw("search engine produced an unsound schedule", nil, map[string]any{"why": why})
		writeError(w, http.StatusInternalServerError, model.NewError(model.ErrInternalValidationFail, why...))
		return
	}

	resp := model.ScheduleResponse{
		Assignments: toCanonicalAssignments(m, outcome.Assignments),
		KPIs:        validate.KPIs(m, outcome.Assignments),
	}
	s.Metrics.SolveObjective.WithLabelValues(outcome.Status.String()).Observe(float64(resp.KPIs.TardinessMinutes))

	payload, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.NewError(model.ErrInternalValidationFail, "could not encode response"))
		return
	}
	if s.Cache != nil {
		_ = s.Cache.Set(r.Context(), hash, payload)
	}

	w.Header().Set(headerCache, "miss")
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func toCanonicalAssignments(m *build.Model, assignments []search.Assignment) []model.Assignment {
	out := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		op := m.Ops[a.OpID]
		out = append(out, model.Assignment{
			Product:  op.Product,
			OpIndex:  op.OpIndex,
			Op:       op.Capability,
			Resource: m.Resources[a.Resource].ID,
			Start:    m.Clock.ToInstant(a.Start),
			End:      m.Clock.ToInstant(a.Start + op.Duration),
		})
	}
	return out
}

func writeError(w http.ResponseWriter, status int, err *model.ScheduleError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func contextWithTimeout(parent context.Context, seconds int) (context.Context, func()) {
	return context.WithTimeout(parent, time.Duration(seconds)*time.Second)
}
