package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustBuild(t *testing.T, req model.ScheduleRequest) *build.Model {
	t.Helper()
	m, err := build.Build(req)
	require.Nil(t, err)
	return m
}

func window(open, close string) model.Window {
	return model.Window{Open: ts(open), Close: ts(close)}
}

func TestSolveSingleProductSingleResourceFits(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T12:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Equalf(t, StatusOptimal, out.Status, "reasons %v", out.Reasons)
	require.Zero(t, out.Objective)
	require.Len(t, out.Assignments, 1)
	require.Zero(t, out.Assignments[0].Start)
}

func TestSolveBreakSplitsCalendarIntoTwoWindows(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{
				window("2025-11-03T08:00:00Z", "2025-11-03T08:20:00Z"),
				window("2025-11-03T09:00:00Z", "2025-11-03T16:00:00Z"),
			}},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Equalf(t, StatusOptimal, out.Status, "reasons %v", out.Reasons)
	require.GreaterOrEqual(t, out.Assignments[0].Start, 60)
}

func TestSolvePrecedenceChainRespected(t *testing.T) {
	cal := []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: cal},
			{ID: "Label-1", Capabilities: []string{"label"}, Calendar: cal},
			{ID: "Pack-1", Capabilities: []string{"pack"}, Calendar: cal},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{
				{Capability: "fill", DurationMinutes: 30},
				{Capability: "label", DurationMinutes: 20},
				{Capability: "pack", DurationMinutes: 15},
			}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Equalf(t, StatusOptimal, out.Status, "reasons %v", out.Reasons)
	byOp := map[int]Assignment{}
	for _, a := range out.Assignments {
		byOp[a.OpID] = a
	}
	opIDs := m.Products[0].OpIDs
	for i := 1; i < len(opIDs); i++ {
		prev := byOp[opIDs[i-1]]
		cur := byOp[opIDs[i]]
		require.GreaterOrEqualf(t, cur.Start, prev.End(m), "operation %d", i)
	}
}

func TestSolveTwoProductsShareResourceNoOverlap(t *testing.T) {
	cal := []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: cal},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 60}}},
			{ID: "P2", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 60}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Containsf(t, []Status{StatusOptimal, StatusFeasible}, out.Status, "reasons %v", out.Reasons)
	require.Len(t, out.Assignments, 2)
	a, b := out.Assignments[0], out.Assignments[1]
	overlap := a.Start < b.End(m) && b.Start < a.End(m)
	require.Falsef(t, overlap, "assignments overlap on the shared resource: %+v, %+v", a, b)
}

func TestSolveInfeasibleMissingCapabilityFailsAtBuild(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "seal", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	_, err := build.Build(req)
	require.NotNil(t, err)
	require.Equal(t, model.ErrInvalidRequest, err.Code)
}

func TestSolveDurationExceedsEveryWindowIsInfeasible(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T08:20:00Z")}},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Equal(t, StatusInfeasible, out.Status)
	require.NotEmpty(t, out.Reasons)
}

func TestSolveZeroTimeLimitIsUnknown(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T16:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 0},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, 0)
	require.Equal(t, StatusUnknown, out.Status)
}

func TestSolveEmptyProductListIsTriviallyOptimal(t *testing.T) {
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T16:00:00Z")}},
		},
		Products: nil,
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m := mustBuild(t, req)
	out := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	require.Equal(t, StatusOptimal, out.Status)
	require.Empty(t, out.Assignments)
}

func TestSolveIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	cal := []model.Window{window("2025-11-03T08:00:00Z", "2025-11-03T20:00:00Z")}
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T20:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: cal},
			{ID: "Fill-2", Capabilities: []string{"fill"}, Calendar: cal},
		},
		Products: []model.Product{
			{ID: "P1", Family: "standard", Due: ts("2025-11-03T09:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 90}}},
			{ID: "P2", Family: "standard", Due: ts("2025-11-03T09:30:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 90}}},
			{ID: "P3", Family: "standard", Due: ts("2025-11-03T10:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 90}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 1},
	}
	m := mustBuild(t, req)
	first := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)
	second := Solve(context.Background(), m, req.Settings.TimeLimitSeconds)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Objective, second.Objective)
	require.Len(t, second.Assignments, len(first.Assignments))
	byOp := map[int]Assignment{}
	for _, a := range second.Assignments {
		byOp[a.OpID] = a
	}
	for _, a := range first.Assignments {
		b, ok := byOp[a.OpID]
		require.Truef(t, ok, "op %d missing from second run", a.OpID)
		require.Equalf(t, a, b, "assignment for op %d differs between runs", a.OpID)
	}
}
