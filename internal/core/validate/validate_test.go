package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/search"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func twoFamilyModel(t *testing.T) *build.Model {
	t.Helper()
	cal := []model.Window{{Open: ts("2025-11-03T08:00:00Z"), Close: ts("2025-11-03T16:00:00Z")}}
	req := model.ScheduleRequest{
		Horizon: model.Horizon{Start: ts("2025-11-03T08:00:00Z"), End: ts("2025-11-03T16:00:00Z")},
		Resources: []model.Resource{
			{ID: "Fill-1", Capabilities: []string{"fill"}, Calendar: cal},
		},
		Products: []model.Product{
			{ID: "P1", Family: "red", Due: ts("2025-11-03T09:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
			{ID: "P2", Family: "blue", Due: ts("2025-11-03T10:00:00Z"), Route: []model.Operation{{Capability: "fill", DurationMinutes: 30}}},
		},
		Settings: model.Settings{TimeLimitSeconds: 5},
	}
	m, err := build.Build(req)
	require.Nil(t, err)
	return m
}

func TestViolationsCatchesOverlap(t *testing.T) {
	m := twoFamilyModel(t)
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 0},
		{OpID: 1, Resource: 0, Start: 15}, // overlaps op 0's [0,30)
	}
	require.NotEmpty(t, Violations(m, assignments))
}

func TestViolationsAcceptsSoundSchedule(t *testing.T) {
	m := twoFamilyModel(t)
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 0},
		{OpID: 1, Resource: 0, Start: 30},
	}
	require.Empty(t, Violations(m, assignments))
}

func TestKPIsCountsChangeoverBetweenFamilies(t *testing.T) {
	m := twoFamilyModel(t)
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 0},
		{OpID: 1, Resource: 0, Start: 30},
	}
	kpis := KPIs(m, assignments)
	require.Equal(t, 1, kpis.Changeovers)
	require.Equal(t, 60, kpis.MakespanMinutes)
}

func TestKPIsTardinessForLateCompletion(t *testing.T) {
	m := twoFamilyModel(t)
	// P1 due at minute 60 (09:00Z), op 0 duration 30, starts at 90 -> completes 120, tardy 60.
	// P2 due at minute 120 (10:00Z), op 1 duration 30, starts at 120 -> completes 150, tardy 30.
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 90},
		{OpID: 1, Resource: 0, Start: 120},
	}
	kpis := KPIs(m, assignments)
	require.Equal(t, 90, kpis.TardinessMinutes)
}

func TestUtilizationBalanceZeroForSingleResource(t *testing.T) {
	util := map[string]int{"Fill-1": 42}
	require.Zero(t, utilizationBalance(util))
}

func TestUtilizationBalancePositiveForUnevenLoad(t *testing.T) {
	util := map[string]int{"Fill-1": 10, "Fill-2": 90}
	require.Greater(t, utilizationBalance(util), 0.0)
}

func TestViolationsCatchesCapabilityMismatch(t *testing.T) {
	m := twoFamilyModel(t)
	// op 0 requires "fill"; Resource 0 is the only resource and it offers
	// "fill", so force a mismatch by pointing at a resource index that
	// does not carry the op's capability.
	m.Resources = append(m.Resources, build.Resource{ID: "Seal-1", Capabilities: map[string]bool{"seal": true}})
	assignments := []search.Assignment{
		{OpID: 0, Resource: 1, Start: 0},
		{OpID: 1, Resource: 0, Start: 30},
	}
	require.NotEmpty(t, Violations(m, assignments))
}

func TestViolationsCatchesMissingAssignment(t *testing.T) {
	m := twoFamilyModel(t)
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 0},
	}
	require.NotEmpty(t, Violations(m, assignments))
}

func TestViolationsCatchesDuplicateAssignment(t *testing.T) {
	m := twoFamilyModel(t)
	assignments := []search.Assignment{
		{OpID: 0, Resource: 0, Start: 0},
		{OpID: 0, Resource: 0, Start: 30},
	}
	require.NotEmpty(t, Violations(m, assignments))
}
