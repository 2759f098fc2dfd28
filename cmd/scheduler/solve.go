package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DrPhilDSI/harmony-scheduler/internal/adapter"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/model"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/search"
	"github.com/DrPhilDSI/harmony-scheduler/internal/core/validate"
)

var solveInputPath string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a single request from a file (or stdin) and print the result",
	RunE:  solve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveInputPath, "input", "i", "-", "path to a request JSON file, or - for stdin")
	rootCmd.AddCommand(solveCmd)
}

func solve(cmd *cobra.Command, args []string) error {
	raw, err := readRequest(solveInputPath)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	factory := adapter.NewFactory()
	a, err := factory.Resolve(raw)
	if err != nil {
		return err
	}
	req, err := a.ToCanonical(raw)
	if err != nil {
		return err
	}

	m, verr := build.Build(req)
	if verr != nil {
		return encodeAndPrint(verr)
	}

	ctx := context.Background()
	if req.Settings.TimeLimitSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.Settings.TimeLimitSeconds)*time.Second)
		defer cancel()
	}

	outcome := search.Solve(ctx, m, req.Settings.TimeLimitSeconds)
	switch outcome.Status {
	case search.StatusInfeasible:
		return encodeAndPrint(model.NewError(model.ErrInfeasible, outcome.Reasons...))
	case search.StatusUnknown:
		return encodeAndPrint(model.NewError(model.ErrTimeoutUnknown, outcome.Reasons...))
	}

	if why := validate.Violations(m, outcome.Assignments); len(why) > 0 {
		return encodeAndPrint(model.NewError(model.ErrInternalValidationFail, why...))
	}

	assignments := make([]model.Assignment, 0, len(outcome.Assignments))
	for _, oa := range outcome.Assignments {
		op := m.Ops[oa.OpID]
		assignments = append(assignments, model.Assignment{
			Product:  op.Product,
			OpIndex:  op.OpIndex,
			Op:       op.Capability,
			Resource: m.Resources[oa.Resource].ID,
			Start:    m.Clock.ToInstant(oa.Start),
			End:      m.Clock.ToInstant(oa.Start + op.Duration),
		})
	}

	return encodeAndPrint(model.ScheduleResponse{
		Assignments: assignments,
		KPIs:        validate.KPIs(m, outcome.Assignments),
	})
}

func readRequest(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return raw, nil
}

func encodeAndPrint(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
