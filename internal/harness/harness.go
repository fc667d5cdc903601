package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/graphomotor/internal/config"
	"github.com/roach88/graphomotor/internal/ingest"
	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/pipeline"
	"github.com/roach88/graphomotor/internal/reference"
	"github.com/roach88/graphomotor/internal/store"
	"github.com/roach88/graphomotor/internal/testutil"
	"github.com/roach88/graphomotor/internal/validator"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	analyzer *pipeline.Analyzer
	ids      *testutil.SequenceIDGenerator
	user     string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Load configuration and the reference table
//  2. Store prior records for the scenario user
//  3. For each step: build the input, read the user's stored records,
//     analyze, persist, and check the step's expectations
//
// The returned error is reserved for problems with the scenario itself
// (unreadable files, invalid configuration). Analysis errors are step
// outcomes and are checked against expect.error.
func Run(scenario *Scenario) (*Result, error) {
	cfg := config.Default()
	if scenario.Config != "" {
		var err error
		if cfg, err = config.Load(scenario.path(scenario.Config)); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	table, err := reference.Load(scenario.path(scenario.References))
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	v, err := validator.New(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build validator: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	an, err := pipeline.New(cfg.Features, cfg.Weights, v, cfg.Options, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}

	st, err := store.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	user := scenario.User
	if user == "" {
		user = DefaultUser
	}
	h := &Harness{
		scenario: scenario,
		store:    st,
		analyzer: an,
		ids:      testutil.NewSequenceIDGenerator(scenario.Name),
		user:     user,
	}

	ctx := context.Background()
	for i, pr := range scenario.PriorRecords {
		id := fmt.Sprintf("%s-prior-%03d", scenario.Name, i+1)
		if err := st.WriteTaskRecord(ctx, id, user, pr.record()); err != nil {
			return nil, fmt.Errorf("failed to store prior record %d: %w", i, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		sr, err := h.runStep(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.Steps = append(result.Steps, sr)
		for _, msg := range evaluate(step.Expect, sr) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, stepLabel(step), msg))
		}
	}
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, step Step) (StepResult, error) {
	sr := StepResult{Task: step.Task}

	in, inputErr, err := h.input(step)
	if err != nil {
		return sr, err
	}
	if inputErr != nil {
		sr.Err = inputErr
		return sr, nil
	}

	prior, err := h.store.ReadTaskRecords(ctx, h.user)
	if err != nil {
		return sr, fmt.Errorf("failed to read task records: %w", err)
	}
	in.PriorRecords = prior

	out, err := h.analyzer.Analyze(in)
	if err != nil {
		sr.Err = err
		return sr, nil
	}

	id := h.ids.Generate()
	if _, err := h.store.WriteAnalysis(ctx, store.Analysis{
		ID:            id,
		UserID:        h.user,
		TaskID:        in.TaskID,
		SessionDigest: out.SessionDigest,
		ResultDigest:  out.ResultDigest,
		Result:        out.Result,
		Validation:    out.Validation,
		Record:        out.Record,
	}); err != nil {
		return sr, fmt.Errorf("failed to write analysis: %w", err)
	}

	stored, err := h.store.ReadAnalysis(ctx, id)
	if err != nil {
		return sr, fmt.Errorf("failed to read analysis back: %w", err)
	}
	if err := store.VerifyAnalysis(stored); err != nil {
		return sr, err
	}

	sr.ID = id
	sr.Output = &out
	return sr, nil
}

// input builds the pipeline input for a step. Decoding problems in a
// session file are returned as inputErr so a scenario can expect them.
func (h *Harness) input(step Step) (in pipeline.Input, inputErr, err error) {
	if step.Session == "" {
		canvas := ir.CanvasSize{Width: defaultCanvas, Height: defaultCanvas}
		if step.Canvas != nil {
			canvas = *step.Canvas
		}
		return pipeline.Input{
			TaskID:         step.Task,
			Strokes:        drawStrokes(step.Draw, step.SampleMs),
			Canvas:         canvas,
			ElapsedMs:      step.ElapsedMs,
			Responses:      step.Responses,
			ResponseTimeMs: step.ResponseTimeMs,
		}, nil, nil
	}

	path := h.scenario.path(step.Session)
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".rm") {
		page, err := ingest.DecodeRM(data)
		if err != nil {
			return pipeline.Input{}, err, nil
		}
		in = page.Input(step.Task)
	} else {
		export, err := ingest.DecodeSessionJSON(data)
		if err != nil {
			return pipeline.Input{}, err, nil
		}
		in = export.Input()
		if step.Task != "" {
			in.TaskID = step.Task
		}
	}

	if step.Responses != nil {
		in.Responses = step.Responses
	}
	if step.ElapsedMs != 0 {
		in.ElapsedMs = step.ElapsedMs
	}
	if step.ResponseTimeMs != 0 {
		in.ResponseTimeMs = step.ResponseTimeMs
	}
	return in, nil, nil
}

func stepLabel(step Step) string {
	if step.Task == "" {
		return "features only"
	}
	return step.Task
}
