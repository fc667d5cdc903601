package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/graphomotor/internal/capture"
	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/risk"
	"github.com/roach88/graphomotor/internal/validator"
)

// Analyzer holds everything an analysis depends on.
// It is read-only after construction and safe for concurrent use.
type Analyzer struct {
	Features  features.Config
	Weights   risk.WeightTable
	Validator *validator.Validator
	Options   risk.Options
	Logger    *slog.Logger
}

// New builds an Analyzer after checking its configuration.
// A nil logger discards output.
func New(cfg features.Config, weights risk.WeightTable, v *validator.Validator, opts risk.Options, logger *slog.Logger) (*Analyzer, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if weights.Vocabulary != features.Version() {
		return nil, ir.NewInvalidConfig("weights.vocabulary",
			"weight table references vocabulary %q, extraction produces %q", weights.Vocabulary, features.Version())
	}
	if err := weights.Check(features.Vocabulary()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		Features:  cfg,
		Weights:   weights,
		Validator: v,
		Options:   opts,
		Logger:    logger,
	}, nil
}

// Input is one completed task attempt plus the evidence to aggregate with it.
type Input struct {
	// TaskID selects the reference definition. Empty skips validation and
	// aggregates the features with PriorRecords only.
	TaskID    string
	Strokes   [][]ir.RawPoint
	Canvas    ir.CanvasSize
	ElapsedMs int64
	Responses []string

	// ResponseTimeMs is recorded on the new task record. Zero means the
	// session's elapsed time.
	ResponseTimeMs int64

	// PriorRecords are previously stored records for the same user.
	PriorRecords []ir.CognitiveTaskRecord
}

// Output carries every intermediate value of one analysis.
type Output struct {
	Session       ir.HandwritingSession
	Report        capture.Report
	Features      ir.FeatureVector
	Validation    *ir.TaskValidationResult
	Record        *ir.CognitiveTaskRecord
	Result        ir.SessionAnalysisResult
	SessionDigest string
	ResultDigest  string
}

// Analyze runs the pipeline on one attempt.
func (a *Analyzer) Analyze(in Input) (Output, error) {
	log := a.logger().With("task", in.TaskID)

	session, report, err := capture.Normalize(in.Strokes, in.Canvas, in.ElapsedMs)
	if err != nil {
		return Output{}, err
	}
	if report.Dropped > 0 {
		log.Info("dropped empty strokes", "count", report.Dropped)
	}
	if report.Widened || report.Clamped {
		log.Info("adjusted elapsed time",
			"reported_ms", report.ReportedElapsedMs,
			"elapsed_ms", session.ElapsedMs)
	}

	fv := features.Extract(session, a.Features)
	if fv.Degenerate {
		log.Info("degenerate session", "points", session.PointCount())
	}

	out := Output{Session: session, Report: report, Features: fv}

	records := in.PriorRecords
	if in.TaskID != "" {
		if a.Validator == nil {
			return Output{}, ir.NewUnsupportedTask(in.TaskID)
		}
		res, err := a.Validator.Validate(in.TaskID, validator.Attempt{
			Session:   session,
			Responses: in.Responses,
		})
		if err != nil {
			return Output{}, err
		}

		rt := in.ResponseTimeMs
		if rt == 0 {
			rt = session.ElapsedMs
		}
		rec := validator.RecordFromValidation(res, rt)
		out.Validation = &res
		out.Record = &rec

		records = make([]ir.CognitiveTaskRecord, 0, len(in.PriorRecords)+1)
		records = append(records, in.PriorRecords...)
		records = append(records, rec)

		log.Debug("validated task",
			"conformance", res.Conformance,
			"passed", res.Passed,
			"deviations", len(res.Deviations))
	}

	out.Result = risk.Aggregate(fv, records, a.Weights, a.Options)

	if out.SessionDigest, err = ir.SessionDigest(session); err != nil {
		return Output{}, fmt.Errorf("analyze: %w", err)
	}
	if out.ResultDigest, err = ir.ResultDigest(out.Result); err != nil {
		return Output{}, fmt.Errorf("analyze: %w", err)
	}

	log.Debug("analysis complete",
		"tier", out.Result.Tier,
		"score", out.Result.Score,
		"evidence", out.Result.TaskEvidence)

	return out, nil
}

// AnalyzeBatch analyzes independent attempts in parallel with at most
// workers in flight (workers < 1 means one). Outputs are in input order.
// The first failure cancels the remaining work and is returned.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []Input, workers int) ([]Output, error) {
	if workers < 1 {
		workers = 1
	}
	outs := make([]Output, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := a.Analyze(inputs[i])
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outs, nil
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.Logger
}
