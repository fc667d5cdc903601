package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/graphomotor/internal/archive"
	"github.com/roach88/graphomotor/internal/capture"
	"github.com/roach88/graphomotor/internal/config"
	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/pipeline"
	"github.com/roach88/graphomotor/internal/reference"
	"github.com/roach88/graphomotor/internal/store"
	"github.com/roach88/graphomotor/internal/validator"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Task       string
	Config     string
	References string
	Database   string
	User       string
	ArchiveDir string
	Responses  []string
	Workers    int
	Verify     bool

	// IDs allows overriding the analysis ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs pipeline.IDGenerator
}

// AnalysisSummary is the analyze output for one session file.
type AnalysisSummary struct {
	File          string                   `json:"file"`
	Session       string                   `json:"session"`
	Task          string                   `json:"task,omitempty"`
	ID            string                   `json:"id,omitempty"`
	Stored        bool                     `json:"stored"`
	Archive       string                   `json:"archive,omitempty"`
	Report        capture.Report           `json:"report"`
	Validation    *ir.TaskValidationResult `json:"validation,omitempty"`
	Result        ir.SessionAnalysisResult `json:"result"`
	SessionDigest string                   `json:"session_digest"`
	ResultDigest  string                   `json:"result_digest"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <session>...",
		Short: "Analyze captured handwriting sessions",
		Long: `Analyze one or more captured sessions.

Each file is either an application export (JSON) or a reMarkable page
(.rm, versions 3 and 5). Sessions are analyzed in parallel; each one is
aggregated with the task records already stored for the user.

With --db the analyses and their task records are persisted. With
--archive the raw capture is kept as a zstd-compressed copy.

Exit codes:
  0 - All sessions analyzed
  1 - A session or the configuration was rejected
  2 - Command error (unreadable files, database errors, etc.)

Examples:
  graphomotor analyze clock.json
  graphomotor analyze --task copy_square page.rm
  graphomotor analyze --db ./graphomotor.db --user p-042 s1.json s2.json
  graphomotor analyze --db ./graphomotor.db --user p-042 --verify s3.json
  graphomotor analyze --task word_recall --responses apple,car recall.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Task, "task", "", "reference task ID (overrides the export's test type)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to configuration YAML")
	cmd.Flags().StringVar(&opts.References, "references", "", "path to task reference YAML (default: built-in table)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for persisted analyses")
	cmd.Flags().StringVar(&opts.User, "user", "", "user whose task records are read and written (required with --db)")
	cmd.Flags().StringVar(&opts.ArchiveDir, "archive", "", "directory for compressed raw captures")
	cmd.Flags().StringSliceVar(&opts.Responses, "responses", nil, "typed responses for token and sequence tasks")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel analyses (default: config, then 4)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "re-hash every stored result before analyzing (requires --db)")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, paths []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return f.Fail(exitCodeFor(err), "invalid configuration", err)
	}
	if opts.References != "" {
		cfg.References = opts.References
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.ArchiveDir != "" {
		cfg.ArchiveDir = opts.ArchiveDir
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if cfg.Database != "" && opts.User == "" {
		return NewExitError(ExitCommandError, "--user is required when persisting analyses")
	}

	an, err := newAnalyzer(cfg, logger)
	if err != nil {
		return f.Fail(exitCodeFor(err), "invalid configuration", err)
	}

	sessions := make([]sessionFile, 0, len(paths))
	for _, p := range paths {
		s, err := loadSession(p, opts.Task)
		if err != nil {
			if GetExitCode(err) == ExitCommandError {
				return err
			}
			return f.Fail(ExitFailure, "session rejected", err)
		}
		if len(opts.Responses) > 0 {
			s.Input.Responses = opts.Responses
		}
		sessions = append(sessions, s)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	var st *store.Store
	if cfg.Database != "" {
		logger.Debug("opening database", "path", cfg.Database)
		st, err = store.OpenWith(cfg.Database, store.Options{Verify: opts.Verify})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		prior, err := st.ReadTaskRecords(ctx, opts.User)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read task records", err)
		}
		logger.Debug("loaded task records", "user", opts.User, "count", len(prior))
		for i := range sessions {
			sessions[i].Input.PriorRecords = prior
		}
	}

	inputs := make([]pipeline.Input, len(sessions))
	for i, s := range sessions {
		inputs[i] = s.Input
	}
	outs, err := an.AnalyzeBatch(ctx, inputs, cfg.Workers)
	if err != nil {
		if ctx.Err() != nil {
			return WrapExitError(ExitCommandError, "analysis interrupted", err)
		}
		return f.Fail(ExitFailure, "analysis failed", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = pipeline.UUIDv7Generator{}
	}

	summaries := make([]AnalysisSummary, len(sessions))
	for i, s := range sessions {
		out := outs[i]
		sum := AnalysisSummary{
			File:          s.Path,
			Session:       s.ID,
			Task:          s.Input.TaskID,
			Report:        out.Report,
			Validation:    out.Validation,
			Result:        out.Result,
			SessionDigest: out.SessionDigest,
			ResultDigest:  out.ResultDigest,
		}

		if cfg.ArchiveDir != "" {
			path, err := archive.Archive(s.ID, s.Kind, s.Raw, cfg.ArchiveDir)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to archive session", err)
			}
			logger.Info("archived session", "session", s.ID, "path", path)
			sum.Archive = path
		}

		if st != nil {
			sum.ID = ids.Generate()
			inserted, err := st.WriteAnalysis(ctx, store.Analysis{
				ID:            sum.ID,
				UserID:        opts.User,
				TaskID:        s.Input.TaskID,
				SessionDigest: out.SessionDigest,
				ResultDigest:  out.ResultDigest,
				Result:        out.Result,
				Validation:    out.Validation,
				Record:        out.Record,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to store analysis", err)
			}
			sum.Stored = inserted
			logger.Debug("stored analysis", "id", sum.ID, "inserted", inserted)
		}
		summaries[i] = sum
	}

	if opts.Format == "json" {
		return f.Success(summaries)
	}
	w := cmd.OutOrStdout()
	for i, sum := range summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSummaryText(w, sum, opts.Verbose)
	}
	return nil
}

// loadConfig returns the defaults, or the file at path over them.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newAnalyzer loads the reference table named by cfg and builds the pipeline.
func newAnalyzer(cfg config.Config, logger *slog.Logger) (*pipeline.Analyzer, error) {
	table, err := reference.Load(cfg.References)
	if err != nil {
		return nil, err
	}
	v, err := validator.New(table)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg.Features, cfg.Weights, v, cfg.Options, logger)
}

// signalContext derives a context from the command that is cancelled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func writeSummaryText(w io.Writer, s AnalysisSummary, verbose bool) {
	res := s.Result
	task := s.Task
	if task == "" {
		task = "(features only)"
	}
	fmt.Fprintf(w, "%s  %s  tier=%s score=%.4f evidence=%d\n", s.Session, task, res.Tier, res.Score, res.TaskEvidence)

	if v := s.Validation; v != nil {
		verdict := "failed"
		if v.Passed {
			verdict = "passed"
		}
		fmt.Fprintf(w, "  validation: %s conformance=%.4f threshold=%.2f\n", verdict, v.Conformance, v.Threshold)
		for _, d := range v.Deviations {
			fmt.Fprintf(w, "  deviation: %s (%s)\n", d.Name, d.Severity)
		}
	}
	for _, c := range res.Rationale {
		fmt.Fprintf(w, "  rationale: %s value=%.4g amount=%+.4f\n", c.Dimension, c.Value, c.Amount)
	}
	for _, n := range res.Notes {
		fmt.Fprintf(w, "  note: %s\n", n)
	}
	if s.Report.Dropped > 0 || s.Report.Widened || s.Report.Clamped {
		fmt.Fprintf(w, "  capture: dropped=%d widened=%t clamped=%t\n", s.Report.Dropped, s.Report.Widened, s.Report.Clamped)
	}
	if s.ID != "" {
		state := "stored"
		if !s.Stored {
			state = "already stored"
		}
		fmt.Fprintf(w, "  %s: %s\n", state, s.ID)
	}
	if s.Archive != "" {
		fmt.Fprintf(w, "  archive: %s\n", s.Archive)
	}
	if verbose {
		fmt.Fprintf(w, "  session digest: %s\n  result digest: %s\n", s.SessionDigest, s.ResultDigest)
	}
}
