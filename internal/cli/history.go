package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	User     string
	Task     string // optional - filter to one task
}

// HistoryEntry is one stored analysis.
type HistoryEntry struct {
	Seq          int64       `json:"seq"`
	ID           string      `json:"id"`
	Task         string      `json:"task,omitempty"`
	Tier         ir.RiskTier `json:"tier"`
	Score        float64     `json:"score"`
	TaskEvidence int         `json:"task_evidence"`
	Passed       *bool       `json:"passed,omitempty"`
	Verified     bool        `json:"verified"`
}

// HistoryResult holds the history output.
type HistoryResult struct {
	User     string                   `json:"user"`
	Analyses []HistoryEntry           `json:"analyses"`
	Records  []ir.CognitiveTaskRecord `json:"records"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses for a user",
		Long: `List the analyses and task records stored for a user, in the order
they were written.

Each stored result is re-hashed and compared with its recorded digest;
entries that do not match are reported as unverified.

Examples:
  graphomotor history --db ./graphomotor.db --user p-042
  graphomotor history --db ./graphomotor.db --user p-042 --task clock_circle --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.User, "user", "", "user to list (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Task, "task", "", "filter to one task ID")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	analyses, err := st.ReadAnalyses(ctx, opts.User, opts.Task)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read analyses", err)
	}
	records, err := st.ReadTaskRecords(ctx, opts.User)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read task records", err)
	}

	result := HistoryResult{
		User:     opts.User,
		Analyses: make([]HistoryEntry, 0, len(analyses)),
		Records:  records,
	}
	unverified := 0
	for _, a := range analyses {
		e := HistoryEntry{
			Seq:          a.Seq,
			ID:           a.ID,
			Task:         a.TaskID,
			Tier:         a.Result.Tier,
			Score:        a.Result.Score,
			TaskEvidence: a.Result.TaskEvidence,
			Verified:     store.VerifyAnalysis(a) == nil,
		}
		if a.Validation != nil {
			passed := a.Validation.Passed
			e.Passed = &passed
		}
		if !e.Verified {
			unverified++
		}
		result.Analyses = append(result.Analyses, e)
	}

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		writeHistoryText(cmd, result)
	}

	if unverified > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d stored result(s) do not match their digest", unverified))
	}
	return nil
}

func writeHistoryText(cmd *cobra.Command, h HistoryResult) {
	w := cmd.OutOrStdout()
	if len(h.Analyses) == 0 {
		fmt.Fprintf(w, "No analyses found for user: %s\n", h.User)
		return
	}

	fmt.Fprintf(w, "%-5s %-36s %-16s %-9s %8s %s\n", "SEQ", "ID", "TASK", "TIER", "SCORE", "STATUS")
	for _, e := range h.Analyses {
		task := e.Task
		if task == "" {
			task = "-"
		}
		status := ""
		if e.Passed != nil {
			status = "failed"
			if *e.Passed {
				status = "passed"
			}
		}
		if !e.Verified {
			status += " UNVERIFIED"
		}
		fmt.Fprintf(w, "%-5d %-36s %-16s %-9s %8.4f %s\n", e.Seq, e.ID, task, e.Tier, e.Score, status)
	}
	fmt.Fprintf(w, "\n%d analyses, %d task records\n", len(h.Analyses), len(h.Records))
}
