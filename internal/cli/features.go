package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/graphomotor/internal/capture"
	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/ir"
)

// FeaturesOptions holds flags for the features command.
type FeaturesOptions struct {
	*RootOptions
	Config string
}

// FeaturesResult is the features command output.
type FeaturesResult struct {
	File     string           `json:"file"`
	Report   capture.Report   `json:"report"`
	Features ir.FeatureVector `json:"features"`
}

// NewFeaturesCommand creates the features command.
func NewFeaturesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeaturesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "features <session>",
		Short: "Print the feature vector of a session",
		Long: `Normalize a captured session and print its feature vector without
validating a task or computing a risk tier.

Examples:
  graphomotor features clock.json
  graphomotor features page.rm --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to configuration YAML")

	return cmd
}

func runFeatures(opts *FeaturesOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return f.Fail(exitCodeFor(err), "invalid configuration", err)
	}

	s, err := loadSession(path, "")
	if err != nil {
		if GetExitCode(err) == ExitCommandError {
			return err
		}
		return f.Fail(ExitFailure, "session rejected", err)
	}

	session, report, err := capture.Normalize(s.Input.Strokes, s.Input.Canvas, s.Input.ElapsedMs)
	if err != nil {
		return f.Fail(ExitFailure, "session rejected", fmt.Errorf("%s: %w", path, err))
	}
	fv := features.Extract(session, cfg.Features)

	if opts.Format == "json" {
		return f.Success(FeaturesResult{File: path, Report: report, Features: fv})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  vocabulary=%s strokes=%d points=%d\n", s.ID, fv.Version, len(session.Strokes), session.PointCount())
	if fv.Degenerate {
		fmt.Fprintln(w, "  degenerate: fewer than two points, motion features are 0")
	}
	for _, key := range features.Vocabulary() {
		fmt.Fprintf(w, "  %-26s %.6g\n", key, fv.Get(key))
	}
	return nil
}
