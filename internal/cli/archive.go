package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/graphomotor/internal/archive"
)

// NewArchiveCommand creates the archive command group.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived raw captures",
	}
	cmd.AddCommand(newArchiveCatCommand(rootOpts))
	return cmd
}

func newArchiveCatCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file.zst>",
		Short: "Decompress an archived capture to stdout",
		Long: `Write the original bytes of an archived capture to stdout, so it can
be analyzed again:

  graphomotor archive cat ./archive/s1.json.zst > s1.json
  graphomotor analyze s1.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := archive.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load archive", err)
			}
			if _, err := cmd.OutOrStdout().Write(raw); err != nil {
				return WrapExitError(ExitCommandError, "failed to write capture", err)
			}
			return nil
		},
	}
}
