package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/risk"
)

// VocabResult lists the feature vocabulary and its default weights.
type VocabResult struct {
	Version  string                        `json:"version"`
	Features []string                      `json:"features"`
	Weights  map[string]risk.FeatureWeight `json:"weights"`
}

// NewVocabCommand creates the vocab command.
func NewVocabCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "Print the feature vocabulary",
		Long: `Print the versioned feature vocabulary produced by extraction, with
the default weight of each weighted feature. Weight tables must name this
vocabulary version.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			weights := risk.DefaultWeights().Features
			if rootOpts.Format == "json" {
				return f.Success(VocabResult{
					Version:  features.Version(),
					Features: features.Vocabulary(),
					Weights:  weights,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "vocabulary %s\n", features.Version())
			for _, key := range features.Vocabulary() {
				if fw, ok := weights[key]; ok {
					fmt.Fprintf(w, "  %-26s weight=%+.2f baseline=%g scale=%g\n", key, fw.Weight, fw.Baseline, fw.Scale)
					continue
				}
				fmt.Fprintf(w, "  %s\n", key)
			}
			return nil
		},
	}
}
