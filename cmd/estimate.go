package cmd

import (
	"github.com/spf13/cobra"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
)

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Count subjects and sessions and estimate conversion size",
		Long: `Count the unique subjects and sessions of the active manifest rows and
estimate the disk space their BIDS conversion needs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, err := manifestPath()
			if err != nil {
				return err
			}

			return workflow.Estimate(cmd.Context(), domain.EstimateArgs{Manifest: manifest})
		},
	}
}
