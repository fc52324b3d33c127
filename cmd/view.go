package cmd

import (
	"github.com/spf13/cobra"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the presence summary of the last mapping run",
		Long:  "Load the artifacts in the output directory and print their presence summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Artifacts: artifactsDir()})
		},
	}
}
