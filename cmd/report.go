package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

var reportFileFlag string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the per-series QC report",
		Long: `Join the active manifest rows with the stored mapping and write a tab
separated QC report with participant, session, modality, task and run columns.
Field-map series are left out. The report is written to
` + domain.DefaultQCReportFile + ` in the output directory unless --report-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, err := manifestPath()
			if err != nil {
				return err
			}

			return workflow.Report(cmd.Context(), domain.ReportArgs{
				Manifest:   manifest,
				Artifacts:  artifactsDir(),
				ReportFile: m.Path(viper.GetString(reportFileConfigKey)),
			})
		},
	}

	cmd.Flags().StringVar(&reportFileFlag, reportFileFlagName, "", "QC report destination")
	bindFlagToConfig(cmd.Flags().Lookup(reportFileFlagName), reportFileConfigKey)

	return cmd
}
