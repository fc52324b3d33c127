package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

var rawdataFlag string

const mapLongDescription = `Resolve every active series of the QC manifest to its expected BIDS files,
check them under the rawdata directory and write the mapping artifacts to the
output directory.

Next to the artifacts it writes:
  - ` + domain.RemovalListFile + `      session directories with incomplete series
  - ` + domain.PreConversionFile + `  manifest rows whose session is not converted yet
  - ` + domain.SubjectListFile + `                 subjects of those rows`

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map QC series to BIDS files and check their presence",
		Long:  mapLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, err := manifestPath()
			if err != nil {
				return err
			}

			return workflow.Map(cmd.Context(), domain.MapArgs{
				Manifest: manifest,
				Rawdata:  m.Path(viper.GetString(rawdataConfigKey)),
				Output:   artifactsDir(),
			})
		},
	}

	configureMapFlags(cmd)

	return cmd
}

func configureMapFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rawdataFlag, rawdataFlagName, "r", defaultRawdataDir, "BIDS rawdata directory to check")
	bindFlagToConfig(cmd.Flags().Lookup(rawdataFlagName), rawdataConfigKey)
}
