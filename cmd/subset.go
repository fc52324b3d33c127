package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
)

var subsetTypesFlag []string
var subsetOutputDirFlag string
var subsetInputDirFlag string
var goodQCOnlyFlag bool
var intendedForOnlyFlag bool

func newSubsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subset --types TYPE[,TYPE] [TYPE...]",
		Short: "Select series by datatype and build a subset",
		Long: `Select the mapped series of the given datatypes and write their manifest rows
to OUTPUT_DIR.abcd_fastqc01.txt. With --input-dir, the files of the selected
series are symlinked from that BIDS tree into the output directory.

Datatypes can be given comma-separated (-t anat,func), by repeating the flag
(-t anat -t func) or space-separated after it (-t anat func).

With --intended-for-only, field maps are kept only when their JSON sidecar
under --input-dir lists IntendedFor targets.

Datatypes: ` + strings.Join(domain.DatatypeNames(), ", "),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := manifestPath()
			if err != nil {
				return err
			}

			outputDir, err := absPath(subsetOutputDirFlag)
			if err != nil {
				return err
			}

			inputDir, err := absPath(subsetInputDirFlag)
			if err != nil {
				return err
			}

			// Space-separated types after the first -t arrive as arguments.
			types := append(append([]string(nil), subsetTypesFlag...), args...)

			return workflow.Subset(cmd.Context(), domain.SubsetArgs{
				Manifest:        manifest,
				Artifacts:       artifactsDir(),
				OutputDir:       outputDir,
				InputDir:        inputDir,
				Types:           types,
				GoodQCOnly:      viper.GetBool(goodQCOnlyConfigKey),
				IntendedForOnly: viper.GetBool(intendedForOnlyConfigKey),
			})
		},
	}

	configureSubsetFlags(cmd)

	return cmd
}

func configureSubsetFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&subsetTypesFlag, typesFlagName, "t", nil, "datatypes to select (comma-separated or repeated)")
	cmd.Flags().StringVar(&subsetOutputDirFlag, outputDirFlagName, "", "subset output directory")
	cmd.Flags().StringVar(&subsetInputDirFlag, inputDirFlagName, "", "BIDS directory to link subset files from")

	cmd.Flags().BoolVar(&goodQCOnlyFlag, goodQCOnlyFlagName, false, "keep only series with ftq_usable=1")
	bindFlagToConfig(cmd.Flags().Lookup(goodQCOnlyFlagName), goodQCOnlyConfigKey)

	cmd.Flags().BoolVar(&intendedForOnlyFlag, intendedForOnlyFlagName, false, "keep only field maps whose sidecar lists IntendedFor targets")
	bindFlagToConfig(cmd.Flags().Lookup(intendedForOnlyFlagName), intendedForOnlyConfigKey)

	cobra.CheckErr(cmd.MarkFlagRequired(typesFlagName))
	cobra.CheckErr(cmd.MarkFlagRequired(outputDirFlagName))
}
