// Package cmd provides the root command and CLI setup for ftqmap.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ftqmap.dev/pkg/ftqmap/internal/adapter"
	"ftqmap.dev/pkg/ftqmap/internal/controller"
	"ftqmap.dev/pkg/ftqmap/internal/domain"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

var fsAdapter adapter.LayoutFSAdapter
var manifestAdapter adapter.ManifestAdapter
var artifactStore adapter.ArtifactStore
var workflow domain.Workflow
var ui controller.UI

// errManifestRequired is returned by commands that read a QC manifest when
// none was configured.
var errManifestRequired = errors.New("a QC manifest is required (--qc or " + envPrefix + "_QC)")

var outputFlag string
var qcFlag string
var logFileFlag string
var verboseFlag bool

func init() {
	table, err := namingTable()
	cobra.CheckErr(err)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalLayoutFSAdapter()
	manifestAdapter = adapter.NewLocalManifestAdapter()
	artifactStore = adapter.NewArtifactStore()
	workflow = domain.NewWorkflow(
		fsAdapter,
		manifestAdapter,
		artifactStore,
		ui,
		table,
	)

	rootCmd.AddCommand(
		newMapCmd(),
		newSubsetCmd(),
		newReportCmd(),
		newEstimateCmd(),
		newViewCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
}

const rootLongDescription = `ftqmap maps ABCD fast-track QC series to the BIDS files a conversion is
expected to produce, checks which of them exist under a rawdata directory and
keeps the mapping for subsetting and QC reporting.

Series identifiers have the form SUBJECT_SESSION_SERIESTYPE_TIMESTAMP and are
read from the ftq_series_id column of the QC manifest given with --qc.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ftqmap",
		Short:        "Map ABCD fast-track QC series to BIDS files",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&outputFlag, outputFlagName, "o", defaultArtifactsDir, "directory for mapping artifacts")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(&qcFlag, qcFlagName, "q", "", "QC manifest (abcd_fastqc01 file)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(qcFlagName), qcFlagName)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, defaultLogFilename, "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute runs the root command and exits with status 1 on failure.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func artifactsDir() m.Path {
	return m.Path(viper.GetString(outputFlagName))
}

func manifestPath() (m.Path, error) {
	qc := strings.TrimSpace(viper.GetString(qcFlagName))
	if qc == "" {
		return "", errManifestRequired
	}

	return m.Path(qc), nil
}

// absPath resolves p against the working directory. Symlinks written into a
// subset tree have to point at absolute sources.
func absPath(p string) (m.Path, error) {
	if p == "" {
		return "", nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}

	return m.Path(abs), nil
}
