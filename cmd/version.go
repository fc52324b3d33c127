package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const develVersion = "(devel)"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ftqmap build version",
		Long: `Print the ftqmap module version, the commit it was built from and the Go
toolchain that built it. Artifacts record their run id, not the version, so
keep this output next to them when a mapping has to be reproduced.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("ftqmap", develVersion)
				return
			}

			for _, line := range versionLines(info) {
				cmd.Println(line)
			}
		},
	}
}

// versionLines renders the module version and the VCS stamp of info.
func versionLines(info *debug.BuildInfo) []string {
	version := info.Main.Version
	if version == "" {
		version = develVersion
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	lines := []string{"ftqmap " + version}

	if revision := settings["vcs.revision"]; revision != "" {
		if settings["vcs.modified"] == "true" {
			revision += " (modified)"
		}

		lines = append(lines, "commit "+revision)
	}

	if committed := settings["vcs.time"]; committed != "" {
		lines = append(lines, "committed "+committed)
	}

	return append(lines, "go "+info.GoVersion)
}
