package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"ftqmap.dev/pkg/ftqmap/internal/domain"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "ftqmap"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName     = "output"
	qcFlagName         = "qc"
	logFileFlagName    = "log-file"
	verboseFlagName    = "verbose"
	rawdataFlagName    = "rawdata"
	typesFlagName      = "types"
	outputDirFlagName  = "output-dir"
	inputDirFlagName   = "input-dir"
	goodQCOnlyFlagName = "good-qc-only"
	reportFileFlagName = "report-file"

	intendedForOnlyFlagName = "intended-for-only"

	rawdataConfigKey         = "map.rawdata"
	goodQCOnlyConfigKey      = "subset.good_qc_only"
	intendedForOnlyConfigKey = "subset.intended_for_only"
	reportFileConfigKey      = "report.file"
	seriesConfigKey          = "layout.series"

	defaultArtifactsDir = ".ftqmap"
	defaultRawdataDir   = "rawdata"

	envPrefix = "FTQMAP"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".ftqmap.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultArtifactsDir)
	viper.SetDefault(qcFlagName, "")
	viper.SetDefault(rawdataConfigKey, defaultRawdataDir)
	viper.SetDefault(goodQCOnlyConfigKey, false)
	viper.SetDefault(intendedForOnlyConfigKey, false)
	viper.SetDefault(reportFileConfigKey, "")
	viper.SetDefault(seriesConfigKey, []m.SeriesTemplate{})

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	readConfigFile(os.Stderr)
}

// readConfigFile loads ftqmap.yaml when present. It runs before the logger is
// configured, so a file that cannot be used is reported on w.
func readConfigFile(w io.Writer) {
	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return
	}

	fmt.Fprintf(w, "warning: ignoring %s: %v\n", configFileName, err)
}

// namingTable returns the default naming table with the series templates of
// the layout.series config key merged over it.
func namingTable() (m.NamingTable, error) {
	var extra []m.SeriesTemplate
	if err := viper.UnmarshalKey(seriesConfigKey, &extra); err != nil {
		return m.NamingTable{}, fmt.Errorf("read %s: %w", seriesConfigKey, err)
	}

	for _, tmpl := range extra {
		if err := tmpl.Validate(); err != nil {
			return m.NamingTable{}, fmt.Errorf("%s: %w", seriesConfigKey, err)
		}
	}

	return domain.DefaultNamingTable().With(extra...), nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
//
// It logs at the configured level, or at Debug when verbose is true.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
