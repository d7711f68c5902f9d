package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"gofileio/pkg/config"
	"gofileio/pkg/errors"
	"gofileio/pkg/fileio"
	"gofileio/pkg/types"
)

var (
	Version   string
	BuildDate string
	GoVersion string
	Stream    string
)

// app is the state shared by every subcommand once configuration is loaded
type app struct {
	v   *viper.Viper
	cfg *config.Config
	fio *fileio.FileIO
	fs  types.FS
}

// setupFileLogger configures the file logger
func setupFileLogger(logPath string, lvl zerolog.Level) error {
	dir := filepath.Dir(logPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to create log directory")
		}
	}
	fileWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log.Logger = zerolog.New(fileWriter).Level(lvl).With().
		Timestamp().
		Str("Version", Version).
		Str("Stream", Stream).
		Logger()
	return nil
}

// parseLogLevel converts string to zerolog level
func parseLogLevel(s string) zerolog.Level {
	if s == "" {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			s = env
		} else {
			return zerolog.InfoLevel
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "0":
		return zerolog.TraceLevel
	case "debug", "1":
		return zerolog.DebugLevel
	case "info", "2":
		return zerolog.InfoLevel
	case "warn", "warning", "3":
		return zerolog.WarnLevel
	case "error", "4":
		return zerolog.ErrorLevel
	case "fatal", "5":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewRootCmd creates the root command using the host filesystem
func NewRootCmd() *cobra.Command {
	return newRootCmd(types.OSFS())
}

func newRootCmd(fsys types.FS) *cobra.Command {
	a := &app{v: viper.New(), fs: fsys}

	cmd := &cobra.Command{
		Use:   "gofileio",
		Short: "Filesystem helpers and breadth-first file finder",
		Long: `Read, write, create, delete, list and find files relative to a base directory.
Use --config for setup.

Examples:

  # Find the shallowest go.mod below ./services
  gofileio find services go.mod

  # Search for several files at once, four at a time
  gofileio find . Makefile Dockerfile README.md --max-parallel 4

  # Write a file, replacing it if it already exists
  gofileio write notes/todo.txt "ship it" --override-files

  # Show all available environment variables
  gofileio --env-info

Run 'gofileio --help' for a full list of options.
`,
		Version: fmt.Sprintf(`
Version: %s
Stream: %s
Build Date: %s
Go Version: %s`, Version, Stream, BuildDate, GoVersion),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envInfo, _ := cmd.Flags().GetBool("env-info"); envInfo {
				printEnvInfo(cmd)
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.Flags().Bool("env-info", false, "Display possible environment variables and their current values")
	setupFlags(cmd)
	bindFlags(a.v, cmd)

	cmd.AddCommand(
		newFindCmd(a),
		newListCmd(a),
		newDirsCmd(a),
		newCatCmd(a),
		newWriteCmd(a),
		newTouchCmd(a),
		newMkdirCmd(a),
		newRmCmd(a),
		newRmdirCmd(a),
		newScriptCmd(a),
		newJSONCmd(a),
		newGlobCmd(a),
		newResolveCmd(a),
	)

	return cmd
}

// setupFlags defines the persistent flags shared by all subcommands
func setupFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Config file path (yaml/json)")
	f.String("base-dir", "", "Directory relative paths resolve against (default: working directory)")
	f.Bool("override-files", false, "Overwrite files that already exist")
	f.Bool("file-exists-error", false, "Fail when a file already exists; also surfaces delete failures")
	f.Bool("dir-exists-error", false, "Fail when a directory already exists")
	f.Bool("skip-unreadable", false, "Skip directories that cannot be listed instead of failing the search")
	f.Bool("detect-cycles", false, "Never search the same directory twice")
	f.Int("max-parallel", 4, "Max concurrent searches")
	f.String("progress", "auto", "Progress bars for find: auto, always, never")
	f.String("log-file", "logs/gofileio.log", "Path to log file (rotated)")
	f.String("log-level", "", "Log level (trace/debug/info/warn/error or 0..5)")
	f.String("metrics-file", "", "Write Prometheus search metrics to this path (find only)")
}

// bindFlags binds command line flags to viper
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	for _, name := range []string{
		"config",
		"base-dir",
		"override-files",
		"file-exists-error",
		"dir-exists-error",
		"skip-unreadable",
		"detect-cycles",
		"max-parallel",
		"progress",
		"log-file",
		"log-level",
		"metrics-file",
	} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}
}

// setup loads configuration, configures logging and builds the FileIO
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "configuration validation failed")
	}

	lvl := parseLogLevel(cfg.LogLevel)
	if err := setupFileLogger(cfg.LogFile, lvl); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to setup logger")
	}

	fio, err := fileio.New(a.fs, cfg.BaseDir,
		fileio.WithFileProperties(cfg.FileProperties),
		fileio.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.fio = fio

	log.Info().
		Str("command", cmd.Name()).
		Strs("args", args).
		Str("baseDir", fio.Resolver().Base()).
		Bool("overrideFiles", cfg.FileProperties.OverrideFiles).
		Bool("fileExistsError", cfg.FileProperties.FileExistsError).
		Bool("dirExistsError", cfg.FileProperties.DirExistsError).
		Bool("skipUnreadable", cfg.SkipUnreadable).
		Bool("detectCycles", cfg.DetectCycles).
		Int("maxParallel", cfg.MaxParallel).
		Str("logLevel", lvl.String()).
		Msg("starting gofileio")
	return nil
}

// printEnvInfo prints environment variable information
func printEnvInfo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	prefix := strings.ToUpper(config.EnvPrefix) + "_"
	fmt.Fprintf(out, "Possible Environment Variables (prefix: %s) and Current Values:\n", prefix)
	for _, key := range config.EnvKeys() {
		val := os.Getenv(prefix + key)
		if val == "" {
			val = "<not set>"
		}
		fmt.Fprintf(out, "  %s%s=%s\n", prefix, key, val)
	}
}
