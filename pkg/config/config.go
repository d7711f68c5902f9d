package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"gofileio/pkg/errors"
	"gofileio/pkg/types"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig
const EnvPrefix = "gofileio"

// Config holds all configuration for gofileio
type Config struct {
	BaseDir string // empty means the working directory

	FileProperties types.FileProperties

	// Search behaviour
	SkipUnreadable bool
	DetectCycles   bool
	MaxParallel    int
	Progress       string // auto, always, never

	// Logging options
	LogFile  string
	LogLevel string // 0..5 or names

	MetricsFile string // empty disables export
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseDir:        "",
		FileProperties: types.DefaultFileProperties(),
		SkipUnreadable: false,
		DetectCycles:   false,
		MaxParallel:    4,
		Progress:       "auto",
		LogFile:        "logs/gofileio.log",
		LogLevel:       "info",
		MetricsFile:    "",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MaxParallel <= 0 {
		return errors.ConfigErrorf("max-parallel must be greater than 0 (got %d)", c.MaxParallel)
	}
	switch c.Progress {
	case "auto", "always", "never":
	default:
		return errors.ConfigErrorf("progress must be one of auto, always, never (got %q)", c.Progress)
	}
	if c.BaseDir != "" {
		info, err := os.Stat(c.BaseDir)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "base-dir").WithPath(c.BaseDir)
		}
		if !info.IsDir() {
			return errors.ConfigErrorf("base-dir %s is not a directory", c.BaseDir)
		}
	}
	return nil
}

// LoadConfig loads configuration from the config file, environment and
// flags bound to v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	cfgFile := v.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			if err := writeDummyConfig(cfgFile); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create dummy config").WithPath(cfgFile)
			}
			return nil, errors.ConfigErrorf("dummy config created at %s; edit and re-run", cfgFile)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "read config").WithPath(cfgFile)
		}
	}

	v.SetDefault("max-parallel", cfg.MaxParallel)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg.BaseDir = v.GetString("base-dir")
	cfg.FileProperties.OverrideFiles = v.GetBool("override-files")
	cfg.FileProperties.FileExistsError = v.GetBool("file-exists-error")
	cfg.FileProperties.DirExistsError = v.GetBool("dir-exists-error")
	cfg.SkipUnreadable = v.GetBool("skip-unreadable")
	cfg.DetectCycles = v.GetBool("detect-cycles")
	cfg.MaxParallel = v.GetInt("max-parallel")
	cfg.Progress = strings.ToLower(strings.TrimSpace(v.GetString("progress")))
	cfg.LogFile = v.GetString("log-file")
	cfg.LogLevel = v.GetString("log-level")
	cfg.MetricsFile = v.GetString("metrics-file")

	// Apply defaults for empty values; an explicit max-parallel is left to Validate
	if cfg.Progress == "" {
		cfg.Progress = "auto"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "logs/gofileio.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// EnvKeys lists the configuration keys that can be set from the environment
func EnvKeys() []string {
	return []string{
		"BASE_DIR",
		"OVERRIDE_FILES",
		"FILE_EXISTS_ERROR",
		"DIR_EXISTS_ERROR",
		"SKIP_UNREADABLE",
		"DETECT_CYCLES",
		"MAX_PARALLEL",
		"PROGRESS",
		"LOG_FILE",
		"LOG_LEVEL",
		"METRICS_FILE",
	}
}

const dummyYAML = `# gofileio configuration (dummy values)

base-dir: ""                              # Directory relative paths resolve against; empty = working directory

# Exists / override policy
override-files: false                     # Overwrite files that already exist
file-exists-error: false                  # Fail when a file already exists (also surfaces delete errors)
dir-exists-error: false                   # Fail when a directory already exists

# Search
skip-unreadable: false                    # Skip directories that cannot be listed instead of failing
detect-cycles: false                      # Never search the same directory twice
max-parallel: 4                           # Concurrent searches when several targets are given
progress: "auto"                          # auto, always, never

# Logging
log-file: "logs/gofileio.log"             # Rotated JSON logs path
log-level: "2"                            # 0 trace, 1 debug, 2 info, 3 warn, 4 error
metrics-file: ""                          # Prometheus text output for find; empty disables
`

const dummyJSON = `{
  "base-dir": "",
  "override-files": false,
  "file-exists-error": false,
  "dir-exists-error": false,
  "skip-unreadable": false,
  "detect-cycles": false,
  "max-parallel": 4,
  "progress": "auto",
  "log-file": "logs/gofileio.log",
  "log-level": "2",
  "metrics-file": ""
}
`

// writeDummyConfig creates a dummy configuration file
func writeDummyConfig(path string) error {
	dummy := dummyYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		dummy = dummyJSON
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(dummy), 0644)
}
