package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofileio/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gofileio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base-dir: "`+dir+`"
override-files: true
dir-exists-error: true
skip-unreadable: true
max-parallel: 2
progress: NEVER
log-level: debug
metrics-file: out/metrics.prom
`), 0644))

	v := viper.New()
	v.Set("config", path)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.True(t, cfg.FileProperties.OverrideFiles)
	assert.False(t, cfg.FileProperties.FileExistsError)
	assert.True(t, cfg.FileProperties.DirExistsError)
	assert.True(t, cfg.SkipUnreadable)
	assert.False(t, cfg.DetectCycles)
	assert.Equal(t, 2, cfg.MaxParallel)
	assert.Equal(t, "never", cfg.Progress)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out/metrics.prom", cfg.MetricsFile)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GOFILEIO_FILE_EXISTS_ERROR", "true")
	t.Setenv("GOFILEIO_MAX_PARALLEL", "7")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.True(t, cfg.FileProperties.FileExistsError)
	assert.Equal(t, 7, cfg.MaxParallel)
}

func TestLoadConfigKeepsInvalidParallelism(t *testing.T) {
	for _, n := range []int{0, -5} {
		v := viper.New()
		v.Set("max-parallel", n)

		cfg, err := LoadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, n, cfg.MaxParallel)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeConfig, errors.KindOf(err))
	}
}

func TestLoadConfigWritesDummy(t *testing.T) {
	for _, name := range []string{"nested/cfg.yaml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			v := viper.New()
			v.Set("config", path)

			_, err := LoadConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "dummy config created")
			assert.Equal(t, errors.ErrorTypeConfig, errors.KindOf(err))

			// The dummy is itself a loadable config
			cfg, err := LoadConfig(v)
			require.NoError(t, err)
			assert.Equal(t, 4, cfg.MaxParallel)
			assert.Equal(t, "auto", cfg.Progress)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "zero parallel", mutate: func(c *Config) { c.MaxParallel = 0 }, errMsg: "max-parallel"},
		{name: "bad progress", mutate: func(c *Config) { c.Progress = "sometimes" }, errMsg: "progress"},
		{name: "missing base", mutate: func(c *Config) { c.BaseDir = filepath.Join(file, "nope") }, errMsg: "base-dir"},
		{name: "base is a file", mutate: func(c *Config) { c.BaseDir = file }, errMsg: "not a directory"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, errors.ErrorTypeConfig, errors.KindOf(err))
		})
	}
}
