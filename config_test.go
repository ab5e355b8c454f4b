package cvrp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvrp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_limit: 90.5\nthreads: 3\nengine: bnb\nexport_model: true\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, ENGINE_BNB, cfg.Engine)
	assert.True(t, cfg.ExportModel)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, LOG_INFO, cfg.LogLevel)
	assert.Equal(t, 90*time.Second+500*time.Millisecond, cfg.TimeLimitDuration())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: [1\n"), 0644))
	_, err = LoadConfig(path)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Field)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"time_limit": func(c *Config) { c.TimeLimit = 0 },
		"output_dir": func(c *Config) { c.OutputDir = "" },
		"threads":    func(c *Config) { c.Threads = -2 },
		"engine":     func(c *Config) { c.Engine = "glpk" },
	}
	for field, breakIt := range cases {
		t.Run(field, func(t *testing.T) {
			cfg := DefaultConfig()
			breakIt(cfg)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}
