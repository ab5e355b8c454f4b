package cvrp

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// TimeLimit is the wall-clock limit of the search in seconds.
	TimeLimit   float64 `yaml:"time_limit"`
	OutputDir   string  `yaml:"output_dir"`
	Threads     int     `yaml:"threads"`
	Engine      string  `yaml:"engine"`
	LogLevel    int     `yaml:"log_level"`
	ExportModel bool    `yaml:"export_model"`
	MetricsFile string  `yaml:"metrics_file"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeLimit: 3600,
		OutputDir: ".",
		Engine:    ENGINE_BNB,
		LogLevel:  LOG_INFO,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: "cannot be parsed", Err: err}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TimeLimit <= 0 {
		return configErrorf("time_limit", "must be positive, got %g", c.TimeLimit)
	}
	if c.OutputDir == "" {
		return configErrorf("output_dir", "must not be empty")
	}
	if c.Threads < 0 {
		return configErrorf("threads", "must not be negative, got %d", c.Threads)
	}
	c.Engine = strings.ToUpper(c.Engine)
	if c.Engine != ENGINE_BNB && c.Engine != ENGINE_GUROBI {
		return configErrorf("engine", "must be %s or %s, got %q", ENGINE_BNB, ENGINE_GUROBI, c.Engine)
	}
	return nil
}

func (c *Config) TimeLimitDuration() time.Duration {
	return time.Duration(c.TimeLimit * float64(time.Second))
}
