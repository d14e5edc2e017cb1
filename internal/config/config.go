// Package config loads msalign settings from defaults, a YAML config file,
// MSALIGN_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names, e.g.
// MSALIGN_OUTPUT_FORMAT for output.format.
const EnvPrefix = "MSALIGN"

// Config is the complete msalign configuration.
type Config struct {
	// Binary is the clustalo executable, a name looked up on PATH or a path.
	Binary string `mapstructure:"binary"`
	// TempDir is the parent of per-run workspaces (empty = system default).
	TempDir string `mapstructure:"temp_dir"`
	// Timeout bounds a single alignment run (0 = no limit).
	Timeout time.Duration `mapstructure:"timeout"`
	// Threads is passed to clustalo as --threads (0 = tool default).
	Threads int `mapstructure:"threads"`
	// FullMatrix disables the mbed approximation.
	FullMatrix bool `mapstructure:"full_matrix"`

	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
	File   string `mapstructure:"file"`   // empty = stderr
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"` // fasta | text | json | yaml
	Order  string `mapstructure:"order"`  // input | tree
	Wrap   int    `mapstructure:"wrap"`
	Color  bool   `mapstructure:"color"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Binary: "clustalo",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "fasta",
			Order:  "input",
			Wrap:   60,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("binary", d.Binary)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("threads", d.Threads)
	v.SetDefault("full_matrix", d.FullMatrix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.order", d.Output.Order)
	v.SetDefault("output.wrap", d.Output.Wrap)
	v.SetDefault("output.color", d.Output.Color)
}

// Init prepares v: defaults, environment binding and the config file.
// An explicit file must exist; the default file is optional.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the user's msalign config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "msalign")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".msalign"
	}
	return filepath.Join(home, ".config", "msalign")
}

// File returns the default config file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}
