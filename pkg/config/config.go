// Package config loads the optional .freeze.yaml build configuration.
//
// Precedence, lowest first: built-in defaults, the configuration file,
// FREEZE_* environment variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/usefultrainer/freeze/pkg/build"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/envutil"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var configLog = logger.New("config:config")

// ToolConfig describes one external tool.
type ToolConfig struct {
	Command    string   `yaml:"command,omitempty"`
	Args       []string `yaml:"args,omitempty"`
	MinVersion string   `yaml:"min_version,omitempty"`
}

// Config is the build configuration.
type Config struct {
	Input       string     `yaml:"input,omitempty"`
	OutputDir   string     `yaml:"output_dir,omitempty"`
	Icon        string     `yaml:"icon,omitempty"`
	DistDir     string     `yaml:"dist_dir,omitempty"`
	Obfuscator  ToolConfig `yaml:"obfuscator,omitempty"`
	Packager    ToolConfig `yaml:"packager,omitempty"`
	CheckStatus bool       `yaml:"check_status"`
	Pause       *bool      `yaml:"pause,omitempty"`
}

// Default returns the configuration matching the fixed paths of the build.
func Default() *Config {
	pause := true
	return &Config{
		Input:     constants.DefaultInputPath,
		OutputDir: constants.DefaultOutputDir,
		Icon:      constants.DefaultIconPath,
		DistDir:   constants.DefaultDistDir,
		Obfuscator: ToolConfig{
			Command: constants.DefaultObfuscator,
			Args:    append([]string(nil), constants.DefaultObfuscatorArgs...),
		},
		Packager: ToolConfig{
			Command: constants.DefaultPackager,
		},
		Pause: &pause,
	}
}

// ShouldPause reports whether the build waits for acknowledgement.
func (c *Config) ShouldPause() bool {
	return c.Pause == nil || *c.Pause
}

// Load reads and validates the configuration file at path. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	configLog.Printf("Loading configuration from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := validateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := Default()
	cfg.merge(&fileCfg)
	configLog.Printf("Loaded configuration: input=%s, output_dir=%s, obfuscator=%s, packager=%s",
		cfg.Input, cfg.OutputDir, cfg.Obfuscator.Command, cfg.Packager.Command)
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to the defaults
// otherwise. Any other error, including validation failures, is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		configLog.Printf("No config at %s, using defaults", path)
		return Default(), nil
	}
	return nil, err
}

func (c *Config) merge(other *Config) {
	if other.Input != "" {
		c.Input = other.Input
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if other.Icon != "" {
		c.Icon = other.Icon
	}
	if other.DistDir != "" {
		c.DistDir = other.DistDir
	}
	c.Obfuscator.merge(other.Obfuscator)
	c.Packager.merge(other.Packager)
	c.CheckStatus = c.CheckStatus || other.CheckStatus
	if other.Pause != nil {
		pause := *other.Pause
		c.Pause = &pause
	}
}

// merge replaces the command and its leading args together when the command
// changes: args written for one tool rarely make sense for another one.
func (t *ToolConfig) merge(other ToolConfig) {
	if other.Command != "" && other.Command != t.Command {
		t.Command = other.Command
		t.Args = nil
	}
	if other.Args != nil {
		t.Args = append([]string(nil), other.Args...)
	}
	if other.MinVersion != "" {
		t.MinVersion = other.MinVersion
	}
}

// ApplyEnv overrides cfg with the FREEZE_* environment variables.
func (c *Config) ApplyEnv() {
	c.Input = envutil.GetStringFromEnv(constants.EnvInput, c.Input, configLog)
	c.OutputDir = envutil.GetStringFromEnv(constants.EnvOutputDir, c.OutputDir, configLog)
	c.Icon = envutil.GetStringFromEnv(constants.EnvIcon, c.Icon, configLog)

	if cmd := envutil.GetStringFromEnv(constants.EnvObfuscator, "", configLog); cmd != "" && cmd != c.Obfuscator.Command {
		c.Obfuscator.Command = cmd
		c.Obfuscator.Args = nil
	}
	if cmd := envutil.GetStringFromEnv(constants.EnvPackager, "", configLog); cmd != "" && cmd != c.Packager.Command {
		c.Packager.Command = cmd
		c.Packager.Args = nil
	}

	c.CheckStatus = envutil.GetBoolFromEnv(constants.EnvCheckStatus, c.CheckStatus, configLog)
	noPause := envutil.GetBoolFromEnv(constants.EnvNoPause, !c.ShouldPause(), configLog)
	pause := !noPause
	c.Pause = &pause
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# freeze build configuration. Run 'freeze plan' to preview the commands.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	configLog.Printf("Wrote configuration to %s (%d bytes)", path, len(data))
	return nil
}

// BuildOptions converts the configuration into orchestrator options.
func (c *Config) BuildOptions() build.Options {
	opts := build.DefaultOptions()
	opts.InputPath = c.Input
	opts.OutputDir = c.OutputDir
	opts.IconPath = c.Icon
	opts.DistDir = c.DistDir
	opts.Obfuscator = build.Tool{Command: c.Obfuscator.Command, Args: append([]string(nil), c.Obfuscator.Args...)}
	opts.Packager = build.Tool{Command: c.Packager.Command, Args: append([]string(nil), c.Packager.Args...)}
	opts.CheckStatus = c.CheckStatus
	return opts
}
