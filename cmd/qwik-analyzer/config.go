package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thejackshelton/qwik-analyzer/pkg/runner"
)

// ProjectConfig holds the contents of .qwik-analyzer.yaml.
type ProjectConfig struct {
	Version   string   `yaml:"version"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	MaxDepth  int      `yaml:"max_depth"`
	Debounce  int      `yaml:"debounce_ms"`
}

// loadProjectConfig reads .qwik-analyzer.yaml from the current directory.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(".qwik-analyzer.yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveScanConfig applies the fallback chain for discovery globs:
//  1. Globs from .qwik-analyzer.yaml, when present
//  2. Built-in defaults
func resolveScanConfig(cfg *ProjectConfig) runner.ScanConfig {
	scan := runner.DefaultScanConfig()
	if cfg == nil {
		return scan
	}
	if len(cfg.Include) > 0 {
		scan.Include = cfg.Include
	}
	if len(cfg.Exclude) > 0 {
		scan.Exclude = cfg.Exclude
	}
	return scan
}

// resolveLogLevel returns the log level to use: flag value first, then
// the project config, then "info".
func resolveLogLevel(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return "info"
}
