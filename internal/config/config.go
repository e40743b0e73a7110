// Package config loads dirschema's own operator configuration (log
// level, metadata convention overrides, schema resolution base
// directories), grounded on avular-robotics-avular-packages'
// internal/cli config wiring: viper for YAML/JSON/env/flags, with an
// additional HCL code path using hashicorp/hcl/v2 directly since viper
// itself only bundles the legacy HCLv1 decoder.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/viper"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
)

const envPrefix = "DIRSCHEMA"

// Config is the operator-facing configuration surface: logging, the
// default metadata convention, and SchemaResolver base paths
// (SPEC_FULL.md §2.3).
type Config struct {
	LogLevel string `hcl:"log_level,optional" mapstructure:"log_level"`

	MetaFilePrefix string `hcl:"meta_file_prefix,optional" mapstructure:"meta_file_prefix"`
	MetaFileSuffix string `hcl:"meta_file_suffix,optional" mapstructure:"meta_file_suffix"`
	MetaPathPrefix string `hcl:"meta_path_prefix,optional" mapstructure:"meta_path_prefix"`
	MetaPathSuffix string `hcl:"meta_path_suffix,optional" mapstructure:"meta_path_suffix"`

	LocalBaseDir   string `hcl:"local_basedir,optional" mapstructure:"local_basedir"`
	RelativePrefix string `hcl:"relative_prefix,optional" mapstructure:"relative_prefix"`

	HistoryDB string `hcl:"history_db,optional" mapstructure:"history_db"`
}

// Default returns the zero-configuration baseline (spec.md §6 defaults).
func Default() *Config {
	return &Config{LogLevel: "info", MetaFileSuffix: "_meta.json"}
}

// MetaConvention projects the loaded config onto an api.MetaConvention.
func (c *Config) MetaConvention() api.MetaConvention {
	return api.MetaConvention{
		PathPrefix: c.MetaPathPrefix,
		PathSuffix: c.MetaPathSuffix,
		FilePrefix: c.MetaFilePrefix,
		FileSuffix: c.MetaFileSuffix,
	}
}

// Load reads configuration from explicitPath if given (dispatching to
// the HCL decoder for ".hcl" files), otherwise discovers
// "dirschema.{yaml,json,toml}" via viper, in both cases layering
// DIRSCHEMA_* environment variables on top.
func Load(explicitPath string) (*Config, error) {
	if strings.HasSuffix(explicitPath, ".hcl") {
		return loadHCL(explicitPath)
	}
	return loadViper(explicitPath)
}

func loadHCL(path string) (*Config, error) {
	cfg := Default()
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, fmt.Errorf("config: decode HCL file %q: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadViper(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"log_level", "meta_file_prefix", "meta_file_suffix",
		"meta_path_prefix", "meta_path_suffix", "local_basedir", "relative_prefix", "history_db"} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("log_level", "info")
	v.SetDefault("meta_file_suffix", "_meta.json")

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("dirschema")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dirschema")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// applyEnv layers DIRSCHEMA_* environment overrides onto an
// HCL-sourced config, so both code paths honor the same env surface.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"log_level", "meta_file_prefix", "meta_file_suffix",
		"meta_path_prefix", "meta_path_suffix", "local_basedir", "relative_prefix", "history_db"} {
		if v.IsSet(key) {
			setField(cfg, key, v.GetString(key))
		}
	}
}

func setField(cfg *Config, key, value string) {
	switch key {
	case "log_level":
		cfg.LogLevel = value
	case "meta_file_prefix":
		cfg.MetaFilePrefix = value
	case "meta_file_suffix":
		cfg.MetaFileSuffix = value
	case "meta_path_prefix":
		cfg.MetaPathPrefix = value
	case "meta_path_suffix":
		cfg.MetaPathSuffix = value
	case "local_basedir":
		cfg.LocalBaseDir = value
	case "relative_prefix":
		cfg.RelativePrefix = value
	case "history_db":
		cfg.HistoryDB = value
	}
}
