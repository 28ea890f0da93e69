package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/displayname/pkg/transformer"
	"github.com/gnana997/displayname/pkg/util"
	"github.com/gnana997/displayname/pkg/workspace"
)

// defaultConfigPath is read relative to the working directory.
const defaultConfigPath = ".displayname/config.yaml"

const envPrefix = "DISPLAYNAME_"

// Config holds every setting the commands use.
//
// Sources apply in order, later ones winning:
//  1. built-in defaults
//  2. .displayname/config.yaml (or --config)
//  3. DISPLAYNAME_* environment variables, with .env loaded first
//  4. command-line flags
type Config struct {
	Include         []string `yaml:"include"`
	Exclude         []string `yaml:"exclude"`
	ModuleLevelOnly bool     `yaml:"module_level_only"`
	AllowErrors     bool     `yaml:"allow_errors"`
	Workers         int      `yaml:"workers"`
	LogLevel        string   `yaml:"log_level"`
	LogFormat       string   `yaml:"log_format"`
	DebounceMs      int      `yaml:"debounce_ms"`
	CacheSize       int      `yaml:"cache_size"`
	MCPLog          string   `yaml:"mcp_log"`
	Addr            string   `yaml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Include:    workspace.DefaultInclude,
		Exclude:    workspace.DefaultExclude,
		LogLevel:   string(util.LevelInfo),
		LogFormat:  string(util.FormatText),
		DebounceMs: 200,
		Addr:       ":8080",
	}
}

// applyFile merges a YAML file. A missing file is not an error unless
// required is set.
func (c *Config) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv merges DISPLAYNAME_* variables. Lists are comma separated.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	var errs []error
	parseBool := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	parseInt := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	parseString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	parseList := func(key string, dst *[]string) {
		if v, ok := get(key); ok {
			*dst = splitList(v)
		}
	}

	parseList("INCLUDE", &c.Include)
	parseList("EXCLUDE", &c.Exclude)
	parseBool("MODULE_LEVEL_ONLY", &c.ModuleLevelOnly)
	parseBool("ALLOW_ERRORS", &c.AllowErrors)
	parseInt("WORKERS", &c.Workers)
	parseString("LOG_LEVEL", &c.LogLevel)
	parseString("LOG_FORMAT", &c.LogFormat)
	parseInt("DEBOUNCE_MS", &c.DebounceMs)
	parseInt("CACHE_SIZE", &c.CacheSize)
	parseString("MCP_LOG", &c.MCPLog)
	parseString("ADDR", &c.Addr)
	return errors.Join(errs...)
}

// applyFlags merges the flags set on the command line.
func (c *Config) applyFlags(cmd *cobra.Command) error {
	fs := cmd.Flags()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if fs.Changed("include") {
		v, err := fs.GetStringSlice("include")
		collect(err)
		c.Include = v
	}
	if fs.Changed("exclude") {
		v, err := fs.GetStringSlice("exclude")
		collect(err)
		c.Exclude = v
	}
	if fs.Changed("module-level-only") {
		v, err := fs.GetBool("module-level-only")
		collect(err)
		c.ModuleLevelOnly = v
	}
	if fs.Changed("allow-errors") {
		v, err := fs.GetBool("allow-errors")
		collect(err)
		c.AllowErrors = v
	}
	if fs.Changed("workers") {
		v, err := fs.GetInt("workers")
		collect(err)
		c.Workers = v
	}
	if fs.Changed("log-level") {
		v, err := fs.GetString("log-level")
		collect(err)
		c.LogLevel = v
	}
	if fs.Changed("log-format") {
		v, err := fs.GetString("log-format")
		collect(err)
		c.LogFormat = v
	}
	if fs.Changed("debounce") {
		v, err := fs.GetInt("debounce")
		collect(err)
		c.DebounceMs = v
	}
	if fs.Changed("cache-size") {
		v, err := fs.GetInt("cache-size")
		collect(err)
		c.CacheSize = v
	}
	if fs.Changed("mcp-log") {
		v, err := fs.GetString("mcp-log")
		collect(err)
		c.MCPLog = v
	}
	if fs.Changed("addr") {
		v, err := fs.GetString("addr")
		collect(err)
		c.Addr = v
	}
	return errors.Join(errs...)
}

func (c *Config) validate() error {
	if _, err := util.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := util.ParseLogFormat(c.LogFormat); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	return nil
}

// loadConfig resolves the configuration for cmd. dir is the directory
// holding .env and the default config file.
func loadConfig(cmd *cobra.Command, dir string) (*Config, error) {
	cfg := defaultConfig()

	path := filepath.Join(dir, defaultConfigPath)
	required := false
	if fs := cmd.Flags(); fs.Changed("config") {
		p, err := fs.GetString("config")
		if err != nil {
			return nil, err
		}
		path, required = p, true
	}
	if err := cfg.applyFile(path, required); err != nil {
		return nil, err
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(cmd); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) engineOptions() transformer.Options {
	return transformer.Options{
		ModuleLevelOnly: c.ModuleLevelOnly,
		AllowErrors:     c.AllowErrors,
		CacheSize:       c.CacheSize,
	}
}

func (c *Config) workspaceOptions(mode workspace.Mode) workspace.Options {
	return workspace.Options{
		Include:    c.Include,
		Exclude:    c.Exclude,
		Mode:       mode,
		Workers:    util.GetOptimalPoolSizeWithOverride(c.Workers),
		DebounceMs: c.DebounceMs,
	}
}

func (c *Config) loggerConfig() util.LoggerConfig {
	cfg := util.DefaultLoggerConfig()
	// validate has already checked both values.
	cfg.Level, _ = util.ParseLogLevel(c.LogLevel)
	cfg.Format, _ = util.ParseLogFormat(c.LogFormat)
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
