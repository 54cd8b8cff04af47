package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/law-makers/marketscan/internal/utils/headers"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Target and engine
	BaseURL   string            `yaml:"base_url"`
	Engine    string            `yaml:"engine"`
	UserAgent string            `yaml:"user_agent"`
	Proxy     string            `yaml:"proxy"`
	Headers   map[string]string `yaml:"headers"`

	// Timing
	Timeout       time.Duration `yaml:"timeout"`
	Sync          string        `yaml:"sync"`
	NavigateWait  time.Duration `yaml:"navigate_wait"`
	SubmitWait    time.Duration `yaml:"submit_wait"`
	TypeWait      time.Duration `yaml:"type_wait"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Linger        time.Duration `yaml:"linger"`
	RetryAttempts int           `yaml:"retry_attempts"`

	// Browser
	Headless     bool   `yaml:"headless"`
	ChromePath   string `yaml:"chrome_path"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`

	// Output
	OutputDir     string `yaml:"output_dir"`
	Format        string `yaml:"format"`
	DebugFile     string `yaml:"debug_file"`
	DebugMarkdown bool   `yaml:"debug_markdown"`
	MetricsFile   string `yaml:"metrics_file"`

	Selectors Selectors `yaml:"selectors"`
}

// Selectors lists the CSS selector chain for each lookup role, tried in order
type Selectors struct {
	SearchInput []string `yaml:"search_input"`
	Listings    []string `yaml:"listings"`
	Name        []string `yaml:"name"`
	Price       []string `yaml:"price"`
	Link        []string `yaml:"link"`
}

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		BaseURL:       DefaultBaseURL,
		Engine:        DefaultEngine,
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultTimeout,
		Sync:          DefaultSync,
		NavigateWait:  DefaultNavigateWait,
		SubmitWait:    DefaultSubmitWait,
		TypeWait:      DefaultTypeWait,
		PollInterval:  DefaultPollInterval,
		Linger:        DefaultLinger,
		RetryAttempts: DefaultRetryAttempts,
		Headless:      DefaultHeadless,
		WindowWidth:   DefaultWindowWidth,
		WindowHeight:  DefaultWindowHeight,
		OutputDir:     DefaultOutputDir,
		Format:        DefaultFormat,
		DebugFile:     DefaultDebugFile,
		Selectors:     DefaultSelectors(),
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	path := os.Getenv("MARKETSCAN_CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path. Keys absent from the file keep their current value.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"MARKETSCAN_BASE_URL":     &c.BaseURL,
		"MARKETSCAN_ENGINE":       &c.Engine,
		"MARKETSCAN_SYNC":         &c.Sync,
		"MARKETSCAN_USER_AGENT":   &c.UserAgent,
		"MARKETSCAN_PROXY":        &c.Proxy,
		"MARKETSCAN_CHROME_PATH":  &c.ChromePath,
		"MARKETSCAN_OUTPUT_DIR":   &c.OutputDir,
		"MARKETSCAN_FORMAT":       &c.Format,
		"MARKETSCAN_METRICS_FILE": &c.MetricsFile,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("MARKETSCAN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MARKETSCAN_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("MARKETSCAN_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MARKETSCAN_HEADLESS: %w", err)
		}
		c.Headless = b
	}
	return nil
}

// applyFlags copies every flag the user set explicitly
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	strs := map[string]*string{
		"base-url":     &c.BaseURL,
		"engine":       &c.Engine,
		"sync":         &c.Sync,
		"user-agent":   &c.UserAgent,
		"proxy":        &c.Proxy,
		"chrome-path":  &c.ChromePath,
		"output-dir":   &c.OutputDir,
		"format":       &c.Format,
		"debug-file":   &c.DebugFile,
		"metrics-file": &c.MetricsFile,
	}
	for name, dst := range strs {
		if changed(name) {
			*dst = flags.Lookup(name).Value.String()
		}
	}

	durs := map[string]*time.Duration{
		"timeout": &c.Timeout,
		"linger":  &c.Linger,
	}
	for name, dst := range durs {
		if !changed(name) {
			continue
		}
		d, err := time.ParseDuration(flags.Lookup(name).Value.String())
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = d
	}

	if changed("header") {
		raw, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		parsed, err := headers.Parse(raw)
		if err != nil {
			return err
		}
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(parsed))
		}
		for k, v := range parsed {
			c.Headers[k] = v
		}
	}
	if changed("headed") && flags.Lookup("headed").Value.String() == "true" {
		c.Headless = false
	}
	if changed("debug-markdown") {
		c.DebugMarkdown = flags.Lookup("debug-markdown").Value.String() == "true"
	}
	if changed("json") && flags.Lookup("json").Value.String() == "true" {
		c.JSONLog = true
	}
	if changed("quiet") && flags.Lookup("quiet").Value.String() == "true" {
		c.LogLevel = "disabled"
	}
	if changed("verbose") && flags.Lookup("verbose").Value.String() == "true" {
		c.LogLevel = "debug"
	}
	return nil
}
