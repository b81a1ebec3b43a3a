// Package config loads and validates the docpipe pipeline configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

// Config represents one pipeline definition: which loaders produce which
// documents, the ordered preprocessor chain, and the renderer.
type Config struct {
	Title         string        `yaml:"title,omitempty"`
	Loaders       []Loader      `yaml:"loaders"`
	Preprocessors []PluginRef   `yaml:"preprocessors,omitempty"`
	Renderer      PluginRef     `yaml:"renderer"`
	Output        OutputConfig  `yaml:"output,omitempty"`
	Daemon        *DaemonConfig `yaml:"daemon,omitempty"`
}

// PluginRef selects a registered plugin by name and carries its
// per-instance options.
type PluginRef struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
}

// Loader binds one loader plugin to the module specifiers it loads.
// Reserved `$$` names may appear in Modules; the driver routes those to the
// renderer instead of this loader.
type Loader struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
	Modules []string       `yaml:"modules"`
}

// OutputConfig controls where rendered artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// DaemonConfig enables continuous mode: rebuilds on file changes and on a
// fixed interval, with optional metrics and event publishing.
type DaemonConfig struct {
	Watch       []string `yaml:"watch,omitempty"`        // directories to watch for changes
	Interval    string   `yaml:"interval,omitempty"`     // periodic rebuild interval, e.g. "10m"
	DebounceMS  int      `yaml:"debounce_ms,omitempty"`  // quiet period after a change burst
	MetricsAddr string   `yaml:"metrics_addr,omitempty"` // Prometheus /metrics listen address
	NATSURL     string   `yaml:"nats_url,omitempty"`     // build event publishing
	Subject     string   `yaml:"subject,omitempty"`      // NATS subject for build events
	EventStore  string   `yaml:"event_store,omitempty"`  // SQLite path for the build event log
}

// IntervalDuration parses the configured rebuild interval. A zero duration
// means periodic rebuilds are disabled.
func (d *DaemonConfig) IntervalDuration() (time.Duration, error) {
	if d == nil || d.Interval == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(d.Interval)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "invalid daemon interval")
	}
	return dur, nil
}

// Load reads, expands and validates a configuration file. A `.env` file in
// the working directory is loaded first so that `${VAR}` references in the
// YAML can resolve against it.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath))
		}
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to read config file")
	}

	// Expand environment variables in the YAML content before decoding.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Documentation"
	}
	if c.Renderer.Name == "" {
		c.Renderer.Name = "markdown"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./build/docs"
	}
	if c.Daemon != nil {
		if c.Daemon.DebounceMS == 0 {
			c.Daemon.DebounceMS = 500
		}
		if c.Daemon.Subject == "" {
			c.Daemon.Subject = "docpipe.builds"
		}
	}
}

// Validate checks structural soundness of the configuration. Option values
// are not validated here; each plugin interprets its own options.
func (c *Config) Validate() error {
	if len(c.Loaders) == 0 {
		return errors.ConfigError("at least one loader must be configured")
	}
	for i, l := range c.Loaders {
		if l.Name == "" {
			return errors.ConfigError(fmt.Sprintf("loader %d has no name", i))
		}
		if len(l.Modules) == 0 {
			return errors.ConfigError(fmt.Sprintf("loader %q has no modules", l.Name))
		}
		for _, m := range l.Modules {
			if m == "" {
				return errors.ConfigError(fmt.Sprintf("loader %q has an empty module specifier", l.Name))
			}
		}
	}
	for i, p := range c.Preprocessors {
		if p.Name == "" {
			return errors.ConfigError(fmt.Sprintf("preprocessor %d has no name", i))
		}
	}
	if c.Renderer.Name == "" {
		return errors.ConfigError("renderer must be configured")
	}
	if c.Daemon != nil {
		if _, err := c.Daemon.IntervalDuration(); err != nil {
			return err
		}
	}
	return nil
}
