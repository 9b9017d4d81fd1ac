// Package am holds the jsbind project configuration ("I am").
//
// Configuration is loaded into a *Config value and passed explicitly to the
// generator, engine and build pipeline. There is no package-level cache.
package am

import (
	"path/filepath"
	"time"
)

// Config represents the jsbind project configuration
type Config struct {
	// Requires is an optional semantic version constraint on the jsbind binary
	Requires string         `mapstructure:"requires" toml:"requires,omitempty" json:"requires,omitempty" yaml:"requires,omitempty"`
	Generate GenerateConfig `mapstructure:"generate" toml:"generate" json:"generate" yaml:"generate"`
	Build    BuildConfig    `mapstructure:"build" toml:"build" json:"build" yaml:"build"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`

	// Dir is the directory of the project config file; relative paths resolve against it
	Dir string `mapstructure:"-" toml:"-" json:"-" yaml:"-"`
}

// GenerateConfig configures stub generation
type GenerateConfig struct {
	HelpersRoot   string   `mapstructure:"helpers_root" toml:"helpers_root" json:"helpers_root" yaml:"helpers_root"`       // Root directory for generated stub modules
	TypeScript    bool     `mapstructure:"typescript" toml:"typescript" json:"typescript" yaml:"typescript"`               // Typed (.ts) or untyped (.js) stubs
	Engines       []string `mapstructure:"engines" toml:"engines" json:"engines" yaml:"engines"`                           // Engine names to generate (empty = all registered)
	AsyncSuffix   string   `mapstructure:"async_suffix" toml:"async_suffix" json:"async_suffix" yaml:"async_suffix"`       // Method name suffix marking promise-returning methods
	BehaviourBase string   `mapstructure:"behaviour_base" toml:"behaviour_base" json:"behaviour_base" yaml:"behaviour_base"` // Host UI/behaviour base excluded from binding
	OnError       string   `mapstructure:"on_error" toml:"on_error" json:"on_error" yaml:"on_error"`                       // fail_fast or skip_engine
}

// BuildConfig configures the external bundler invocation
type BuildConfig struct {
	RawScriptsRoot   string `mapstructure:"raw_scripts_root" toml:"raw_scripts_root" json:"raw_scripts_root" yaml:"raw_scripts_root"`         // Scripts fed to the bundler
	BuiltScriptsRoot string `mapstructure:"built_scripts_root" toml:"built_scripts_root" json:"built_scripts_root" yaml:"built_scripts_root"` // Bundler output directory
	Dev              bool   `mapstructure:"dev" toml:"dev" json:"dev" yaml:"dev"`                                                             // Development build flag passed to the bundler
	Command          string `mapstructure:"command" toml:"command" json:"command" yaml:"command"`                                             // Bundler command line (shell-quoted)
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`             // Bounded wait for the bundler (default: 3600)
}

// WatchConfig configures `jsbind build --watch`
type WatchConfig struct {
	DebounceMS         int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`                            // Quiet period before a rebuild
	MinIntervalSeconds int `mapstructure:"min_interval_seconds" toml:"min_interval_seconds" json:"min_interval_seconds" yaml:"min_interval_seconds"` // Minimum spacing between rebuilds
}

// LogConfig configures logging output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Theme string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"` // everforest, gruvbox
}

// Generation failure policies
const (
	OnErrorFailFast   = "fail_fast"
	OnErrorSkipEngine = "skip_engine"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// ConfigFileName is the project config file searched for upward from the working directory
const ConfigFileName = "jsbind.toml"

// Path resolves p against the config directory unless it is already absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Timeout returns the bundler wait as a duration
func (b BuildConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Debounce returns the watch quiet period as a duration
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// MinInterval returns the minimum spacing between rebuilds
func (w WatchConfig) MinInterval() time.Duration {
	return time.Duration(w.MinIntervalSeconds) * time.Second
}
