package am

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/teranos/jsbind/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Generate.HelpersRoot == "" {
		return errors.New("generate.helpers_root cannot be empty")
	}
	if c.Generate.AsyncSuffix == "" {
		return errors.WithHint(
			errors.New("generate.async_suffix cannot be empty"),
			"an empty suffix would classify every script-value method as asynchronous")
	}
	switch c.Generate.OnError {
	case OnErrorFailFast, OnErrorSkipEngine:
	default:
		return errors.Newf("generate.on_error must be %q or %q, got %q",
			OnErrorFailFast, OnErrorSkipEngine, c.Generate.OnError)
	}

	// Bounded wait: zero would never let the bundler finish
	if c.Build.TimeoutSeconds <= 0 {
		return errors.Newf("build.timeout_seconds must be > 0, got %d", c.Build.TimeoutSeconds)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MinIntervalSeconds < 0 {
		return errors.Newf("watch.min_interval_seconds must be >= 0, got %d", c.Watch.MinIntervalSeconds)
	}

	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			return errors.Wrapf(err, "requires %q is not a valid version constraint", c.Requires)
		}
	}

	return nil
}

// CheckRequires reports whether binaryVersion satisfies the requires constraint.
// Development builds ("dev") and an empty constraint always pass.
func (c *Config) CheckRequires(binaryVersion string) error {
	if c.Requires == "" || binaryVersion == "" || binaryVersion == "dev" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return errors.Wrapf(err, "requires %q is not a valid version constraint", c.Requires)
	}
	v, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(err, "binary version %q is not a semantic version", binaryVersion)
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.Newf("jsbind %s does not satisfy requires %q", binaryVersion, c.Requires),
			"install a jsbind release matching %s", c.Requires)
	}
	return nil
}

// UndecodedKeys strictly decodes a config file and returns keys that do not
// map onto any Config field (typically typos).
func UndecodedKeys(configPath string) ([]string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var shape Config
	md, err := toml.Decode(string(data), &shape)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}
