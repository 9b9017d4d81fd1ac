package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/teranos/jsbind/errors"
)

// Load reads the configuration for the current working directory
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve working directory")
	}
	return LoadFrom(wd)
}

// LoadFrom reads the configuration seen from dir: defaults, then the user
// config, then the first jsbind.toml found walking up from dir, then
// JSBIND_* environment variables.
func LoadFrom(dir string) (*Config, error) {
	v, project := NewViper(dir)

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if project != "" {
		cfg.Dir = filepath.Dir(project)
	} else {
		cfg.Dir = dir
	}
	return cfg, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path.
// Environment variables are not consulted.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", configPath)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	config.Dir = filepath.Dir(abs)
	return config, nil
}

// NewViper builds a Viper instance with defaults, config files and environment
// bindings for dir. It returns the project config path it merged, if any.
func NewViper(dir string) (*viper.Viper, string) {
	v := viper.New()

	v.SetEnvPrefix("JSBIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	project := FindProjectConfig(dir)
	for _, configPath := range configFiles(project) {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}
		// Later files override earlier ones key by key
		_ = v.MergeConfigMap(tempViper.AllSettings())
	}

	return v, project
}

// ConfigPaths returns the files consulted for dir, lowest precedence first
func ConfigPaths(dir string) []string {
	return configFiles(FindProjectConfig(dir))
}

func configFiles(project string) []string {
	var paths []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".jsbind", ConfigFileName))
	}
	if project != "" {
		paths = append(paths, project)
	}
	return paths
}

// FindProjectConfig searches for jsbind.toml by walking up from start.
// Returns the absolute path of the first one found, or empty string.
func FindProjectConfig(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
