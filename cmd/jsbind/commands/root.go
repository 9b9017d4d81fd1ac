// Package commands implements the jsbind CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/version"
)

var (
	configPath string
	verbosity  int
	logJSON    bool
)

// RegisterGlobalFlags adds the flags every command understands
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project config file (default: nearest "+am.ConfigFileName+")")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
}

// InitLogger initializes the global logger from the verbosity flags
func InitLogger(cmd *cobra.Command, args []string) error {
	if err := logger.InitializeWithLevel(logJSON, logger.VerbosityToLevel(verbosity)); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// loadConfig loads and validates the project configuration. The [log]
// section is applied to the global logger.
func loadConfig() (*am.Config, error) {
	var cfg *am.Config
	var err error
	if configPath != "" {
		cfg, err = am.LoadFromFile(configPath)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	if err := cfg.CheckRequires(version.Get().SemVer()); err != nil {
		return nil, err
	}

	logger.SetTheme(cfg.Log.Theme)
	if cfg.Log.JSON && !logger.JSONOutput {
		if err := logger.InitializeWithLevel(true, logger.VerbosityToLevel(verbosity)); err != nil {
			return nil, errors.Wrap(err, "failed to initialize logger")
		}
	}
	return cfg, nil
}

// projectConfig returns the config file in effect, or "" when only defaults apply
func projectConfig() string {
	if configPath != "" {
		return configPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return am.FindProjectConfig(wd)
}
