package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/version"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage jsbind configuration",
	Long: `am - Manage jsbind configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (JSBIND_* prefix, e.g. JSBIND_BUILD_DEV)
3. Project config (./jsbind.toml, searched up directories)
4. User config (~/.jsbind/jsbind.toml)
5. Default values

Examples:
  jsbind am show                    # Show current configuration
  jsbind am show --format json      # Show configuration in JSON format
  jsbind am get build.command       # Get specific config value
  jsbind am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., generate.helpers_root, watch.debounce_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long: `Validate the configuration, report keys the project config sets that
jsbind does not know, and check the requires constraint against this binary.`,
	RunE: runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadRawConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# jsbind configuration\n%s", data)

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# jsbind configuration\n%s", data)

	default:
		return errors.Wrapf(errors.ErrInvalidRequest, "unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	v, _ := am.NewViper(configDir())
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	}
	if !v.IsSet(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadRawConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	if path := projectConfig(); path != "" {
		unknown, err := am.UndecodedKeys(path)
		if err != nil {
			return err
		}
		for _, k := range unknown {
			pterm.Warning.Printfln("Unknown key %s in %s", k, path)
		}
	}

	if err := cfg.CheckRequires(version.Get().SemVer()); err != nil {
		return err
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	pterm.Println("Configuration cascade (later overrides earlier):")
	pterm.Println("  1. [DEFAULT]  Built-in defaults")

	paths := am.ConfigPaths(configDir())
	if configPath != "" {
		paths = []string{configPath}
	}
	for i, p := range paths {
		if _, err := os.Stat(p); err != nil {
			pterm.Printfln("  %d. [MISSING]  %s", i+2, p)
			continue
		}
		pterm.Printfln("  %d. [FILE]     %s", i+2, p)
	}
	pterm.Printfln("  %d. [ENV]      JSBIND_* environment variables", len(paths)+2)

	if projectConfig() == "" {
		pterm.Info.Printfln("No %s found; relative paths resolve against %s", am.ConfigFileName, configDir())
	}
	return nil
}

// loadRawConfig loads configuration without validating it
func loadRawConfig() (*am.Config, error) {
	if configPath != "" {
		return am.LoadFromFile(configPath)
	}
	return am.Load()
}

func configDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
