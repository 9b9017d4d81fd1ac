package commands

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/typegen"
)

var (
	generateEngines    []string
	generateTypeScript bool
	generateRoot       string
)

// GenerateCmd writes stub modules
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write stub modules for the configured engines",
	Long: `Write one stub module per bound class and one per engine under the
helpers root, so editors and the bundler can resolve script imports.

Engines default to generate.engines, or every registered engine when that
list is empty. Under on_error = "skip_engine" a failing engine is skipped
and the others are still written.

Examples:
  jsbind generate                          # Engines from jsbind.toml
  jsbind generate --engine SampleEngine    # One engine
  jsbind generate --typescript=false       # Untyped .js stubs
  jsbind generate --root Scripts/Helpers   # Override helpers root`,
	RunE: runGenerate,
}

// GenerateCheckCmd reports stale stubs
var GenerateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that committed stubs are up to date",
	Long: `Regenerate stubs into a temporary directory and compare them with the
helpers root. Nothing under the helpers root is modified.

Exits non-zero when a stub differs or is missing.`,
	RunE: runGenerateCheck,
}

func init() {
	GenerateCmd.PersistentFlags().StringSliceVarP(&generateEngines, "engine", "e", nil, "Engines to generate (default: generate.engines)")
	GenerateCmd.PersistentFlags().BoolVar(&generateTypeScript, "typescript", true, "Write typed .ts stubs (default: generate.typescript)")
	GenerateCmd.PersistentFlags().StringVar(&generateRoot, "root", "", "Helpers root (default: generate.helpers_root)")

	GenerateCmd.AddCommand(GenerateCheckCmd)
}

// generateConfig applies the generate flags on top of the project config
func generateConfig(cmd *cobra.Command) (*am.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if len(generateEngines) > 0 {
		cfg.Generate.Engines = generateEngines
	}
	if cmd.Flags().Changed("typescript") {
		cfg.Generate.TypeScript = generateTypeScript
	}
	if generateRoot != "" {
		cfg.Generate.HelpersRoot = generateRoot
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.ComponentLogger("typegen")

	roots, err := selectEngines(cfg.Generate.Engines, log)
	if err != nil {
		return err
	}

	g := typegen.FromConfig(cfg, log)
	res, err := g.Run(roots...)
	if res != nil {
		for _, m := range res.Modules {
			rel, relErr := filepath.Rel(g.Root(), m.Path)
			if relErr != nil {
				rel = m.Path
			}
			pterm.Success.Printfln("Generated %s", filepath.ToSlash(rel))
		}
	}
	if err != nil {
		return errors.Wrap(err, "stub generation failed")
	}
	pterm.Info.Printfln("%d modules under %s", len(res.Modules), g.Root())
	return nil
}

func runGenerateCheck(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.ComponentLogger("typegen")

	roots, err := selectEngines(cfg.Generate.Engines, log)
	if err != nil {
		return err
	}

	g := typegen.FromConfig(cfg, log)
	result, err := g.Check(roots...)
	if err != nil {
		return err
	}
	if result.UpToDate {
		pterm.Success.Println("Stubs are up to date")
		return nil
	}

	pterm.Warning.Println("Stubs are out of date:")
	for _, d := range result.Differences {
		pterm.Printfln("  %s", d)
	}
	return errors.WithHint(
		errors.Newf("%d stub modules differ from %s", len(result.Differences), g.Root()),
		"run `jsbind generate` and commit the result")
}
