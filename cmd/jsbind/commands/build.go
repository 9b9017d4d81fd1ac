package commands

import (
	"context"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/bundle"
	"github.com/teranos/jsbind/logger"
)

var (
	buildDev   bool
	buildWatch bool
)

// BuildCmd runs the bundler
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write bundler metadata and run the bundler",
	Long: `Write entry.json and output.json into the raw scripts root, mask helper
imports and stub exports, run the bundler and unmask again.

The bundler is invoked as:
  <build.command> <raw scripts root> <dev>

When the bundler does not finish within build.timeout_seconds the sources
stay masked; run ` + "`jsbind unmask`" + ` once it has exited.

Examples:
  jsbind build              # One build
  jsbind build --dev        # Development build
  jsbind build --watch      # Rebuild when scripts or jsbind.toml change`,
	RunE: runBuild,
}

func init() {
	BuildCmd.Flags().BoolVar(&buildDev, "dev", false, "Development build (default: build.dev)")
	BuildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "Rebuild when raw scripts change")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	devSet := cmd.Flags().Changed("dev")
	if devSet {
		cfg.Build.Dev = buildDev
	}
	log := logger.ComponentLogger("bundle")

	if !buildWatch {
		return buildOnce(cmd.Context(), bundle.New(bundle.Options{Config: cfg, Logger: log}))
	}
	return watch(cmd.Context(), cfg, devSet, log)
}

func buildOnce(ctx context.Context, p *bundle.Pipeline) error {
	spinner, _ := pterm.DefaultSpinner.Start("Bundling " + p.RawRoot())
	report, err := p.Build(ctx)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Build failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Success("Build finished")
	}
	pterm.Info.Printfln("%d scripts, %d masked, %s", report.Scripts, report.Masked, report.Duration.Round(time.Millisecond))
	return nil
}

// watch rebuilds on script changes. A reloaded jsbind.toml replaces the
// pipeline used by the next build and triggers one.
func watch(ctx context.Context, cfg *am.Config, devSet bool, log *zap.SugaredLogger) error {
	var mu sync.Mutex
	pipeline := bundle.New(bundle.Options{Config: cfg, Logger: log})
	root := pipeline.RawRoot()

	w, err := bundle.NewWatcher(root, cfg.Generate.TypeScript,
		cfg.Watch.Debounce(), cfg.Watch.MinInterval(),
		func(ctx context.Context) error {
			mu.Lock()
			p := pipeline
			mu.Unlock()
			_, err := p.Build(ctx)
			return err
		}, log)
	if err != nil {
		return err
	}

	if path := projectConfig(); path != "" {
		cw, err := am.NewConfigWatcher(path, log)
		if err != nil {
			return err
		}
		cw.OnReload(func(next *am.Config) error {
			if devSet {
				next.Build.Dev = buildDev
			}
			p := bundle.New(bundle.Options{Config: next, Logger: log})
			if p.RawRoot() != root {
				log.Warnw("Raw scripts root changed, restart to watch it", logger.FieldPath, p.RawRoot())
			}
			mu.Lock()
			pipeline = p
			mu.Unlock()
			w.Trigger()
			return nil
		})
		cw.Start()
		defer cw.Stop()
	}

	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", root)
	w.Trigger()
	return w.Run(ctx)
}
