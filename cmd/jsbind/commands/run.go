package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/engine"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/typegen"
)

var (
	runEngine  string
	runTimeout time.Duration
)

// RunCmd runs a script file against an engine
var RunCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script against an engine",
	Long: `Run a script file in a fresh engine. Helper imports are masked before
compiling, so scripts written against the generated stubs run unchanged.

When the script completes with a promise, run waits for it to settle and
prints the resolved value. Script console output goes to the log; use -v
to see it.

Examples:
  jsbind run main.js -v
  jsbind run main.js --engine SampleEngine --timeout 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	RunCmd.Flags().StringVarP(&runEngine, "engine", "e", "", "Engine to run against (default: first of generate.engines)")
	RunCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "Maximum run time, including pending promises")
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "read %s", args[0])
	}

	name := runEngine
	if name == "" && len(cfg.Generate.Engines) > 0 {
		name = cfg.Generate.Engines[0]
	}
	if name == "" {
		name = engineNames()[0]
	}
	log := logger.ComponentLogger("engine")
	roots, err := selectEngines([]string{name}, log)
	if err != nil {
		return err
	}

	e, err := engine.New(roots[0], engine.WithLogger(log), engine.WithPolicy(typegen.PolicyFor(cfg)))
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	v, err := e.RunDirectlyAndGetValue(ctx, string(src))
	if err != nil {
		return err
	}
	v, err = e.Await(ctx, v)
	if err != nil {
		return err
	}
	return printValue(cmd, v)
}

func printValue(cmd *cobra.Command, v any) error {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
