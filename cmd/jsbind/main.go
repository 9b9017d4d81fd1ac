package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/cmd/jsbind/commands"
	"github.com/teranos/jsbind/logger"
)

var rootCmd = &cobra.Command{
	Use:   "jsbind",
	Short: "jsbind - script bridge between host types and JavaScript",
	Long: `jsbind - binds host types into an embedded JavaScript interpreter.

jsbind generates the stub modules scripts import, drives the external
bundler with helper imports masked, and runs scripts against an engine.

Available commands:
  generate - Write stub modules for the configured engines
  build    - Write bundler metadata and run the bundler
  mask     - Mask helper imports and stub exports in place
  unmask   - Restore masked sources
  run      - Run a script against an engine
  am       - Manage jsbind configuration ("I am")
  version  - Show version information

Examples:
  jsbind generate              # Write stubs under generate.helpers_root
  jsbind generate check        # Fail when committed stubs are stale
  jsbind build --watch         # Rebuild on every script change
  jsbind unmask                # Recover after an interrupted build
  jsbind run main.js -v        # Run a script, logging its console`,
	SilenceUsage:      true,
	PersistentPreRunE: commands.InitLogger,
}

func init() {
	commands.RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.BuildCmd)
	rootCmd.AddCommand(commands.MaskCmd)
	rootCmd.AddCommand(commands.UnmaskCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
