package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/bundle"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/mask"
)

var unmaskForce bool

// MaskCmd masks files in place
var MaskCmd = &cobra.Command{
	Use:   "mask <files...>",
	Short: "Mask helper imports and stub exports in place",
	Long: `Comment out imports of dot-prefixed helper modules. In helper files
(.Name.js, .Name.ts) exports are masked too. Masking is reversible with
` + "`jsbind unmask <files...>`" + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		changed, err := transformFiles(args, mask.File)
		for _, p := range changed {
			pterm.Success.Printfln("Masked %s", p)
		}
		return err
	},
}

// UnmaskCmd restores masked files
var UnmaskCmd = &cobra.Command{
	Use:   "unmask [files...]",
	Short: "Restore masked sources",
	Long: `Restore files masked by ` + "`jsbind mask`" + ` or by an interrupted build.

Without arguments the recovery lock in the raw scripts root is used: every
file it names is unmasked and the lock is removed. Recovery refuses while
the recorded bundler process is still running unless --force is given.

Examples:
  jsbind unmask                # Recover after a timed-out build
  jsbind unmask --force        # Recover even if the bundler still runs
  jsbind unmask main.js        # Unmask one file`,
	RunE: runUnmask,
}

func init() {
	UnmaskCmd.Flags().BoolVarP(&unmaskForce, "force", "f", false, "Unmask even if the recorded bundler is still running")
}

func runUnmask(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		changed, err := transformFiles(args, func(path, src string) string {
			if !mask.IsMaskedFile(path, src) {
				return src
			}
			return mask.UnmaskFile(path, src)
		})
		for _, p := range changed {
			pterm.Success.Printfln("Unmasked %s", p)
		}
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	raw := cfg.Path(cfg.Build.RawScriptsRoot)
	files, err := bundle.Recover(raw, unmaskForce, logger.ComponentLogger("bundle"))
	if errors.IsNotFoundError(err) {
		pterm.Info.Printfln("Nothing to recover in %s", raw)
		return nil
	}
	if err != nil {
		return err
	}
	for _, p := range files {
		pterm.Success.Printfln("Unmasked %s", p)
	}
	return nil
}

// transformFiles rewrites each file with fn and returns the files that
// changed. Failures do not stop the remaining files.
func transformFiles(paths []string, fn func(path, src string) string) ([]string, error) {
	var changed []string
	var errs error
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "read %s", p))
			continue
		}
		src := string(data)
		out := fn(p, src)
		if out == src {
			continue
		}
		if err := os.WriteFile(p, []byte(out), am.DefaultFilePermissions); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "write %s", p))
			continue
		}
		changed = append(changed, p)
	}
	return changed, errs
}
