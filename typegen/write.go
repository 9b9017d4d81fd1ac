package typegen

import (
	"os"
	"path/filepath"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// Write writes every module of res, creating parent directories as needed.
// Under fail_fast the first write error stops the pass; under skip_engine
// the remaining modules are still written and errors are combined.
func (g *Generator) Write(res *Result) error {
	if res == nil {
		return nil
	}

	var errs error
	for _, m := range res.Modules {
		if err := writeModule(m); err != nil {
			g.log.Errorw("Failed to write stub module",
				logger.FieldPath, m.Path,
				logger.FieldError, err)
			if g.onError != am.OnErrorSkipEngine {
				return err
			}
			errs = errors.CombineErrors(errs, err)
			continue
		}
		g.log.Infow("Generated stub module",
			logger.FieldType, m.Type.FullName(),
			logger.FieldPath, m.Path)
	}
	return errs
}

func writeModule(m *Module) error {
	dir := filepath.Dir(m.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	if err := os.WriteFile(m.Path, []byte(m.Text), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", m.Path)
	}
	return nil
}
