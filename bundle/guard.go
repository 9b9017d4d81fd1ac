package bundle

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/mask"
)

// StartFunc reports the pid of a started bundler
type StartFunc func(pid int)

// WithMasked masks files in place, records a recovery lock in lockDir and
// runs fn. Files are unmasked and the lock removed when fn returns or
// panics, unless fn fails with errors.ErrBundlerTimeout: the bundler may
// still be reading the sources, so they stay masked for `jsbind unmask`.
func WithMasked(lockDir string, files []string, log *zap.SugaredLogger, fn func(started StartFunc) error) (err error) {
	log = logger.OrComponent(log, "bundle")

	if existing, lerr := ReadLock(lockDir); lerr == nil {
		return errors.WithHint(
			errors.Wrapf(errors.ErrAlreadyMasked, "build %s started %s", existing.ID, existing.Started.Format(time.RFC3339)),
			"run `jsbind unmask` to restore the sources first")
	} else if !errors.IsNotFoundError(lerr) {
		return lerr
	}

	pending, err := prepareMask(files)
	if err != nil {
		return err
	}
	l := &Lock{ID: uuid.NewString(), Started: time.Now().UTC(), Files: make([]string, 0, len(pending))}
	for _, f := range pending {
		l.Files = append(l.Files, f.path)
	}
	if err := writeLock(lockDir, l); err != nil {
		return err
	}
	log = log.With(logger.FieldRunID, l.ID)

	masked, err := writeMasked(pending)
	if err != nil {
		return errors.CombineErrors(err, restore(lockDir, masked))
	}
	log.Debugw("Masked sources", logger.FieldCount, len(masked))

	keep := false
	defer func() {
		r := recover()
		if keep && r == nil {
			log.Warnw("Leaving sources masked", logger.FieldPID, l.PID, logger.FieldCount, len(masked))
			return
		}
		if rerr := restore(lockDir, masked); rerr != nil {
			log.Errorw("Failed to unmask sources", logger.FieldError, rerr)
			err = errors.CombineErrors(err, rerr)
		} else {
			log.Debugw("Unmasked sources", logger.FieldCount, len(masked))
		}
		if r != nil {
			panic(r)
		}
	}()

	err = fn(func(pid int) {
		l.PID = pid
		if werr := writeLock(lockDir, l); werr != nil {
			log.Warnw("Failed to record bundler pid", logger.FieldPID, pid, logger.FieldError, werr)
		}
	})
	if errors.Is(err, errors.ErrBundlerTimeout) {
		keep = true
		return errors.WithHint(err, "run `jsbind unmask` once the bundler has exited")
	}
	return err
}

type pendingFile struct {
	path   string
	masked string
}

// prepareMask computes the masked text of every file that masking changes
func prepareMask(files []string) ([]pendingFile, error) {
	var pending []pendingFile
	for _, p := range files {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", p)
		}
		src := string(data)
		if out := mask.File(p, src); out != src {
			pending = append(pending, pendingFile{path: p, masked: out})
		}
	}
	return pending, nil
}

// writeMasked writes masked texts, returning the paths written so far
func writeMasked(pending []pendingFile) ([]string, error) {
	written := make([]string, 0, len(pending))
	for _, f := range pending {
		if err := os.WriteFile(f.path, []byte(f.masked), am.DefaultFilePermissions); err != nil {
			return written, errors.Wrapf(err, "write masked %s", f.path)
		}
		written = append(written, f.path)
	}
	return written, nil
}

// restore unmasks files and removes the lock. The lock stays when a file
// cannot be restored.
func restore(lockDir string, files []string) error {
	if err := unmaskFiles(files); err != nil {
		return err
	}
	return removeLock(lockDir)
}

// unmaskFiles restores every masked file, continuing past failures
func unmaskFiles(files []string) error {
	var errs error
	for _, p := range files {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "read %s", p))
			continue
		}
		src := string(data)
		if !mask.IsMaskedFile(p, src) {
			continue
		}
		if err := os.WriteFile(p, []byte(mask.UnmaskFile(p, src)), am.DefaultFilePermissions); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "write %s", p))
		}
	}
	return errs
}
