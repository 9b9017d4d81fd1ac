package bundle

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// Invocation describes one bundler run
type Invocation struct {
	// Command is the bundler command line, shell-quoted
	Command string
	// Workspace is the raw scripts root, passed as the first argument
	Workspace string
	// Dev is passed as the second argument ("true" or "false")
	Dev bool
	// Timeout bounds the wait for the bundler
	Timeout time.Duration
}

// Args returns the program and arguments of the invocation
func (inv Invocation) Args() ([]string, error) {
	words, err := shellquote.Split(inv.Command)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "bundler command %q: %v", inv.Command, err)
	}
	if len(words) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "bundler command is empty")
	}
	return append(words, filepath.ToSlash(inv.Workspace), strconv.FormatBool(inv.Dev)), nil
}

// Runner runs the bundler. started is called with the process id once the
// bundler is running.
type Runner interface {
	Run(ctx context.Context, inv Invocation, started StartFunc) error
}

// ExecRunner runs the bundler as a local process
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.SugaredLogger
}

// Run starts the bundler and waits up to inv.Timeout. On timeout the process
// is left running and errors.ErrBundlerTimeout is returned. Cancelling ctx
// kills the process.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation, started StartFunc) error {
	log := logger.OrComponent(r.Log, "bundle")
	args, err := inv.Args()
	if err != nil {
		return err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = inv.Workspace
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		log.Errorw("Failed to start bundler", logger.FieldCommand, inv.Command, logger.FieldError, err)
		return errors.WithSecondaryError(errors.Wrapf(errors.ErrBundlerStart, "%s", args[0]), err)
	}
	pid := cmd.Process.Pid
	log.Infow("Bundler started", logger.FieldCommand, inv.Command, logger.FieldPID, pid)
	if started != nil {
		started(pid)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeout <-chan time.Time
	if inv.Timeout > 0 {
		t := time.NewTimer(inv.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	begin := time.Now()
	select {
	case err := <-done:
		log.Infow("Bundler finished", logger.FieldPID, pid, logger.FieldDurationMS, time.Since(begin).Milliseconds())
		if err != nil {
			return errors.WithSecondaryError(errors.Wrapf(errors.ErrBundlerFailed, "pid %d", pid), err)
		}
		return nil
	case <-timeout:
		log.Warnw("Bundler did not finish in time", logger.FieldPID, pid, "timeout", inv.Timeout)
		return errors.WithDetailf(errors.Wrapf(errors.ErrBundlerTimeout, "pid %d after %s", pid, inv.Timeout), "bundler pid %d", pid)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		log.Warnw("Bundler killed", logger.FieldPID, pid)
		return ctx.Err()
	}
}

func orDefault(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
