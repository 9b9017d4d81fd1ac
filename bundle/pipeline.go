package bundle

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// Options configures a Pipeline
type Options struct {
	Config *am.Config
	// Runner runs the bundler (an ExecRunner when nil)
	Runner Runner
	Logger *zap.SugaredLogger
}

// Pipeline builds the raw scripts of one project
type Pipeline struct {
	cfg    *am.Config
	runner Runner
	log    *zap.SugaredLogger
}

// Report summarises a finished build
type Report struct {
	Scripts  int
	Masked   int
	Duration time.Duration
}

// New creates a pipeline
func New(opts Options) *Pipeline {
	log := logger.OrComponent(opts.Logger, "bundle")
	runner := opts.Runner
	if runner == nil {
		runner = &ExecRunner{Log: log}
	}
	return &Pipeline{cfg: opts.Config, runner: runner, log: log}
}

// RawRoot returns the absolute raw scripts root
func (p *Pipeline) RawRoot() string {
	return p.cfg.Path(p.cfg.Build.RawScriptsRoot)
}

// BuiltRoot returns the absolute built scripts root
func (p *Pipeline) BuiltRoot() string {
	return p.cfg.Path(p.cfg.Build.BuiltScriptsRoot)
}

// Build writes the bundler metadata, then runs the bundler with the raw
// scripts masked.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	begin := time.Now()
	raw := p.RawRoot()
	if fi, err := os.Stat(raw); err != nil || !fi.IsDir() {
		return nil, errors.NewNotFoundError("raw scripts root %s is not a directory", raw)
	}

	scripts, err := Collect(raw, p.cfg.Generate.TypeScript)
	if err != nil {
		return nil, err
	}
	if err := WriteMetadata(raw, p.BuiltRoot(), scripts); err != nil {
		return nil, err
	}
	p.log.Infow("Wrote bundler metadata", logger.FieldPath, raw, logger.FieldCount, len(scripts))

	inv := Invocation{
		Command:   p.cfg.Build.Command,
		Workspace: raw,
		Dev:       p.cfg.Build.Dev,
		Timeout:   p.cfg.Build.Timeout(),
	}

	report := &Report{Scripts: len(scripts)}
	err = WithMasked(raw, Paths(scripts), p.log, func(started StartFunc) error {
		if l, lerr := ReadLock(raw); lerr == nil {
			report.Masked = len(l.Files)
		}
		return p.runner.Run(ctx, inv, started)
	})
	report.Duration = time.Since(begin)
	if err != nil {
		p.log.Errorw("Build failed", logger.FieldError, err, logger.FieldDurationMS, report.Duration.Milliseconds())
		return report, err
	}
	p.log.Infow("Build finished",
		logger.FieldCount, report.Scripts,
		logger.FieldDurationMS, report.Duration.Milliseconds())
	return report, nil
}
