package bundle

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// minSuppress is the shortest window after a build in which changes are
// attributed to the build itself
const minSuppress = 100 * time.Millisecond

// BuildFunc runs one build
type BuildFunc func(ctx context.Context) error

// Watcher rebuilds when raw scripts change. Changes are debounced, rebuilds
// are spaced by a rate limiter, and the writes a build makes to its own
// sources (masking, unmasking, metadata) do not trigger another build.
type Watcher struct {
	root     string
	typed    bool
	build    BuildFunc
	debounce time.Duration
	limiter  *rate.Limiter
	watcher  *fsnotify.Watcher
	log      *zap.SugaredLogger

	mu            sync.Mutex
	building      bool
	suppressUntil time.Time
	trigger       chan struct{}
}

// NewWatcher watches every directory under root except node_modules.
func NewWatcher(root string, typed bool, debounce, minInterval time.Duration, build BuildFunc, log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == nodeModules {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
	if err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", root)
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Watcher{
		root:     root,
		typed:    typed,
		build:    build,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		watcher:  fw,
		log:      logger.OrComponent(log, "bundle.watch"),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// relevant reports whether a change to p should trigger a build
func (w *Watcher) relevant(p string) bool {
	switch filepath.Base(p) {
	case EntryFile, OutputFile, LockFile, webpackConfig:
		return false
	}
	ext := filepath.Ext(p)
	return ext == ".js" || (w.typed && ext == ".ts")
}

// suppressed reports whether events are currently caused by our own build
func (w *Watcher) suppressed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.building || time.Now().Before(w.suppressUntil)
}

// Run watches until ctx is cancelled, running build after each debounced
// batch of changes. Build errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	go w.loop(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				w.addIfDir(event.Name)
			}
			if !w.relevant(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.suppressed() {
				w.log.Debugw("Ignoring own write", logger.FieldFile, event.Name)
				continue
			}
			w.log.Debugw("Change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.trigger <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) addIfDir(p string) {
	if filepath.Base(p) == nodeModules {
		return
	}
	if err := w.watcher.Add(p); err == nil {
		w.log.Debugw("Watching new directory", logger.FieldPath, p)
	}
}

// loop runs builds one at a time as triggers arrive
func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		w.runBuild(ctx)
	}
}

// Trigger requests a build as if a change had been observed
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) runBuild(ctx context.Context) {
	w.mu.Lock()
	w.building = true
	w.mu.Unlock()

	begin := time.Now()
	err := w.build(ctx)

	w.mu.Lock()
	w.building = false
	// fsnotify delivers our own writes shortly after they happen
	w.suppressUntil = time.Now().Add(max(w.debounce, minSuppress))
	w.mu.Unlock()

	if err != nil {
		w.log.Errorw("Rebuild failed", logger.FieldError, err)
		return
	}
	w.log.Infow("Rebuilt", logger.FieldDurationMS, time.Since(begin).Milliseconds())
}
