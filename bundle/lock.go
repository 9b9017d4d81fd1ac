package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// LockFile is the recovery lock written next to the raw scripts while they
// are masked
const LockFile = ".jsbind-masked.json"

// Lock records a masked build so that files can be restored after a crash or
// a timed-out bundler.
type Lock struct {
	ID      string    `json:"id"`
	PID     int       `json:"pid"`
	Started time.Time `json:"started"`
	Files   []string  `json:"files"`
}

// LockPath returns the lock location for dir
func LockPath(dir string) string {
	return filepath.Join(dir, LockFile)
}

// ReadLock reads the lock in dir
func ReadLock(dir string) (*Lock, error) {
	data, err := os.ReadFile(LockPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("no recovery lock in %s", dir)
		}
		return nil, errors.Wrap(err, "read recovery lock")
	}
	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrapf(err, "parse recovery lock %s", LockPath(dir))
	}
	return &l, nil
}

func writeLock(dir string, l *Lock) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode recovery lock")
	}
	if err := os.WriteFile(LockPath(dir), data, am.DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "write recovery lock")
	}
	return nil
}

func removeLock(dir string) error {
	if err := os.Remove(LockPath(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove recovery lock")
	}
	return nil
}

// Alive reports whether the lock's bundler process is still running
func (l *Lock) Alive() bool {
	if l.PID <= 0 {
		return false
	}
	ok, err := process.PidExists(int32(l.PID))
	return err == nil && ok
}

// Recover unmasks the files named by the lock in dir and removes the lock.
// It refuses while the recorded bundler is still running unless force is set.
func Recover(dir string, force bool, log *zap.SugaredLogger) ([]string, error) {
	log = logger.OrComponent(log, "bundle")
	l, err := ReadLock(dir)
	if err != nil {
		return nil, err
	}
	if !force && l.Alive() {
		return nil, errors.WithHint(
			errors.Newf("bundler (pid %d) from build %s is still running", l.PID, l.ID),
			"wait for it to exit, or pass --force to unmask anyway")
	}

	if err := unmaskFiles(l.Files); err != nil {
		return nil, err
	}
	if err := removeLock(dir); err != nil {
		return nil, err
	}
	log.Infow("Recovered masked files",
		logger.FieldRunID, l.ID,
		logger.FieldPID, l.PID,
		logger.FieldCount, len(l.Files))
	return l.Files, nil
}
