package typegen

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/schema"
)

// CheckResult holds the result of comparing fresh output with committed stubs
type CheckResult struct {
	UpToDate bool
	// Differences lists helper-root-relative paths that differ or are missing
	Differences []string
}

// Check regenerates every engine into a temporary directory and compares the
// output with the modules currently under the helpers root. Nothing under
// the helpers root is modified.
func (g *Generator) Check(roots ...schema.Root) (*CheckResult, error) {
	tempDir, err := os.MkdirTemp("", "jsbind-check-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	shadow := *g
	shadow.root = tempDir
	if _, err := shadow.Run(roots...); err != nil {
		return nil, errors.Wrap(err, "failed to generate stubs for check")
	}

	diffs, err := CompareDirectories(tempDir, g.root)
	if err != nil {
		return nil, err
	}
	return &CheckResult{UpToDate: len(diffs) == 0, Differences: diffs}, nil
}

// CompareDirectories compares every file under generatedDir with its
// counterpart under existingDir and returns the relative paths that differ.
// Files missing from existingDir are reported with a " (missing)" suffix.
func CompareDirectories(generatedDir, existingDir string) ([]string, error) {
	var diffs []string

	err := filepath.Walk(generatedDir, func(genPath string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, err := filepath.Rel(generatedDir, genPath)
		if err != nil {
			return err
		}

		different, err := filesAreDifferent(genPath, filepath.Join(existingDir, relPath))
		switch {
		case errors.Is(err, os.ErrNotExist):
			diffs = append(diffs, relPath+" (missing)")
		case err != nil:
			diffs = append(diffs, relPath+" (error: "+err.Error()+")")
		case different:
			diffs = append(diffs, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", generatedDir)
	}

	sort.Strings(diffs)
	return diffs, nil
}

// filesAreDifferent compares two files byte for byte
func filesAreDifferent(file1, file2 string) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file1)
	}

	content2, err := os.ReadFile(file2)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file2)
	}

	return !bytes.Equal(content1, content2), nil
}
