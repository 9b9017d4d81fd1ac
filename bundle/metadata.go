// Package bundle drives the external script bundler.
//
// A build collects the raw scripts, writes the bundler's entry.json and
// output.json metadata, masks helper imports and stub exports in place,
// runs the bundler as a separate process and unmasks again.
//
// Masking is scoped by WithMasked: files are restored on every exit path,
// including start failures and panics, except when the bundler outlives the
// configured wait. Then the files stay masked and the recovery lock names
// the bundler pid and the files for `jsbind unmask`.
package bundle

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
)

// Metadata file names written into the raw scripts root
const (
	EntryFile  = "entry.json"
	OutputFile = "output.json"
)

// Excluded from collection
const (
	nodeModules   = "node_modules"
	webpackConfig = "webpack.config.babel.js"
)

// Script is one raw script fed to the bundler
type Script struct {
	// Key is the entry name: "./" + slash path without extension
	Key string
	// Rel is the slash path relative to the raw root, prefixed with "./"
	Rel string
	// Path is the absolute file path
	Path string
}

// Collect finds every .js file (and .ts file when typed) under root,
// skipping node_modules and the webpack config. Scripts are sorted by key.
func Collect(root string, typed bool) ([]Script, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve raw scripts root %s", root)
	}

	var scripts []Script
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == nodeModules {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == webpackConfig {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".js" && !(typed && ext == ".ts") {
			return nil
		}

		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		scripts = append(scripts, Script{
			Key:  "./" + strings.TrimSuffix(rel, path.Ext(rel)),
			Rel:  "./" + rel,
			Path: p,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "collect scripts under %s", root)
	}

	sort.SliceStable(scripts, func(i, j int) bool { return scripts[i].Key < scripts[j].Key })
	return scripts, nil
}

// Entry maps script keys to their relative paths. When a .js and a .ts file
// share a key, the .ts file wins.
func Entry(scripts []Script) map[string]string {
	entry := make(map[string]string, len(scripts))
	for _, s := range scripts {
		entry[s.Key] = s.Rel
	}
	return entry
}

// Output is the content of output.json
type Output struct {
	Path string `json:"path"`
}

// WriteMetadata writes entry.json and output.json into rawRoot.
// JSON object keys are written sorted.
func WriteMetadata(rawRoot, builtRoot string, scripts []Script) error {
	built, err := filepath.Abs(builtRoot)
	if err != nil {
		return errors.Wrapf(err, "resolve built scripts root %s", builtRoot)
	}
	if err := writeJSON(filepath.Join(rawRoot, OutputFile), Output{Path: filepath.ToSlash(built)}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(rawRoot, EntryFile), Entry(scripts))
}

func writeJSON(p string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(p))
	}
	if err := os.WriteFile(p, data, am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "write %s", p)
	}
	return nil
}

// Paths returns the absolute paths of scripts
func Paths(scripts []Script) []string {
	paths := make([]string, len(scripts))
	for i, s := range scripts {
		paths[i] = s.Path
	}
	return paths
}
