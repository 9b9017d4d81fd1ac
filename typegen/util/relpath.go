package util

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/teranos/jsbind/errors"
)

// RelativeImport computes the import path of target as seen from the module
// at source. Both paths are absolute file paths; the result uses forward
// slashes and has no extension.
//
// The common directory is the longest common character prefix cut back to
// its last separator. Each separator left in the source suffix costs one
// "../"; the target suffix is appended after them.
func RelativeImport(source, target string) (string, error) {
	src := filepath.ToSlash(source)
	dst := filepath.ToSlash(target)

	n := 0
	for n < len(src) && n < len(dst) && src[n] == dst[n] {
		n++
	}
	common := strings.LastIndexByte(src[:n], '/') + 1
	if common == 0 {
		return "", errors.Wrapf(errors.ErrNoCommonRoot, "%s and %s", source, target)
	}

	depth := strings.Count(src[common:], "/")
	suffix := stripExt(dst[common:])

	if depth == 0 {
		return "./" + suffix, nil
	}
	return strings.Repeat("../", depth) + suffix, nil
}

// ResolveImport resolves an import path produced by RelativeImport against
// the directory of source. The result has no extension.
func ResolveImport(source, rel string) string {
	dir := path.Dir(filepath.ToSlash(source))
	return filepath.FromSlash(path.Join(dir, rel))
}

// StripExt removes the extension from the final path element
func StripExt(p string) string {
	return filepath.FromSlash(stripExt(filepath.ToSlash(p)))
}

func stripExt(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	// ".Name" alone is a dot file, not an extension
	if ext == base {
		return p
	}
	return strings.TrimSuffix(p, ext)
}
