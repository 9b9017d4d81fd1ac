// Package mask hides helper imports and stub exports from the external
// bundler and restores them afterwards.
//
// Masking works on whole lines. A masked line is prefixed with LineMarker;
// an export class block may instead be wrapped between BlockOpen and
// BlockClose lines. Statements are found with a small JavaScript tokenizer,
// so strings, template literals, comments and nested braces are respected.
//
// Every mask function has an exact inverse: lines of the input that already
// start with LineMarker, or equal a block marker line, are escaped with one
// more LineMarker so that unmasking can tell them apart.
package mask

import (
	"path/filepath"
	"strings"
)

// Markers written into masked sources
const (
	LineMarker = "//@masked "
	BlockOpen  = "/*@masked"
	BlockClose = "@masked*/"
)

// Imports masks every import or require statement whose module path names a
// dot-prefixed helper file.
func Imports(src string) string {
	lines := strings.Split(src, "\n")
	selected := make([]bool, len(lines))
	for _, s := range importSpans(tokenize(src)) {
		markLines(selected, s)
	}
	return render(lines, selected, nil)
}

// UnmaskImports reverses Imports
func UnmaskImports(src string) string {
	return unmask(src)
}

// Exports masks export class blocks and export const/let/var statements.
func Exports(src string) string {
	lines := strings.Split(src, "\n")
	selected := make([]bool, len(lines))
	blocks, stmts := exportSpans(tokenize(src), lines)

	wrapped := make(map[int]int) // start line -> end line
	for _, b := range blocks {
		if b.clean {
			wrapped[b.start] = b.end
			continue
		}
		markLines(selected, b.span)
	}
	for _, s := range stmts {
		markLines(selected, s)
	}
	return render(lines, selected, wrapped)
}

// UnmaskExports reverses Exports
func UnmaskExports(src string) string {
	return unmask(src)
}

// IsMasked reports whether src contains masking markers
func IsMasked(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, LineMarker) || line == BlockOpen || line == BlockClose {
			return true
		}
	}
	return false
}

// IsMaskedFile reports whether src is the output of File for path. A user
// line that merely starts with LineMarker is not enough; the text must
// mask back to itself once unmasked.
func IsMaskedFile(path, src string) bool {
	return IsMasked(src) && File(path, UnmaskFile(path, src)) == src
}

// IsHelperFile reports whether path names a dot-prefixed helper or stub file
func IsHelperFile(path string) bool {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasPrefix(name, ".") && name != "."
}

// File masks a script file: imports always, exports only for helper files.
func File(path, src string) string {
	src = Imports(src)
	if IsHelperFile(path) {
		src = Exports(src)
	}
	return src
}

// UnmaskFile reverses File
func UnmaskFile(path, src string) string {
	if IsHelperFile(path) {
		src = UnmaskExports(src)
	}
	return UnmaskImports(src)
}

func markLines(selected []bool, s span) {
	for l := s.start; l <= s.end && l < len(selected); l++ {
		selected[l] = true
	}
}

func needsEscape(line string) bool {
	return strings.HasPrefix(line, LineMarker) || line == BlockOpen || line == BlockClose
}

func render(lines []string, selected []bool, wrapped map[int]int) string {
	var b strings.Builder
	closeAt := -1
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if end, ok := wrapped[i]; ok {
			b.WriteString(BlockOpen + "\n")
			closeAt = end
		}
		if selected[i] || needsEscape(line) {
			b.WriteString(LineMarker)
		}
		b.WriteString(line)
		if i == closeAt {
			b.WriteString("\n" + BlockClose)
			closeAt = -1
		}
	}
	return b.String()
}

// unmask drops block marker lines and strips one line marker per line
func unmask(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == BlockOpen || line == BlockClose {
			continue
		}
		out = append(out, strings.TrimPrefix(line, LineMarker))
	}
	return strings.Join(out, "\n")
}
