package mask

import "strings"

// span is an inclusive zero-based line range
type span struct {
	start, end int
}

// continuers are tokens after which a line break cannot end a statement
var continuers = map[string]bool{
	"=": true, ",": true, "(": true, "[": true, "{": true, ".": true,
	"+": true, "-": true, "*": true, "?": true, ":": true, "|": true, "&": true,
	"from": true, "import": true, "require": true,
}

// statementEnd returns the index of the last token of the statement starting
// at toks[i]. A statement ends at a semicolon at its own nesting depth, or at
// a line break at depth zero when neither side of the break continues it.
func statementEnd(toks []token, i int) int {
	depth := 0
	last := i
	for j := i; j < len(toks); j++ {
		t := toks[j]
		if t.kind == tokComment {
			continue
		}
		if j > i && depth == 0 && t.first && !continues(toks[last], t) {
			return last
		}
		last = j
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth < 0 {
				return j - 1
			}
		case ";":
			if depth == 0 {
				return j
			}
		}
	}
	return last
}

func continues(prev, next token) bool {
	if prev.kind == tokPunct || prev.kind == tokIdent {
		if continuers[prev.text] {
			return true
		}
	}
	if next.kind == tokPunct {
		switch next.text {
		case ".", "=", ",", "?", ":":
			return true
		}
	}
	return next.kind == tokIdent && next.text == "from"
}

// modulePath finds the quoted module path of an import or require statement
// spanning toks[i..end]: a string directly after import, after from, or as
// the first argument of require(.
func modulePath(toks []token, i, end int) (string, bool) {
	prev := func(j int) (token, bool) {
		for k := j - 1; k >= i; k-- {
			if toks[k].kind != tokComment {
				return toks[k], true
			}
		}
		return token{}, false
	}

	for j := i; j <= end; j++ {
		t := toks[j]
		if t.kind != tokString {
			continue
		}
		p, ok := prev(j)
		if !ok {
			continue
		}
		switch {
		case p.kind == tokIdent && (p.text == "from" || p.text == "import"):
			return unquote(t.text), true
		case p.kind == tokPunct && p.text == "(":
			if pp, ok := prev(j - 1); ok && pp.kind == tokIdent && pp.text == "require" {
				return unquote(t.text), true
			}
		}
	}
	return "", false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return strings.TrimLeft(s, `'"`)
}

// IsHelperPath reports whether a module path names a dot-prefixed helper
// file, e.g. "./.SampleEngine" or "../Runtime/.JavascriptEngine.js".
func IsHelperPath(p string) bool {
	seg := p
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		seg = p[i+1:]
	}
	return len(seg) > 1 && seg[0] == '.' && seg != ".." && seg[1] != '.'
}

// next returns the index of the first non-comment token after i, or -1
func next(toks []token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].kind != tokComment {
			return j
		}
	}
	return -1
}

// importSpans finds every helper import or require statement that begins a line
func importSpans(toks []token) []span {
	var spans []span
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !t.first || t.kind != tokIdent {
			continue
		}

		switch t.text {
		case "import":
			// import(...) and import.meta are expressions
			if n := next(toks, i); n < 0 || (toks[n].kind == tokPunct && (toks[n].text == "(" || toks[n].text == ".")) {
				continue
			}
		case "const", "let", "var":
		default:
			continue
		}

		end := statementEnd(toks, i)
		if p, ok := modulePath(toks, i, end); ok && IsHelperPath(p) {
			spans = append(spans, span{start: t.line, end: toks[end].endLine})
			i = end
		}
	}
	return spans
}

// exportBlock is an export class statement
type exportBlock struct {
	span
	// clean is set when the block can be wrapped in a block comment: the
	// closing brace ends its line and the block contains no comment closer
	clean bool
}

// exportSpans finds top-level export class blocks and export const/let/var
// statements that begin a line.
func exportSpans(toks []token, lines []string) (blocks []exportBlock, stmts []span) {
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
			continue
		}
		if depth != 0 || !t.first || t.kind != tokIdent || t.text != "export" {
			continue
		}

		n := next(toks, i)
		if n < 0 || toks[n].kind != tokIdent {
			continue
		}
		switch toks[n].text {
		case "class":
			if b, end, ok := classBlock(toks, i, n, lines); ok {
				blocks = append(blocks, b)
				i = end
			}
		case "const", "let", "var":
			end := statementEnd(toks, i)
			stmts = append(stmts, span{start: t.line, end: toks[end].endLine})
			i = end
		}
	}
	return blocks, stmts
}

// classBlock locates the body of an export class starting at toks[i] and
// returns the block with the index of its closing brace.
func classBlock(toks []token, i, classTok int, lines []string) (exportBlock, int, bool) {
	open := -1
	nesting := 0
	for j := classTok + 1; j < len(toks); j++ {
		t := toks[j]
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[":
			nesting++
		case ")", "]":
			nesting--
		case "{":
			if nesting == 0 {
				open = j
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		return exportBlock{}, 0, false
	}

	depth := 0
	closing := -1
	for j := open; j < len(toks) && closing < 0; j++ {
		t := toks[j]
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				closing = j
			}
		}
	}
	if closing < 0 {
		// Unterminated: mask through the end of input
		last := len(toks) - 1
		return exportBlock{span: span{start: toks[i].line, end: toks[last].endLine}}, last, true
	}

	end := closing
	if n := next(toks, closing); n >= 0 && toks[n].kind == tokPunct && toks[n].text == ";" && toks[n].line == toks[closing].line {
		end = n
	}

	b := exportBlock{span: span{start: toks[i].line, end: toks[end].endLine}}
	b.clean = true
	// Nothing may follow the block on its closing line
	for j := end + 1; j < len(toks) && toks[j].line == toks[end].endLine; j++ {
		b.clean = false
	}
	for l := b.start; l <= b.end && l < len(lines); l++ {
		if strings.Contains(lines[l], "*/") {
			b.clean = false
		}
	}
	return b, end, true
}
