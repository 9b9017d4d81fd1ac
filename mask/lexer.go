package mask

// tokenKind classifies lexical tokens. Only the distinctions needed to find
// statement boundaries are made.
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokTemplate
	tokRegex
	tokNumber
	tokPunct
	tokComment
)

type token struct {
	kind tokenKind
	text string
	// line and endLine are zero-based; they differ for multi-line comments,
	// templates and unterminated constructs
	line    int
	endLine int
	// first is set when no other token precedes this one on its line
	first bool
}

// lexer splits JavaScript or TypeScript source into tokens. It never fails:
// unterminated strings, comments and templates end at the end of input.
type lexer struct {
	src  string
	pos  int
	line int

	toks     []token
	lastLine int
}

func tokenize(src string) []token {
	l := &lexer{src: src, lastLine: -1}
	l.run()
	return l.toks
}

func (l *lexer) emit(kind tokenKind, start, startLine int) {
	l.toks = append(l.toks, token{
		kind:    kind,
		text:    l.src[start:l.pos],
		line:    startLine,
		endLine: l.line,
		first:   startLine != l.lastLine,
	})
	l.lastLine = l.line
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

// advance moves one byte, counting newlines
func (l *lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
	}
	l.pos++
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		start, startLine := l.pos, l.line

		switch {
		case c == '\n' || c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.advance()

		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			l.emit(tokComment, start, startLine)

		case c == '/' && l.peek(1) == '*':
			l.pos += 2
			for l.pos < len(l.src) && !(l.src[l.pos] == '*' && l.peek(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.pos += 2
			}
			l.emit(tokComment, start, startLine)

		case c == '\'' || c == '"':
			l.quoted(c)
			l.emit(tokString, start, startLine)

		case c == '`':
			l.template()
			l.emit(tokTemplate, start, startLine)

		case c == '/' && l.regexAllowed():
			l.regex()
			l.emit(tokRegex, start, startLine)

		case isIdentStart(c):
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			l.emit(tokIdent, start, startLine)

		case c >= '0' && c <= '9':
			for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '.') {
				l.pos++
			}
			l.emit(tokNumber, start, startLine)

		default:
			l.pos++
			l.emit(tokPunct, start, startLine)
		}
	}
}

// quoted consumes a single- or double-quoted string. A raw newline ends an
// unterminated string; an escaped newline continues it.
func (l *lexer) quoted(q byte) {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.advance()
			if l.pos < len(l.src) {
				l.advance()
			}
		case q:
			l.pos++
			return
		case '\n':
			return
		default:
			l.pos++
		}
	}
}

// template consumes a template literal including nested substitutions
func (l *lexer) template() {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.advance()
			if l.pos < len(l.src) {
				l.advance()
			}
		case '`':
			l.pos++
			return
		case '$':
			if l.peek(1) == '{' {
				l.pos += 2
				l.substitution()
				continue
			}
			l.pos++
		default:
			l.advance()
		}
	}
}

// substitution consumes the expression of a ${...} up to its closing brace
func (l *lexer) substitution() {
	depth := 1
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '{':
			depth++
			l.pos++
		case c == '}':
			depth--
			l.pos++
			if depth == 0 {
				return
			}
		case c == '\'' || c == '"':
			l.quoted(c)
		case c == '`':
			l.template()
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peek(1) == '*':
			l.pos += 2
			for l.pos < len(l.src) && !(l.src[l.pos] == '*' && l.peek(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.pos += 2
			}
		default:
			l.advance()
		}
	}
}

// regexAllowed decides whether a slash starts a regular expression from the
// previous significant token.
func (l *lexer) regexAllowed() bool {
	for i := len(l.toks) - 1; i >= 0; i-- {
		t := l.toks[i]
		switch t.kind {
		case tokComment:
			continue
		case tokIdent:
			switch t.text {
			case "return", "typeof", "instanceof", "in", "of", "new", "delete", "void", "throw", "case", "do", "else", "yield", "await":
				return true
			}
			return false
		case tokPunct:
			return t.text != ")" && t.text != "]" && t.text != "}"
		default:
			return false
		}
	}
	return true
}

func (l *lexer) regex() {
	l.pos++
	inClass := false
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos++
			if l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case '[':
			inClass = true
			l.pos++
		case ']':
			inClass = false
			l.pos++
		case '/':
			l.pos++
			if !inClass {
				for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
					l.pos++
				}
				return
			}
		case '\n':
			return
		default:
			l.pos++
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
