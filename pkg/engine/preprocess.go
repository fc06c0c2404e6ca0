package engine

import "strings"

// kwPrefix marks a keyword after preprocessing: :mobile becomes the string
// literal "__kw_mobile", so keywords never collide with script variables.
const kwPrefix = "__kw_"

// preprocessSource rewrites a fold script into plain zygomys source:
//
//   - :keyword becomes "__kw_keyword" (hyphens inside the keyword are kept)
//   - kebab-case identifiers become snake_case, so fold-line calls fold_line
//   - ; and ;; comments become // comments
//
// String literals and comment bodies are copied untouched. A hyphen only
// counts as part of an identifier when a letter follows it, so (- 10 5)
// and (pt -1 0) keep their minus signs.
func preprocessSource(source string) string {
	r := rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"':
			r.quoted('"', true)
		case c == '`':
			r.quoted('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.peek(1) == '=':
			r.copy(2)
		case c == ':' && isLetter(r.peek(1)):
			r.keyword()
		case c == '-' && r.pos > 0 && isIdentChar(r.src[r.pos-1]) && isLetter(r.peek(1)):
			r.out.WriteByte('_')
			r.pos++
		default:
			r.copy(1)
		}
	}
	return r.out.String()
}

// rewriter walks the source once, copying or rewriting as it goes.
type rewriter struct {
	src string
	pos int
	out strings.Builder
}

// peek returns the byte n positions ahead, or 0 past the end.
func (r *rewriter) peek(n int) byte {
	if r.pos+n < len(r.src) {
		return r.src[r.pos+n]
	}
	return 0
}

func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// quoted copies a string literal including both delimiters. An unterminated
// literal runs to the end of the source.
func (r *rewriter) quoted(delim byte, escapes bool) {
	start := r.pos
	r.pos++
	for r.pos < len(r.src) && r.src[r.pos] != delim {
		if escapes && r.src[r.pos] == '\\' {
			r.pos++
		}
		r.pos++
	}
	if r.pos < len(r.src) {
		r.pos++
	}
	r.pos = min(r.pos, len(r.src))
	r.out.WriteString(r.src[start:r.pos])
}

func (r *rewriter) comment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.out.WriteString("//")
	r.copy(end)
}

func (r *rewriter) keyword() {
	end := r.pos + 1
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out.WriteString(`"` + kwPrefix + r.src[r.pos+1:end] + `"`)
	r.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
