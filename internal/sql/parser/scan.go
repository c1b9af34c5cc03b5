package parser

import "strings"

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// identEnd returns the offset just past the identifier starting at from.
func identEnd(s string, from int) int {
	i := from
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return i
}

// cutWord splits off the leading identifier-like word.
func cutWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := identEnd(s, 0)
	return s[:i], strings.TrimSpace(s[i:])
}

// closingQuote returns the offset of the quote closing the literal that
// opens at s[start], or -1. Double-quoted literals honour backslash escapes.
func closingQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return i
		}
	}
	return -1
}

func hasWordAt(s string, i int, kw string) bool {
	j := i + len(kw)
	if j > len(s) || !strings.EqualFold(s[i:j], kw) {
		return false
	}
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	return j == len(s) || !isIdentByte(s[j])
}

// callsAt reports whether the next non-blank byte at or after i is '(',
// i.e. the word before it is an operator keyword rather than a clause.
func callsAt(s string, i int) bool {
	rest := strings.TrimLeft(s[i:], " \t\r\n")
	return rest != "" && rest[0] == '('
}

// indexKeyword returns the offset of the first standalone, case-insensitive
// kw in s that is outside quotes and parentheses, or -1.
func indexKeyword(s, kw string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			end := closingQuote(s, i)
			if end < 0 {
				return -1
			}
			i = end
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && hasWordAt(s, i, kw) && !callsAt(s, i+len(kw)):
			return i
		}
	}
	return -1
}

func indexClause(s string) int {
	at := -1
	for _, kw := range []string{clauseWhere, clauseColumns, clauseRename} {
		if i := indexKeyword(s, kw); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	return at
}

func splitOnKeyword(s, kw string) []string {
	var parts []string
	for {
		i := indexKeyword(s, kw)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+len(kw):]
	}
}

// splitTopLevel splits a comma-separated list, ignoring commas inside
// quotes and parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			end := closingQuote(s, i)
			if end < 0 {
				end = len(s)
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// SplitScript splits text into ';'-terminated statements, ignoring ';'
// inside quoted literals and lines starting with "--". A trailing
// unterminated fragment is returned as is so Parse can report it.
func SplitScript(text string) []string {
	var (
		stmts []string
		b     strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	s := b.String()

	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			end := closingQuote(s, i)
			if end < 0 {
				end = len(s)
			}
			i = end
		case ';':
			if stmt := strings.TrimSpace(s[start : i+1]); stmt != ";" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
