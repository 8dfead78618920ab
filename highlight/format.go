package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenQuoted
	tokenComment
	tokenLineComment
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
}

// clauseWords start a new line when formatted.
var clauseWords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {},
	"LIMIT": {}, "UNION": {}, "EXCEPT": {}, "INTERSECT": {}, "VALUES": {}, "SET": {},
}

// joinWords start a new line unless they continue a join that already started one.
var joinWords = map[string]struct{}{
	"JOIN": {}, "LEFT": {}, "RIGHT": {}, "INNER": {}, "CROSS": {}, "FULL": {}, "NATURAL": {}, "OUTER": {},
}

// Format upper-cases reserved words outside quotes, brackets and comments,
// collapses runs of whitespace and puts major clauses on their own lines.
func Format(sql string) string {
	tokens := tokenize(sql)

	var b strings.Builder
	prevWord := ""
	prevPunct := ""
	pendingSpace := false

	for _, tok := range tokens {
		switch tok.kind {
		case tokenSpace:
			pendingSpace = b.Len() > 0
			continue
		case tokenWord:
			upper := strings.ToUpper(tok.text)
			if IsKeyword(tok.text) {
				tok.text = upper
			}
			if b.Len() > 0 && startsLine(upper, prevWord, prevPunct) {
				writeNewline(&b)
				pendingSpace = false
			}
			prevWord = upper
			prevPunct = ""
		case tokenPunct:
			prevPunct = tok.text
		default:
			prevWord = ""
			prevPunct = ""
		}

		if pendingSpace && !endsWithNewline(&b) {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteString(tok.text)
		if tok.kind == tokenLineComment {
			writeNewline(&b)
		}
	}
	return strings.TrimSpace(b.String())
}

func startsLine(word, prevWord, prevPunct string) bool {
	if prevPunct == "(" {
		return false
	}
	if _, ok := clauseWords[word]; ok {
		return true
	}
	if _, ok := joinWords[word]; ok {
		_, continued := joinWords[prevWord]
		return !continued
	}
	return false
}

func writeNewline(b *strings.Builder) {
	if endsWithNewline(b) {
		return
	}
	s := strings.TrimRight(b.String(), " ")
	b.Reset()
	b.WriteString(s)
	b.WriteByte('\n')
}

func endsWithNewline(b *strings.Builder) bool {
	s := b.String()
	return s == "" || s[len(s)-1] == '\n'
}

// tokenize splits sql into words, whitespace, quoted runs, comments and punctuation.
// Unterminated quotes and comments extend to the end of the text.
func tokenize(sql string) []token {
	var tokens []token
	for i := 0; i < len(sql); {
		r, size := utf8.DecodeRuneInString(sql[i:])
		start := i
		kind := tokenPunct

		switch {
		case unicode.IsSpace(r):
			kind = tokenSpace
			for i < len(sql) {
				r, size = utf8.DecodeRuneInString(sql[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}
		case r == '\'' || r == '"' || r == '`':
			kind = tokenQuoted
			i = quotedEnd(sql, i, byte(r))
		case r == '[':
			kind = tokenQuoted
			i = closingIndex(sql, i+1, "]")
		case strings.HasPrefix(sql[i:], "--"):
			kind = tokenLineComment
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				i = len(sql)
			} else {
				i += end
			}
		case strings.HasPrefix(sql[i:], "/*"):
			kind = tokenComment
			i = closingIndex(sql, i+2, "*/")
		case isWordRune(r):
			kind = tokenWord
			for i < len(sql) {
				r, size = utf8.DecodeRuneInString(sql[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
		default:
			i += size
		}
		tokens = append(tokens, token{kind: kind, text: sql[start:i]})
	}
	return tokens
}

// quotedEnd returns the index after the quote closing the one at i. Doubled quotes are escapes.
func quotedEnd(sql string, i int, quote byte) int {
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != quote {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

func closingIndex(sql string, from int, closing string) int {
	end := strings.Index(sql[from:], closing)
	if end < 0 {
		return len(sql)
	}
	return from + end + len(closing)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
