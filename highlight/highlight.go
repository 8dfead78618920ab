// Package highlight computes style ranges for SQL text.
//
// A Highlighter scans the whole text for four categories, applied in order:
// reserved words, bracketed identifiers, quoted literals and known table
// names. Categories may overlap; where they do, the one applied later wins.
package highlight

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

// Category is the style class of a range.
type Category int

const (
	// CategoryNone is unstyled text.
	CategoryNone Category = iota
	// CategoryKeyword is a reserved word.
	CategoryKeyword
	// CategoryIdentifier is a [bracketed] identifier.
	CategoryIdentifier
	// CategoryLiteral is a 'single' or "double" quoted literal.
	CategoryLiteral
	// CategoryTable is a known table name.
	CategoryTable
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryKeyword:
		return "keyword"
	case CategoryIdentifier:
		return "identifier"
	case CategoryLiteral:
		return "literal"
	case CategoryTable:
		return "table"
	default:
		return "none"
	}
}

// Range is a styled byte range [Start, End) of the text.
type Range struct {
	Start    int
	End      int
	Category Category
}

// Literal and identifier patterns stop at line ends, like a per-line editor highlighter.
var (
	keywordWords      = newWordSet(keywords, true)
	bracketedPattern  = regexp.MustCompile(`\[[^\]\n]*\]`)
	singleQuotedRegex = regexp.MustCompile(`'[^'\n]*'`)
	doubleQuotedRegex = regexp.MustCompile(`"[^"\n]*"`)
)

// Highlighter produces style ranges for SQL text. It is safe for concurrent use.
type Highlighter struct {
	mu         sync.RWMutex
	tables     []string
	tableWords *wordSet
}

// New creates a Highlighter knowing the given table names.
func New(tables ...string) *Highlighter {
	h := &Highlighter{}
	h.SetKnownTables(tables)
	return h
}

// SetKnownTables replaces the set of table names styled as tables.
// An empty set disables table styling.
func (h *Highlighter) SetKnownTables(names []string) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	var words *wordSet
	if len(unique) > 0 {
		words = newWordSet(unique, false)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.tables = unique
	h.tableWords = words
}

// KnownTables returns the current known-table set.
func (h *Highlighter) KnownTables() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.tables)
}

// Highlight returns the style ranges of text in application order:
// keywords, bracketed identifiers, single-quoted literals, double-quoted
// literals, then table names. Each group is in text order.
func (h *Highlighter) Highlight(text string) []Range {
	h.mu.RLock()
	tables := h.tableWords
	h.mu.RUnlock()

	var ranges []Range
	ranges = keywordWords.appendMatches(ranges, text, CategoryKeyword)
	ranges = appendMatches(ranges, bracketedPattern, text, CategoryIdentifier)
	ranges = appendMatches(ranges, singleQuotedRegex, text, CategoryLiteral)
	ranges = appendMatches(ranges, doubleQuotedRegex, text, CategoryLiteral)
	if tables != nil {
		ranges = tables.appendMatches(ranges, text, CategoryTable)
	}
	return ranges
}

func appendMatches(ranges []Range, re *regexp.Regexp, text string, c Category) []Range {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		ranges = append(ranges, Range{Start: loc[0], End: loc[1], Category: c})
	}
	return ranges
}

// wordSet matches any of its words as a whole word: a word edge that is a
// letter, digit or underscore of any script must not touch another such
// rune, so 订单 does not match inside 订单明细.
type wordSet struct {
	re    *regexp.Regexp
	words []string // longest first
	fold  bool
}

func newWordSet(words []string, fold bool) *wordSet {
	sorted := slices.Clone(words)
	// longest first so that "Orders_1" is not matched as "Orders"
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = regexp.QuoteMeta(w)
	}
	expr := `(?:` + strings.Join(parts, "|") + `)`
	if fold {
		expr = `(?i)` + expr
	}
	return &wordSet{re: regexp.MustCompile(expr), words: sorted, fold: fold}
}

func (ws *wordSet) appendMatches(ranges []Range, text string, c Category) []Range {
	for pos := 0; pos < len(text); {
		loc := ws.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if end := ws.wholeWordAt(text, start, pos+loc[1]); end > start {
			ranges = append(ranges, Range{Start: start, End: end, Category: c})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return ranges
}

// wholeWordAt returns the end of the longest word matching at start as a
// whole word, trying the regexp hit first. It returns -1 when none does.
func (ws *wordSet) wholeWordAt(text string, start, end int) int {
	if isWholeWord(text, start, end) {
		return end
	}
	rest := text[start:]
	for _, w := range ws.words {
		if len(w) > len(rest) || len(w) == end-start {
			continue
		}
		prefix := rest[:len(w)]
		if prefix != w && !(ws.fold && strings.EqualFold(prefix, w)) {
			continue
		}
		if isWholeWord(text, start, start+len(w)) {
			return start + len(w)
		}
	}
	return -1
}

// isWholeWord reports whether text[start:end] is not glued to surrounding
// word runes.
func isWholeWord(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	if isWordRune(first) && start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(before) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWordRune(last) && end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(after) {
			return false
		}
	}
	return true
}
