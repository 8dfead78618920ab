package xlsql

import (
	"fmt"
	"strings"
)

// foldName folds ASCII letters only, matching how SQLite compares identifiers.
func foldName(name string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, name)
}

// nameSet is a case-insensitive set of table or column names.
type nameSet map[string]struct{}

// newNameSet creates a set seeded with names.
func newNameSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, name := range names {
		set.add(name)
	}
	return set
}

func (s nameSet) add(name string) {
	s[foldName(name)] = struct{}{}
}

func (s nameSet) has(name string) bool {
	_, ok := s[foldName(name)]
	return ok
}

// unique returns base if free, otherwise the first free "base_N" for N = 1, 2, ...
// The returned name is not added to the set.
func (s nameSet) unique(base string) string {
	if base == "" {
		base = defaultTableName
	}
	if !s.has(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !s.has(candidate) {
			return candidate
		}
	}
}
