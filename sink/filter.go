package sink

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/catalogd/catalogd/catalog"
)

// GlobFilter restricts which keys get published northbound, matched
// against the database and table/view/function name a key carries. Empty
// pattern sets match everything.
type GlobFilter struct {
	databaseGlobs []glob.Glob
	nameGlobs     []glob.Glob
}

func NewGlobFilter(databasePatterns, namePatterns []string) (*GlobFilter, error) {
	f := &GlobFilter{}
	for _, pattern := range databasePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("sink: invalid database pattern %q: %w", pattern, err)
		}
		f.databaseGlobs = append(f.databaseGlobs, g)
	}
	for _, pattern := range namePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("sink: invalid name pattern %q: %w", pattern, err)
		}
		f.nameGlobs = append(f.nameGlobs, g)
	}
	return f, nil
}

// Match reports whether key should be published.
func (f *GlobFilter) Match(key catalog.Key) bool {
	db, name := splitScoped(key.Name)

	if len(f.databaseGlobs) > 0 {
		matched := false
		for _, g := range f.databaseGlobs {
			if g.Match(db) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.nameGlobs) == 0 {
		return true
	}
	for _, g := range f.nameGlobs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// splitScoped splits a "<db>.<name>" key name; for keys with no "." the
// whole name is returned as db with an empty name part.
func splitScoped(scoped string) (db, name string) {
	for i := 0; i < len(scoped); i++ {
		if scoped[i] == '.' {
			return scoped[:i], scoped[i+1:]
		}
	}
	return scoped, ""
}
