package sources

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/platinummonkey/protogen/pkg/codegen"
)

// Filter selects files by doublestar globs matched against the
// slash separated path relative to the listing root
type Filter struct {
	includes []string
	excludes []string
}

// NewFilter validates the patterns and returns a filter. With no
// includes every file is included.
func NewFilter(includes, excludes []string) (Filter, error) {
	for _, p := range append(append([]string(nil), includes...), excludes...) {
		if !doublestar.ValidatePattern(p) {
			return Filter{}, &codegen.ConfigurationError{Input: p, Reason: "invalid glob pattern"}
		}
	}
	return Filter{includes: includes, excludes: excludes}, nil
}

// Match reports whether rel passes the filter
func (f Filter) Match(rel string) bool {
	if len(f.includes) > 0 && !matchAny(f.includes, rel) {
		return false
	}
	return !matchAny(f.excludes, rel)
}

func (f Filter) String() string {
	return fmt.Sprintf("includes=%v excludes=%v", f.includes, f.excludes)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// patterns were validated in NewFilter
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
