package archive

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter excludes entry paths matching any of a set of Ant-style globs
// such as "org/jetbrains/annotations/**".
type Filter struct {
	patterns []string
}

// NewFilter validates patterns and returns a filter over them.
func NewFilter(patterns []string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	out := make([]string, len(patterns))
	copy(out, patterns)
	return &Filter{patterns: out}, nil
}

// Excluded reports whether name matches an exclude pattern.
func (f *Filter) Excluded(name string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.patterns {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}
