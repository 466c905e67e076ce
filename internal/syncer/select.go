package syncer

import (
	"fmt"
	"slices"

	"github.com/gobwas/glob"
)

// TargetFilter narrows a run down to some entries by name.
type TargetFilter struct {
	// Names are exact entry names.
	Names []string

	// Globs are shell-style patterns matched against the whole entry name.
	// '*' and '?' stop at '/'; '**' crosses it.
	Globs []string
}

// IsEmpty reports whether the filter matches everything.
func (f TargetFilter) IsEmpty() bool {
	return len(f.Names) == 0 && len(f.Globs) == 0
}

// Select returns the entries matching filter, in their original order.
//
// An entry matches when its name is listed in filter.Names or matches any
// of filter.Globs. An empty filter matches every entry.
func Select(entries []Entry, filter TargetFilter) ([]Entry, error) {
	if filter.IsEmpty() {
		return slices.Clone(entries), nil
	}

	patterns := make([]glob.Glob, 0, len(filter.Globs))
	for _, pattern := range filter.Globs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, g)
	}

	selected := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if matches(entry.Name, filter.Names, patterns) {
			selected = append(selected, entry)
		}
	}

	return selected, nil
}

func matches(name string, names []string, patterns []glob.Glob) bool {
	if slices.Contains(names, name) {
		return true
	}
	for _, g := range patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
