package batch

import "path/filepath"

// Filter implements the include/exclude glob semantics: an empty
// include list permits everything; a non-empty one is an any-match permit
// list. Exclude is always an any-match deny list, checked after include.
type Filter struct {
	Include []string
	Exclude []string
}

// Allows reports whether name (typically a base filename) passes the
// filter.
func (f Filter) Allows(name string) bool {
	if len(f.Include) > 0 {
		matched := false
		for _, pat := range f.Include {
			if ok, _ := filepath.Match(pat, name); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range f.Exclude {
		if ok, _ := filepath.Match(pat, name); ok {
			return false
		}
	}
	return true
}
