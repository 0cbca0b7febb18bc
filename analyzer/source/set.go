package source

// Set is an insertion ordered set of sources with structural membership
type Set struct {
	items []*Source
}

// Add adds the source unless a structurally equal one is present; returns true if added
func (s *Set) Add(src *Source) bool {
	if src == nil || s.Has(src) {
		return false
	}
	s.items = append(s.items, src)
	return true
}

// Has returns true if a structurally equal source is present
func (s *Set) Has(src *Source) bool {
	for _, item := range s.items {
		if item.Equal(src) {
			return true
		}
	}
	return false
}

// Covers returns true if any member structurally contains the source
func (s *Set) Covers(src *Source) bool {
	for _, item := range s.items {
		if item.Contains(src) {
			return true
		}
	}
	return false
}

// Items returns members in insertion order
func (s *Set) Items() []*Source {
	return s.items
}

// Len returns number of members
func (s *Set) Len() int {
	return len(s.items)
}
