package flowstate

// NameSet is a set of qualified names that remembers insertion order.
// The graph uses it to split nodes into touched and untouched groups
// for each update cycle.
//
// The zero value is an empty set ready for use.
type NameSet struct {
	index map[string]struct{}
	order []string
}

// NewNameSet creates a set holding the given names.
// Empty names are skipped.
func NewNameSet(names ...string) *NameSet {
	s := &NameSet{}
	s.Add(names...)
	return s
}

// Add inserts names into the set and returns the set for chaining.
// Names already present keep their original position.
func (s *NameSet) Add(names ...string) *NameSet {
	if s.index == nil {
		s.index = make(map[string]struct{}, len(names))
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := s.index[name]; exists {
			continue
		}
		s.index[name] = struct{}{}
		s.order = append(s.order, name)
	}
	return s
}

// Union adds every name of other into s.
func (s *NameSet) Union(other *NameSet) *NameSet {
	if other == nil {
		return s
	}
	return s.Add(other.order...)
}

// Has reports whether name is in the set.
func (s *NameSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Len returns the number of names in the set.
func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns the names in insertion order.
// The returned slice is a copy.
func (s *NameSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Difference returns a new set with the names of a that are not in b,
// in the order they appear in a.
func Difference(a, b *NameSet) *NameSet {
	result := &NameSet{}
	if a == nil {
		return result
	}
	for _, name := range a.order {
		if !b.Has(name) {
			result.Add(name)
		}
	}
	return result
}
