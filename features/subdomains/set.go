package subdomains

// Set is a string set that remembers insertion order. Strings are compared
// exactly, so "WWW.example.com" and "www.example.com" are distinct.
type Set struct {
	index  map[string]struct{}
	values []string
}

func NewSet(values ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(values))}
	s.AddAll(values)
	return s
}

// Add inserts value and reports whether it was new.
func (s *Set) Add(value string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[value]; ok {
		return false
	}
	s.index[value] = struct{}{}
	s.values = append(s.values, value)
	return true
}

// AddAll inserts every value and returns how many were new.
func (s *Set) AddAll(values []string) int {
	added := 0
	for _, v := range values {
		if s.Add(v) {
			added++
		}
	}
	return added
}

func (s *Set) Contains(value string) bool {
	_, ok := s.index[value]
	return ok
}

func (s *Set) Len() int {
	return len(s.values)
}

// Values returns a copy of the members in insertion order.
func (s *Set) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
