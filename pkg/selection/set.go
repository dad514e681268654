// Package selection holds the selected rows of the visible list.
//
// A Set is scoped to the identifiers of the list currently on screen. Ids
// outside that scope are ignored, so a toggle aimed at an evicted list can
// never land on the new one.
package selection

// Set is an insertion-ordered selection over a scoped universe of ids.
type Set[K comparable] struct {
	scope map[K]struct{}
	order []K
	has   map[K]struct{}
}

// New returns an empty set scoped to ids.
func New[K comparable](ids ...K) *Set[K] {
	s := &Set[K]{}
	s.Reset(ids)
	return s
}

// Reset empties the selection and replaces the scope. Called whenever the
// underlying list is replaced.
func (s *Set[K]) Reset(ids []K) {
	s.scope = make(map[K]struct{}, len(ids))
	for _, id := range ids {
		s.scope[id] = struct{}{}
	}
	s.Clear()
}

// ToggleOne includes or excludes id. Ids outside the scope are ignored.
func (s *Set[K]) ToggleOne(id K, included bool) {
	if _, ok := s.scope[id]; !ok {
		return
	}
	_, present := s.has[id]
	switch {
	case included && !present:
		s.has[id] = struct{}{}
		s.order = append(s.order, id)
	case !included && present:
		delete(s.has, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Flip toggles id relative to its current state.
func (s *Set[K]) Flip(id K) {
	s.ToggleOne(id, !s.Has(id))
}

// SetAll replaces the selection with ids, restricted to the scope.
func (s *Set[K]) SetAll(ids []K) {
	s.Clear()
	for _, id := range ids {
		s.ToggleOne(id, true)
	}
}

// Clear empties the selection but keeps the scope.
func (s *Set[K]) Clear() {
	s.order = nil
	s.has = make(map[K]struct{})
}

func (s *Set[K]) Has(id K) bool {
	if s == nil {
		return false
	}
	_, ok := s.has[id]
	return ok
}

func (s *Set[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Items returns the selected ids in selection order.
func (s *Set[K]) Items() []K {
	if s == nil {
		return nil
	}
	return append([]K(nil), s.order...)
}

// InScope reports whether id belongs to the visible list.
func (s *Set[K]) InScope(id K) bool {
	if s == nil {
		return false
	}
	_, ok := s.scope[id]
	return ok
}

// Clone returns an independent copy.
func (s *Set[K]) Clone() *Set[K] {
	if s == nil {
		return nil
	}
	c := &Set[K]{
		scope: make(map[K]struct{}, len(s.scope)),
		order: append([]K(nil), s.order...),
		has:   make(map[K]struct{}, len(s.has)),
	}
	for k := range s.scope {
		c.scope[k] = struct{}{}
	}
	for k := range s.has {
		c.has[k] = struct{}{}
	}
	return c
}
