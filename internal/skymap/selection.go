package skymap

// Selection is an ordered set of selected pixel indices.
type Selection struct {
	order []int
	index map[int]int
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{index: make(map[int]int)}
}

// Toggle selects pix if it is not selected and deselects it otherwise. It
// returns true when the pixel ends up selected.
func (s *Selection) Toggle(pix int) bool {
	if i, ok := s.index[pix]; ok {
		s.order = append(s.order[:i], s.order[i+1:]...)
		delete(s.index, pix)
		for j := i; j < len(s.order); j++ {
			s.index[s.order[j]] = j
		}
		return false
	}
	s.index[pix] = len(s.order)
	s.order = append(s.order, pix)
	return true
}

// Contains reports whether pix is selected.
func (s *Selection) Contains(pix int) bool {
	_, ok := s.index[pix]
	return ok
}

// Len returns the number of selected pixels.
func (s *Selection) Len() int { return len(s.order) }

// Pixels returns the selected indices in selection order.
func (s *Selection) Pixels() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Clear deselects everything and returns what was selected.
func (s *Selection) Clear() []int {
	out := s.order
	s.order = nil
	s.index = make(map[int]int)
	return out
}

// Stats computes per-field statistics over the selected pixels of m, for
// every displayable field the map carries.
func (s *Selection) Stats(m *Map) (map[Field]Stats, error) {
	if len(s.order) == 0 {
		return nil, ErrEmpty
	}
	out := make(map[Field]Stats)
	values := make([]float64, len(s.order))
	for _, f := range DisplayFields {
		if !m.Has(f) {
			continue
		}
		for i, pix := range s.order {
			p, err := m.Lookup(pix)
			if err != nil {
				return nil, err
			}
			values[i] = p.Value(f)
		}
		st, err := ComputeStats(values)
		if err != nil {
			return nil, err
		}
		out[f] = st
	}
	return out, nil
}
