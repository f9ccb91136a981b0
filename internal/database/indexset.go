package database

import "sync"

// IndexSet groups one PersonIndex per embedding family so callers can
// search without knowing which families are present. Indexes are created
// lazily as families appear.
type IndexSet struct {
	mu      sync.RWMutex
	indexes map[string]*PersonIndex
}

// NewIndexSet creates an empty index set.
func NewIndexSet() *IndexSet {
	return &IndexSet{indexes: make(map[string]*PersonIndex)}
}

// Rebuild replaces all indexes from a person snapshot.
func (s *IndexSet) Rebuild(people []Person) error {
	families := make(map[string][]Person)
	for _, p := range people {
		if p.Family == "" || len(p.Embedding) == 0 {
			continue
		}
		families[p.Family] = append(families[p.Family], p)
	}

	indexes := make(map[string]*PersonIndex, len(families))
	for family, members := range families {
		idx := NewPersonIndex(family)
		if err := idx.Build(members); err != nil {
			return err
		}
		indexes[family] = idx
	}

	s.mu.Lock()
	s.indexes = indexes
	s.mu.Unlock()
	return nil
}

// Add inserts or replaces one person in their family's index, creating
// the index if the family is new.
func (s *IndexSet) Add(p *Person) {
	if p.Family == "" || len(p.Embedding) == 0 {
		return
	}

	s.mu.Lock()
	idx, ok := s.indexes[p.Family]
	if !ok {
		idx = NewPersonIndex(p.Family)
		_ = idx.Build(nil)
		s.indexes[p.Family] = idx
	}
	s.mu.Unlock()

	idx.Add(p)
}

// Remove deletes one person from every family index.
func (s *IndexSet) Remove(id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, idx := range s.indexes {
		idx.Remove(id)
	}
}

// Search returns up to k people of the given family closest to the query
// embedding, most similar first. Unknown families return empty results.
func (s *IndexSet) Search(family string, query []float32, k int) ([]Person, []float64, error) {
	s.mu.RLock()
	idx, ok := s.indexes[family]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, nil
	}
	return idx.Search(query, k)
}

// Sizes reports the number of indexed people per family.
func (s *IndexSet) Sizes() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sizes := make(map[string]int, len(s.indexes))
	for family, idx := range s.indexes {
		sizes[family] = idx.Len()
	}
	return sizes
}
