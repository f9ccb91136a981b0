package database

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/facegate/facegate/internal/match"
)

// HNSW parameters for face embedding search.
const (
	hnswMaxNeighbors = 16
)

// PersonIndex wraps an HNSW graph over person embeddings for fast
// "similar people" lookups. It is an approximate prefilter only: the
// recognition and duplicate decisions always run the exact full scan in
// the match package. All entries in one index share an embedding family.
type PersonIndex struct {
	family     string
	graph      *hnsw.Graph[string]
	idToPerson map[string]*Person
	mu         sync.RWMutex
}

// NewPersonIndex creates an empty index for one embedding family.
func NewPersonIndex(family string) *PersonIndex {
	return &PersonIndex{
		family:     family,
		idToPerson: make(map[string]*Person),
	}
}

// Build replaces the index contents from a person snapshot, keeping only
// people of the index's embedding family.
func (idx *PersonIndex) Build(people []Person) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	idx.idToPerson = make(map[string]*Person, len(people))
	for i := range people {
		p := &people[i]
		if p.Family != idx.family || len(p.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(p.ID, p.Embedding))
		idx.idToPerson[p.ID] = p
	}

	idx.graph = g
	return nil
}

// Add inserts or replaces one person in the index.
func (idx *PersonIndex) Add(p *Person) {
	if p.Family != idx.family || len(p.Embedding) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.graph == nil {
		return
	}
	idx.graph.Add(hnsw.MakeNode(p.ID, p.Embedding))
	idx.idToPerson[p.ID] = p
}

// Remove deletes one person from the index.
func (idx *PersonIndex) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.graph == nil {
		return
	}
	idx.graph.Delete(id)
	delete(idx.idToPerson, id)
}

// Len returns the number of indexed people.
func (idx *PersonIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.idToPerson)
}

// Search returns up to k people closest to the query embedding together
// with their exact cosine similarity, most similar first.
func (idx *PersonIndex) Search(query []float32, k int) ([]Person, []float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph == nil {
		return nil, nil, fmt.Errorf("index not initialized")
	}

	neighbors := idx.graph.Search(query, k)

	people := make([]Person, 0, len(neighbors))
	scores := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := idx.idToPerson[n.Key]
		if !ok {
			continue
		}
		// Report the exact similarity, not the graph's internal distance.
		score, ok := match.CosineSimilarity(query, p.Embedding)
		if !ok {
			continue
		}
		people = append(people, *p)
		scores = append(scores, score)
	}
	return people, scores, nil
}
