package match

// Probe is the embedding being matched against the gallery.
type Probe struct {
	Embedding []float32
	Family    string
}

// GalleryEntry is one registered identity's embedding. The attribute
// payload stays opaque to matching; only the display name travels along
// for disclosure in results.
type GalleryEntry struct {
	PersonID  string
	Name      string
	Embedding []float32
	Family    string
}

// Result is the outcome of one gallery scan.
type Result struct {
	Matched  bool
	PersonID string
	Name     string
	Score    float64 // best similarity seen, 0 for an empty gallery
}

// BestMatch scans the entire gallery in order and returns the entry with
// the highest cosine similarity to the probe, provided it is strictly
// greater than the threshold. A score exactly equal to the threshold is a
// non-match. Ties on the maximum keep the first entry seen, so results
// are deterministic for a given gallery order. Entries whose embedding
// family or dimension differs from the probe are skipped, not fatal: a
// gallery may mix families across a backend migration.
func BestMatch(probe Probe, gallery []GalleryEntry, threshold float64) Result {
	var (
		best      *GalleryEntry
		bestScore = -1.0
	)

	for i := range gallery {
		entry := &gallery[i]
		if entry.Family != probe.Family {
			continue
		}
		score, ok := CosineSimilarity(probe.Embedding, entry.Embedding)
		if !ok {
			continue
		}
		if best == nil || score > bestScore {
			bestScore = score
			best = entry
		}
	}

	if best == nil {
		return Result{}
	}
	if bestScore <= threshold {
		return Result{Score: bestScore}
	}
	return Result{
		Matched:  true,
		PersonID: best.PersonID,
		Name:     best.Name,
		Score:    bestScore,
	}
}
