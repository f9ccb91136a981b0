// Package match implements gallery matching: cosine similarity between a
// probe embedding and every registered embedding, with a per-use-case
// threshold and deterministic tie-breaking.
package match

import "math"

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, clamped to [-1, 1] to absorb floating point error. The second
// return value is false when the vectors cannot be compared: mismatched
// lengths, empty vectors, or a zero-norm vector.
func CosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return similarity, true
}
