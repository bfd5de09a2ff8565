// Package similarity provides cosine similarity scoring and top-K ranking
// over embedding vectors. It is tolerant of missing or malformed vectors:
// stored embeddings may be absent or corrupt for rows that never finished
// processing, and scoring must never fail because of them.
package similarity

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of a and b, in [-1, 1].
//
// It returns 0 when either vector is empty, of mismatched length, or has
// zero magnitude. It never panics; a zero score simply ranks the item last.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scored pairs an item with its similarity score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// TopK scores every item with scoreFn and returns the k highest, in
// descending score order. The sort is stable: ties keep their original
// insertion order. When k exceeds the item count, all items are returned.
func TopK[T any](items []T, scoreFn func(T) float64, k int) []Scored[T] {
	if k <= 0 {
		return nil
	}

	scored := make([]Scored[T], len(items))
	for i, item := range items {
		scored[i] = Scored[T]{Item: item, Score: scoreFn(item)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
