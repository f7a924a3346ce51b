// Package matching contains the pure scoring primitives shared by request
// creation and the recommendation engine.
package matching

import "math"

// NotComparable is the sentinel returned when two vectors cannot be compared.
// Callers must treat any score below zero as "exclude from ranking".
const NotComparable = -1.0

// Cosine computes the cosine similarity between two vectors. It returns
// NotComparable when either vector is empty, the lengths differ, or either
// vector has zero magnitude; otherwise the result is in [-1, 1].
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return NotComparable
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	magnitude := math.Sqrt(normA) * math.Sqrt(normB)
	if magnitude == 0 {
		return NotComparable
	}

	return dot / magnitude
}
