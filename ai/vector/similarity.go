package vector

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(vek32.Dot(v, v))))
}

// Cosine returns the cosine similarity of a and b.
// Mismatched dimensions and zero vectors score 0.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	return CosineWithNorms(a, b, Norm(a), Norm(b))
}

// CosineWithNorms is Cosine with precomputed norms, for scoring one query against many references.
func CosineWithNorms(a, b []float32, normA, normB float32) float32 {
	if len(a) == 0 || len(a) != len(b) || normA == 0 || normB == 0 {
		return 0
	}
	return vek32.Dot(a, b) / (normA * normB)
}
