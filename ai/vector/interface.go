// Package vector defines document retrieval for the material_info expert.
package vector

import "context"

// DocumentStore performs similarity search over embedded course documents.
type DocumentStore interface {
	// SimilaritySearch returns up to limit documents of collection, most similar first.
	SimilaritySearch(ctx context.Context, collection string, vector []float32, limit int) ([]VectorResult, error)
}

// VectorResult represents a vector search result.
type VectorResult struct {
	Metadata map[string]any `json:"metadata"`
	DocID    string         `json:"doc_id"`
	Content  string         `json:"content"`
	Score    float32        `json:"score"`
}
