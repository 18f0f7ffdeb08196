package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/ai/vector"
)

// Document is an embedded piece of course material.
type Document struct {
	ID         string
	Collection string
	Content    string
	Metadata   map[string]any
	Embedding  []float32
	CreatedTs  int64
}

// DocumentWithScore is a similarity search hit.
type DocumentWithScore struct {
	Document *Document
	Score    float32 // cosine similarity, higher is more similar
}

// SimilaritySearchOptions is the find condition for a similarity search.
type SimilaritySearchOptions struct {
	Collection string
	Vector     []float32
	Limit      int
}

// Validate validates the options and applies the default limit.
func (o *SimilaritySearchOptions) Validate() error {
	if o.Collection == "" {
		return errors.New("collection cannot be empty")
	}
	if len(o.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if o.Limit < 0 {
		return errors.Errorf("limit cannot be negative: %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = 5
	}
	if o.Limit > 1000 {
		return errors.Errorf("limit too large (max 1000): %d", o.Limit)
	}
	return nil
}

// UpsertDocument inserts or replaces a document by (collection, id).
func (s *Store) UpsertDocument(ctx context.Context, doc *Document) (*Document, error) {
	if doc.ID == "" || doc.Collection == "" {
		return nil, errors.New("document id and collection are required")
	}
	if len(doc.Embedding) == 0 {
		return nil, errors.Errorf("document %s has no embedding", doc.ID)
	}
	return s.driver.UpsertDocument(ctx, doc)
}

// SimilaritySearch returns up to limit documents of collection, most similar first.
func (s *Store) SimilaritySearch(ctx context.Context, collection string, vec []float32, limit int) ([]vector.VectorResult, error) {
	opts := &SimilaritySearchOptions{Collection: collection, Vector: vec, Limit: limit}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hits, err := s.driver.SimilaritySearch(ctx, opts)
	if err != nil {
		return nil, err
	}

	results := make([]vector.VectorResult, len(hits))
	for i, h := range hits {
		results[i] = vector.VectorResult{
			DocID:    h.Document.ID,
			Content:  h.Document.Content,
			Metadata: h.Document.Metadata,
			Score:    h.Score,
		}
	}
	return results, nil
}

// CountDocuments returns the number of documents in collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int, error) {
	return s.driver.CountDocuments(ctx, collection)
}
