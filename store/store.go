package store

import (
	"context"

	"github.com/hrygo/coursebot/ai/vector"
)

// Driver is the database backend of the document store.
type Driver interface {
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error
	UpsertDocument(ctx context.Context, doc *Document) (*Document, error)
	SimilaritySearch(ctx context.Context, opts *SimilaritySearchOptions) ([]*DocumentWithScore, error)
	CountDocuments(ctx context.Context, collection string) (int, error)
	Close() error
}

// Store provides access to embedded course documents.
type Store struct {
	driver Driver
}

var _ vector.DocumentStore = (*Store)(nil)

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// Migrate prepares the schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
