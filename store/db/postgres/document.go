package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/store"
)

// UpsertDocument inserts or replaces a document.
func (d *DB) UpsertDocument(ctx context.Context, doc *store.Document) (*store.Document, error) {
	if doc.CreatedTs == 0 {
		doc.CreatedTs = time.Now().Unix()
	}
	metadata, err := json.Marshal(metadataOrEmpty(doc.Metadata))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal document metadata")
	}

	stmt := `
		INSERT INTO course_document (collection, id, content, metadata, embedding, created_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
		RETURNING created_ts
	`
	err = d.db.QueryRowContext(ctx, stmt,
		doc.Collection,
		doc.ID,
		doc.Content,
		string(metadata),
		pgvector.NewVector(doc.Embedding),
		doc.CreatedTs,
	).Scan(&doc.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert document")
	}
	return doc, nil
}

// SimilaritySearch orders documents by cosine distance.
// The <=> operator computes cosine distance (1 - cosine similarity).
func (d *DB) SimilaritySearch(ctx context.Context, opts *store.SimilaritySearchOptions) ([]*store.DocumentWithScore, error) {
	query := `
		SELECT id, collection, content, metadata, created_ts,
			1 - (embedding <=> ` + placeholder(2) + `) AS score
		FROM course_document
		WHERE collection = ` + placeholder(1) + `
		ORDER BY embedding <=> ` + placeholder(2) + `, id
		LIMIT ` + placeholder(3)

	rows, err := d.db.QueryContext(ctx, query, opts.Collection, pgvector.NewVector(opts.Vector), opts.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search documents")
	}
	defer rows.Close()

	list := []*store.DocumentWithScore{}
	for rows.Next() {
		var (
			doc      store.Document
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Content, &metadata, &doc.CreatedTs, &score); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal metadata of document %s", doc.ID)
			}
		}
		list = append(list, &store.DocumentWithScore{Document: &doc, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CountDocuments returns the number of documents in collection.
func (d *DB) CountDocuments(ctx context.Context, collection string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM course_document WHERE collection = `+placeholder(1), collection).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count documents")
	}
	return n, nil
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
