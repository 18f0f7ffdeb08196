package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/ai/vector"
	"github.com/hrygo/coursebot/store"
)

// UpsertDocument inserts or replaces a document, keeping the original created_ts.
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
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding
		RETURNING created_ts
	`
	err = d.db.QueryRowContext(ctx, stmt,
		doc.Collection,
		doc.ID,
		doc.Content,
		string(metadata),
		encodeVector(doc.Embedding),
		doc.CreatedTs,
	).Scan(&doc.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert document")
	}
	return doc, nil
}

// SimilaritySearch scores every document of the collection by cosine similarity.
// Equal scores are ordered by id.
func (d *DB) SimilaritySearch(ctx context.Context, opts *store.SimilaritySearchOptions) ([]*store.DocumentWithScore, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, collection, content, metadata, embedding, created_ts
		FROM course_document
		WHERE collection = ?`, opts.Collection)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search documents")
	}
	defer rows.Close()

	qnorm := vector.Norm(opts.Vector)
	list := []*store.DocumentWithScore{}
	for rows.Next() {
		var (
			doc      store.Document
			metadata string
			blob     []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Content, &metadata, &blob, &doc.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal metadata of document %s", doc.ID)
		}
		doc.Embedding, err = decodeVector(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "document %s", doc.ID)
		}

		score := vector.CosineWithNorms(opts.Vector, doc.Embedding, qnorm, vector.Norm(doc.Embedding))
		list = append(list, &store.DocumentWithScore{Document: &doc, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Document.ID < list[j].Document.ID
	})
	if len(list) > opts.Limit {
		list = list[:opts.Limit]
	}
	return list, nil
}

// CountDocuments returns the number of documents in collection.
func (d *DB) CountDocuments(ctx context.Context, collection string) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM course_document WHERE collection = ?`, collection).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count documents")
	}
	return n, nil
}

// encodeVector stores v as little-endian float32s.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
