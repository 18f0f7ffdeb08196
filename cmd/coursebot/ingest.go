package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/coursebot/ai"
	"github.com/hrygo/coursebot/store"
)

const (
	ingestChunkChars = 1200
	ingestBatchSize  = 32
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Embed course material files into the document store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProfile()
		if err != nil {
			return err
		}
		if !p.HasDocumentStore() {
			return errors.New("ingest requires --driver=sqlite or --driver=postgres")
		}
		if c, _ := cmd.Flags().GetString("collection"); c != "" {
			p.Collection = c
		}

		ctx := cmd.Context()
		cfg := ai.NewConfigFromProfile(p)
		embedder, err := ai.NewEmbeddingService(&cfg.Embedding)
		if err != nil {
			return err
		}
		docStore, err := openStore(ctx, p)
		if err != nil {
			printStartupError(err, p)
			return err
		}
		defer docStore.Close()

		n, err := ingestFiles(ctx, embedder, docStore, p.Collection, args)
		if err != nil {
			return err
		}
		total, err := docStore.CountDocuments(ctx, p.Collection)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d chunks into %q (%d documents total)\n", n, p.Collection, total)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("collection", "", "target collection (defaults to COURSEBOT_COLLECTION)")
}

type documentWriter interface {
	UpsertDocument(ctx context.Context, doc *store.Document) (*store.Document, error)
}

// ingestFiles chunks each file, embeds the chunks in batches and upserts them.
// Chunk ids are stable so re-ingesting a file replaces its previous chunks.
func ingestFiles(ctx context.Context, embedder ai.EmbeddingService, w documentWriter, collection string, paths []string) (int, error) {
	count := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return count, errors.Wrapf(err, "failed to read %s", path)
		}
		chunks := splitChunks(string(data), ingestChunkChars)
		source := filepath.Base(path)

		for start := 0; start < len(chunks); start += ingestBatchSize {
			end := min(start+ingestBatchSize, len(chunks))
			vecs, err := embedder.EmbedBatch(ctx, chunks[start:end])
			if err != nil {
				return count, errors.Wrapf(err, "failed to embed %s", path)
			}
			for i, vec := range vecs {
				idx := start + i
				doc := &store.Document{
					ID:         fmt.Sprintf("%s#%d", source, idx),
					Collection: collection,
					Content:    chunks[idx],
					Metadata:   map[string]any{"source": source, "chunk": idx},
					Embedding:  vec,
					CreatedTs:  time.Now().Unix(),
				}
				if _, err := w.UpsertDocument(ctx, doc); err != nil {
					return count, err
				}
				count++
			}
		}
	}
	return count, nil
}

// splitChunks groups blank-line separated paragraphs into chunks of at most maxChars.
// A single paragraph longer than maxChars becomes its own chunk.
func splitChunks(text string, maxChars int) []string {
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+2+len(para) > maxChars {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
	}
	flush()
	return chunks
}
