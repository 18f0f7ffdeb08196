package experts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/coursebot/ai"
	"github.com/hrygo/coursebot/ai/core/llm"
	"github.com/hrygo/coursebot/ai/vector"
)

// RAG stages reported through StageError.
const (
	StageEmbedding  = "embedding"
	StageRetrieval  = "retrieval"
	StagePrompt     = "prompt"
	StageGeneration = "generation"
)

// DefaultTopK is the number of documents retrieved per query.
const DefaultTopK = 5

// Generator produces an answer from a query, a rendered role prompt, and retrieved documents.
type Generator interface {
	Generate(ctx context.Context, query, prompt string, docs []vector.VectorResult) (string, error)
}

// Embedder is the subset of ai.EmbeddingService the RAG handler needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var _ Embedder = ai.EmbeddingService(nil)

// RAGConfig configures a retrieval-augmented expert.
type RAGConfig struct {
	Embedder   Embedder
	Store      vector.DocumentStore
	Generator  Generator
	Prompts    *Prompts
	Collection string
	Role       string
	TopK       int
}

// RAGHandler answers from course documents similar to the query.
type RAGHandler struct {
	embedder   Embedder
	store      vector.DocumentStore
	generator  Generator
	prompts    *Prompts
	collection string
	role       string
	topK       int
}

var _ Handler = (*RAGHandler)(nil)

// NewRAGHandler validates cfg and returns a handler.
func NewRAGHandler(cfg RAGConfig) (*RAGHandler, error) {
	if cfg.Embedder == nil || cfg.Store == nil || cfg.Generator == nil {
		return nil, fmt.Errorf("rag handler requires an embedder, a document store and a generator")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("rag handler requires a collection")
	}
	if cfg.Prompts == nil {
		cfg.Prompts = NewPrompts()
	}
	if cfg.Role == "" {
		cfg.Role = PromptCourseInstructor
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &RAGHandler{
		embedder:   cfg.Embedder,
		store:      cfg.Store,
		generator:  cfg.Generator,
		prompts:    cfg.Prompts,
		collection: cfg.Collection,
		role:       cfg.Role,
		topK:       cfg.TopK,
	}, nil
}

// Respond embeds the query, retrieves the top-K documents and generates an answer.
// Every failure is returned as a *StageError.
func (h *RAGHandler) Respond(ctx context.Context, req Request) (string, error) {
	qvec, err := h.embedder.Embed(ctx, req.Query)
	if err != nil {
		return "", &StageError{Stage: StageEmbedding, Err: err}
	}

	docs, err := h.store.SimilaritySearch(ctx, h.collection, qvec, h.topK)
	if err != nil {
		return "", &StageError{Stage: StageRetrieval, Err: err}
	}
	slog.Debug("experts: retrieved documents",
		"collection", h.collection,
		"count", len(docs),
	)

	prompt, err := h.prompts.Render(h.role, promptDocuments(docs))
	if err != nil {
		return "", &StageError{Stage: StagePrompt, Err: err}
	}

	answer, err := h.generator.Generate(ctx, req.Query, prompt, docs)
	if err != nil {
		return "", &StageError{Stage: StageGeneration, Err: err}
	}
	return answer, nil
}

func promptDocuments(docs []vector.VectorResult) []PromptDocument {
	out := make([]PromptDocument, len(docs))
	for i, d := range docs {
		title, _ := d.Metadata["title"].(string)
		if title == "" {
			title = d.DocID
		}
		out[i] = PromptDocument{Title: title, Content: d.Content}
	}
	return out
}

// LLMGenerator generates answers with a chat model. The rendered prompt is the
// system message and the student query the user message.
type LLMGenerator struct {
	llm llm.Service
}

var _ Generator = (*LLMGenerator)(nil)

// NewLLMGenerator wraps svc.
func NewLLMGenerator(svc llm.Service) *LLMGenerator {
	return &LLMGenerator{llm: svc}
}

func (g *LLMGenerator) Generate(ctx context.Context, query, prompt string, _ []vector.VectorResult) (string, error) {
	answer, stats, err := g.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(prompt),
		llm.UserMessage(query),
	})
	if err != nil {
		return "", err
	}
	if stats != nil {
		slog.Debug("experts: answer generated",
			"total_tokens", stats.TotalTokens,
			"duration_ms", stats.TotalDurationMs,
		)
	}
	return answer, nil
}
