package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newEmbeddingServer(t *testing.T, respond func(req embeddingsRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := respond(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	srv := newEmbeddingServer(t, func(req embeddingsRequest) (int, any) {
		assert.Equal(t, "text-embedding-3-small", req.Model)
		// Reply out of order to check reordering by index.
		data := make([]openai.Embedding, len(req.Input))
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = openai.Embedding{Object: "embedding", Index: j, Embedding: []float32{float32(j), 1}}
		}
		return http.StatusOK, openai.EmbeddingResponse{Object: "list", Data: data}
	})

	svc, err := NewEmbeddingService(&EmbeddingConfig{Model: "text-embedding-3-small", APIKey: "k", BaseURL: srv.URL, Dimensions: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Dimensions())

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		assert.Equal(t, []float32{float32(i), 1}, v)
	}

	one, err := svc.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, one)
}

func TestEmbeddingService_Errors(t *testing.T) {
	_, err := NewEmbeddingService(&EmbeddingConfig{})
	assert.Error(t, err)

	srv := newEmbeddingServer(t, func(embeddingsRequest) (int, any) {
		return http.StatusOK, openai.EmbeddingResponse{Object: "list"}
	})
	svc, err := NewEmbeddingService(&EmbeddingConfig{Model: "m", APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), nil)
	assert.Error(t, err)

	_, err = svc.Embed(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 vectors for 1 inputs")
}
