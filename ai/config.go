package ai

import (
	"errors"

	"github.com/hrygo/coursebot/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding  EmbeddingConfig
	LLM        LLMConfig
	Classifier ClassifierConfig
	Retrieval  RetrievalConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

// LLMConfig represents answer-generation configuration.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     int // seconds
}

// ClassifierConfig tunes the semantic route classifier.
type ClassifierConfig struct {
	Threshold float32
	TopK      int
}

// RetrievalConfig configures material_info retrieval.
type RetrievalConfig struct {
	Enabled    bool
	Collection string
	TopK       int
}

// NewConfigFromProfile creates AI config from profile.
// Embeddings and chat share the same OpenAI-compatible credential.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:      p.EmbeddingModel,
			APIKey:     p.OpenAIAPIKey,
			BaseURL:    p.OpenAIBaseURL,
			Dimensions: p.EmbeddingDimensions,
		},
		LLM: LLMConfig{
			Model:       p.LLMModel,
			APIKey:      p.OpenAIAPIKey,
			BaseURL:     p.OpenAIBaseURL,
			MaxTokens:   p.LLMMaxTokens,
			Temperature: float32(p.LLMTemperature),
			Timeout:     p.LLMTimeout,
		},
		Classifier: ClassifierConfig{
			Threshold: float32(p.ClassifierThreshold),
			TopK:      p.ClassifierTopK,
		},
		Retrieval: RetrievalConfig{
			Enabled:    p.HasDocumentStore(),
			Collection: p.Collection,
			TopK:       p.MaterialTopK,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}
	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Classifier.TopK <= 0 {
		return errors.New("classifier top_k must be positive")
	}
	if c.Retrieval.Enabled {
		if c.Retrieval.Collection == "" {
			return errors.New("retrieval collection is required")
		}
		if c.Retrieval.TopK <= 0 {
			return errors.New("retrieval top_k must be positive")
		}
	}
	return nil
}
