package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration used to start the coursebot server and CLI.
type Profile struct {
	// OpenAI-compatible provider used for both embeddings and answers.
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	EmbeddingModel      string
	EmbeddingDimensions int
	LLMModel            string
	LLMTimeout          int // seconds
	LLMMaxTokens        int
	LLMTemperature      float64

	// Routing.
	RoutesFile          string  // optional YAML override of the route catalog
	RelevanceRule       string  // CEL expression; empty accepts every assignment
	ClassifierThreshold float64 // minimum cosine score for a confident match
	ClassifierTopK      int
	MaxReroutes         int // 0 disables rerouting
	ContextSize         int

	// Retrieval for material_info.
	Collection   string
	MaterialTopK int

	// Server and storage.
	Mode      string
	Addr      string
	Port      int
	Data      string
	Driver    string // sqlite, postgres, or none
	DSN       string
	RateLimit float64 // requests per second per client, 0 disables
	Version   string
}

// MaxContextSize bounds the per-user query history.
const MaxContextSize = 10

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HasDocumentStore reports whether material_info answers come from retrieval.
func (p *Profile) HasDocumentStore() bool {
	return p.Driver != "" && p.Driver != DriverNone
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		slog.Warn("ignoring non-integer environment value", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("ignoring non-numeric environment value", "key", key, "value", value)
	}
	return defaultValue
}

// FromEnv loads the provider, routing and retrieval settings from environment variables.
// Server flags (mode, addr, port, data, driver, dsn) are bound by the CLI.
func (p *Profile) FromEnv() {
	// The service-specific key wins; the SDK-wide name is accepted as a fallback.
	p.OpenAIAPIKey = getEnvOrDefault("COURSEBOT_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY"))
	p.OpenAIBaseURL = getEnvOrDefault("COURSEBOT_OPENAI_BASE_URL", "")
	p.EmbeddingModel = getEnvOrDefault("COURSEBOT_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingDimensions = getEnvOrDefaultInt("COURSEBOT_EMBEDDING_DIMENSIONS", 1536)
	p.LLMModel = getEnvOrDefault("COURSEBOT_LLM_MODEL", "gpt-4o-mini")
	p.LLMTimeout = getEnvOrDefaultInt("COURSEBOT_LLM_TIMEOUT_SECONDS", 120)
	p.LLMMaxTokens = getEnvOrDefaultInt("COURSEBOT_LLM_MAX_TOKENS", 1024)
	p.LLMTemperature = getEnvOrDefaultFloat("COURSEBOT_LLM_TEMPERATURE", 0.2)

	p.RoutesFile = getEnvOrDefault("COURSEBOT_ROUTES_FILE", "")
	p.RelevanceRule = getEnvOrDefault("COURSEBOT_RELEVANCE_RULE", "")
	p.ClassifierThreshold = getEnvOrDefaultFloat("COURSEBOT_CLASSIFIER_THRESHOLD", 0.3)
	p.ClassifierTopK = getEnvOrDefaultInt("COURSEBOT_CLASSIFIER_TOP_K", 5)
	p.MaxReroutes = getEnvOrDefaultInt("COURSEBOT_MAX_REROUTES", 3)
	p.ContextSize = getEnvOrDefaultInt("COURSEBOT_CONTEXT_SIZE", MaxContextSize)

	p.Collection = getEnvOrDefault("COURSEBOT_COLLECTION", "course_materials")
	p.MaterialTopK = getEnvOrDefaultInt("COURSEBOT_MATERIAL_TOP_K", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fails fast on missing required settings.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.OpenAIAPIKey == "" {
		return errors.New("OpenAI API key is required: set COURSEBOT_OPENAI_API_KEY or OPENAI_API_KEY")
	}
	if p.ClassifierThreshold < 0 || p.ClassifierThreshold > 1 {
		return errors.Errorf("classifier threshold must be within [0, 1], got %v", p.ClassifierThreshold)
	}
	if p.MaxReroutes < 0 {
		return errors.Errorf("max reroutes must not be negative, got %d", p.MaxReroutes)
	}
	if p.ContextSize == 0 {
		p.ContextSize = MaxContextSize
	}
	if p.ContextSize < 0 || p.ContextSize > MaxContextSize {
		return errors.Errorf("context size must be within [1, %d], got %d", MaxContextSize, p.ContextSize)
	}

	switch p.Driver {
	case "", DriverNone:
		p.Driver = DriverNone
		return nil
	case DriverPostgres:
		if p.DSN == "" {
			return errors.New("postgres driver requires a DSN")
		}
		return nil
	case DriverSQLite:
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.DSN != "" {
		return nil
	}
	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir
	p.DSN = filepath.Join(dataDir, fmt.Sprintf("coursebot_%s.db", p.Mode))
	return nil
}
