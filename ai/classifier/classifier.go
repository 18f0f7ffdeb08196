// Package classifier assigns a query to a route by semantic similarity to example utterances.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/coursebot/ai"
	"github.com/hrygo/coursebot/ai/cache"
	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/vector"
)

// Result is a classification outcome. Route is empty when Matched is false.
type Result struct {
	Route   string
	Score   float32
	Matched bool
}

// Classifier maps a query to a route label.
type Classifier interface {
	Classify(ctx context.Context, query string) (Result, error)
}

// Config tunes the semantic classifier.
type Config struct {
	// Threshold is the minimum best-utterance score for a confident match.
	Threshold float32
	// TopK is how many nearest utterances vote for a route.
	TopK int
	// BatchSize is the number of utterances per embedding request while building.
	BatchSize int
	// Parallelism bounds concurrent embedding requests while building.
	Parallelism int
	CacheSize   int
	CacheTTL    time.Duration
}

// DefaultConfig returns the settings tuned for text-embedding-3 models.
func DefaultConfig() Config {
	return Config{
		Threshold:   0.3,
		TopK:        5,
		BatchSize:   32,
		Parallelism: 4,
		CacheSize:   cache.DefaultEmbeddingCacheSize,
		CacheTTL:    cache.DefaultEmbeddingCacheTTL,
	}
}

type reference struct {
	route catalog.RouteName
	text  string
	vec   []float32
	norm  float32
}

// SemanticClassifier scores queries against embedded route utterances.
type SemanticClassifier struct {
	embedder ai.EmbeddingService
	cache    *cache.EmbeddingCache
	refs     []reference
	cfg      Config
}

var _ Classifier = (*SemanticClassifier)(nil)

// NewSemanticClassifier embeds every utterance of cat and returns a ready classifier.
func NewSemanticClassifier(ctx context.Context, embedder ai.EmbeddingService, cat *catalog.Catalog, cfg Config) (*SemanticClassifier, error) {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}

	refs, err := buildReferences(ctx, embedder, cat, cfg)
	if err != nil {
		return nil, err
	}

	return &SemanticClassifier{
		embedder: embedder,
		cache:    cache.NewEmbeddingCache(cfg.CacheSize, cfg.CacheTTL),
		refs:     refs,
		cfg:      cfg,
	}, nil
}

func buildReferences(ctx context.Context, embedder ai.EmbeddingService, cat *catalog.Catalog, cfg Config) ([]reference, error) {
	var refs []reference
	for _, r := range cat.Routes() {
		for _, u := range r.Utterances {
			refs = append(refs, reference{route: r.Name, text: u})
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("route catalog has no utterances")
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)

	for lo := 0; lo < len(refs); lo += cfg.BatchSize {
		lo := lo
		hi := min(lo+cfg.BatchSize, len(refs))
		batch := refs[lo:hi]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, ref := range batch {
				texts[i] = ref.text
			}
			vecs, err := embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed utterances %d-%d: %w", lo, hi, err)
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embed utterances %d-%d: got %d vectors", lo, hi, len(vecs))
			}
			// Batches are disjoint sub-slices, so writes never overlap.
			for i := range batch {
				batch[i].vec = vecs[i]
				batch[i].norm = vector.Norm(vecs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("classifier: reference set built",
		"utterances", len(refs),
		"routes", len(cat.Names()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return refs, nil
}

type scored struct {
	route catalog.RouteName
	score float32
}

// Classify embeds the query and lets its nearest utterances vote.
// The winning route is the one with the highest summed score among the top-K;
// it matches only if its best single utterance reaches the threshold.
func (c *SemanticClassifier) Classify(ctx context.Context, query string) (Result, error) {
	qvec, err := c.embedQuery(ctx, query)
	if err != nil {
		return Result{}, err
	}
	return c.classifyVector(qvec), nil
}

func (c *SemanticClassifier) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := c.cache.Get(query); ok {
		return vec, nil
	}
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	c.cache.Put(query, vec)
	return vec, nil
}

func (c *SemanticClassifier) classifyVector(qvec []float32) Result {
	qnorm := vector.Norm(qvec)
	scores := make([]scored, len(c.refs))
	for i, ref := range c.refs {
		scores[i] = scored{route: ref.route, score: vector.CosineWithNorms(qvec, ref.vec, qnorm, ref.norm)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if len(scores) > c.cfg.TopK {
		scores = scores[:c.cfg.TopK]
	}

	type tally struct {
		total float32
		best  float32
		order int
	}
	tallies := make(map[catalog.RouteName]*tally)
	for i, s := range scores {
		t, ok := tallies[s.route]
		if !ok {
			t = &tally{best: s.score, order: i}
			tallies[s.route] = t
		}
		t.total += s.score
		t.best = max(t.best, s.score)
	}

	var (
		winner catalog.RouteName
		win    *tally
	)
	for route, t := range tallies {
		// Ties go to the route whose first hit ranked higher.
		if win == nil || t.total > win.total || (t.total == win.total && t.order < win.order) {
			winner, win = route, t
		}
	}
	if win == nil || win.best < c.cfg.Threshold {
		return Result{}
	}
	return Result{Route: winner.String(), Score: win.best, Matched: true}
}

// CacheStats exposes query-embedding cache counters.
func (c *SemanticClassifier) CacheStats() cache.EmbeddingCacheStats {
	return c.cache.Stats()
}

// Size returns the number of reference utterances.
func (c *SemanticClassifier) Size() int {
	return len(c.refs)
}
