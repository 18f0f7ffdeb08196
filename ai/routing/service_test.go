package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/classifier"
	"github.com/hrygo/coursebot/ai/experts"
	"github.com/hrygo/coursebot/ai/session"
)

// scriptedClassifier returns the result of the first rule whose keyword the query contains.
type scriptedClassifier struct {
	mu      sync.Mutex
	rules   []rule
	queries []string
	err     error
}

type rule struct {
	keyword string
	route   string
}

func (c *scriptedClassifier) Classify(_ context.Context, query string) (classifier.Result, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()

	if c.err != nil {
		return classifier.Result{}, c.err
	}
	lower := strings.ToLower(query)
	for _, r := range c.rules {
		if strings.Contains(lower, r.keyword) {
			return classifier.Result{Route: r.route, Score: 0.8, Matched: true}, nil
		}
	}
	return classifier.Result{}, nil
}

func (c *scriptedClassifier) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

type fakeRecorder struct {
	mu       sync.Mutex
	routes   []string
	reroutes int
	errors   []string
}

func (r *fakeRecorder) RecordRoute(expert, reason string, attempts int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, fmt.Sprintf("%s/%s/%d", expert, reason, attempts))
}

func (r *fakeRecorder) RecordReroute(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reroutes++
}

func (r *fakeRecorder) RecordCollaboratorError(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, stage)
}

func courseClassifier() *scriptedClassifier {
	return &scriptedClassifier{rules: []rule{
		{"progress", "progress_report"},
		{"stuck", "problem_solve"},
		{"slides", "material_info"},
		{"overwhelmed", "mental_support"},
		{"weather", "weather_report"},
	}}
}

type testEnv struct {
	svc        *Service
	classifier *scriptedClassifier
	dispatcher *experts.Dispatcher
	recorder   *fakeRecorder
}

func newTestEnv(t *testing.T, policy RelevancePolicy) *testEnv {
	t.Helper()
	env := &testEnv{
		classifier: courseClassifier(),
		dispatcher: experts.NewDispatcher(),
		recorder:   &fakeRecorder{},
	}
	svc, err := NewService(Config{
		Classifier: env.classifier,
		Dispatcher: env.dispatcher,
		Sessions:   session.NewStore(session.DefaultContextSize),
		Relevance:  policy,
		Recorder:   env.recorder,
	})
	require.NoError(t, err)
	env.svc = svc
	return env
}

func rejectAll() RelevancePolicy {
	return RelevanceFunc(func(string, catalog.RouteName) bool { return false })
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{Dispatcher: experts.NewDispatcher()})
	assert.Error(t, err)
	_, err = NewService(Config{Classifier: courseClassifier()})
	assert.Error(t, err)

	svc, err := NewService(Config{Classifier: courseClassifier(), Dispatcher: experts.NewDispatcher()})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxReroutes, svc.maxReroutes)
	assert.IsType(t, AcceptAll{}, svc.relevance)
	assert.NotNil(t, svc.Sessions())
}

func TestRoute_AcceptedProgressReport(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.svc.Route(context.Background(), "student1", "Can I have an update on my lab progress?")
	require.NoError(t, err)

	assert.Equal(t, catalog.RouteProgressReport, out.Expert)
	assert.Equal(t, experts.ProgressReportText, out.Answer)
	assert.Equal(t, ReasonAccepted, out.Reason)
	assert.Equal(t, 1, out.Attempts)
	assert.Zero(t, out.Rerouted)

	sess, ok := env.svc.Sessions().Lookup("student1")
	require.True(t, ok)
	assert.Zero(t, sess.ReroutingCounter())
	assert.Equal(t, []string{"Can I have an update on my lab progress?"}, sess.Context())
	assert.Equal(t, []string{"progress_report/accepted/1"}, env.recorder.routes)
}

func TestRoute_UnmatchedFallsBack(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.svc.Route(context.Background(), "student1", "Tell me about black holes")
	require.NoError(t, err)

	assert.Equal(t, catalog.RouteFallback, out.Expert)
	assert.Equal(t, experts.FallbackText, out.Answer)
	assert.Equal(t, ReasonUnmatched, out.Reason)
	assert.Equal(t, 1, out.Attempts)

	sess, _ := env.svc.Sessions().Lookup("student1")
	assert.Equal(t, []string{"Tell me about black holes"}, sess.Context(), "context still records the query")
}

func TestRoute_UnknownLabelIsUnmatched(t *testing.T) {
	env := newTestEnv(t, rejectAll())

	out, err := env.svc.Route(context.Background(), "u", "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, catalog.RouteFallback, out.Expert)
	assert.Equal(t, ReasonUnmatched, out.Reason)
	assert.Equal(t, 1, out.Attempts, "unmatched never consumes a reroute")
	assert.Zero(t, env.recorder.reroutes)
}

func TestRoute_UnmatchedLeavesCounterUntouched(t *testing.T) {
	env := newTestEnv(t, nil)
	sess := env.svc.Sessions().GetOrCreate("u")
	sess.IncrementRerouting()
	sess.IncrementRerouting()

	out, err := env.svc.Route(context.Background(), "u", "black holes")
	require.NoError(t, err)
	assert.Equal(t, ReasonUnmatched, out.Reason)
	assert.Equal(t, 2, sess.ReroutingCounter())
}

func TestRoute_ContextKeepsLastTen(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := 1; i <= 11; i++ {
		_, err := env.svc.Route(context.Background(), "u", fmt.Sprintf("progress question %d", i))
		require.NoError(t, err)
	}

	sess, _ := env.svc.Sessions().Lookup("u")
	ctx := sess.Context()
	require.Len(t, ctx, 10)
	for i, q := range ctx {
		assert.Equal(t, fmt.Sprintf("progress question %d", i+2), q)
	}
}

func TestRoute_RerouteBound(t *testing.T) {
	env := newTestEnv(t, rejectAll())
	const query = "I am stuck on recursion"

	out, err := env.svc.Route(context.Background(), "u", query)
	require.NoError(t, err)

	assert.Equal(t, catalog.RouteFallback, out.Expert)
	assert.Equal(t, experts.FallbackText, out.Answer)
	assert.Equal(t, ReasonRerouteLimit, out.Reason)
	assert.Equal(t, DefaultMaxReroutes+1, out.Attempts)
	assert.Equal(t, DefaultMaxReroutes+1, out.Rerouted)

	calls := env.classifier.calls()
	require.Len(t, calls, 4, "1 initial classification plus 3 retries")
	assert.Equal(t, query, calls[0])
	assert.Equal(t, DefaultReshape(query, []string{query}), calls[1])
	for i := 1; i < len(calls); i++ {
		assert.True(t, strings.HasPrefix(calls[i], calls[i-1]), "each retry reshapes the previous text")
	}

	sess, _ := env.svc.Sessions().Lookup("u")
	assert.Equal(t, 4, sess.ReroutingCounter(), "counter is left as-is on fallback")
	assert.Len(t, sess.Context(), 4, "every attempt is recorded in context")
	assert.Equal(t, 4, env.recorder.reroutes)
	assert.Equal(t, []string{"fallback/reroute_limit/4"}, env.recorder.routes)

	// The counter stays above the limit, so the next rejection falls back at once.
	out, err = env.svc.Route(context.Background(), "u", query)
	require.NoError(t, err)
	assert.Equal(t, ReasonRerouteLimit, out.Reason)
	assert.Equal(t, 1, out.Attempts)
}

func TestRoute_RerouteThenAccept(t *testing.T) {
	env := newTestEnv(t, RelevanceFunc(func(query string, _ catalog.RouteName) bool {
		return strings.Contains(query, "Additional context")
	}))

	out, err := env.svc.Route(context.Background(), "u", "where are the slides")
	require.NoError(t, err)

	assert.Equal(t, catalog.RouteMaterialInfo, out.Expert)
	assert.Equal(t, ReasonAccepted, out.Reason)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 1, out.Rerouted)

	sess, _ := env.svc.Sessions().Lookup("u")
	assert.Zero(t, sess.ReroutingCounter(), "accepted resolution resets the counter")
}

func TestRoute_ZeroReroutesAllowed(t *testing.T) {
	env := newTestEnv(t, rejectAll())
	env.svc.maxReroutes = 0

	out, err := env.svc.Route(context.Background(), "u", "progress please")
	require.NoError(t, err)
	assert.Equal(t, ReasonRerouteLimit, out.Reason)
	assert.Equal(t, 1, out.Attempts)
}

func TestRoute_AcceptAllNeverReroutes(t *testing.T) {
	env := newTestEnv(t, AcceptAll{})
	queries := []string{"progress", "stuck", "slides", "overwhelmed", "black holes", "weather"}
	for _, q := range queries {
		out, err := env.svc.Route(context.Background(), "u", q)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Attempts, q)
		assert.Zero(t, out.Rerouted, q)
	}
	assert.Zero(t, env.recorder.reroutes)
}

func TestRoute_ClassifierFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	boom := errors.New("embedding service down")
	env.classifier.err = boom

	out, err := env.svc.Route(context.Background(), "u", "progress")
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)

	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageClassify, ce.Stage)
	assert.Equal(t, "progress", ce.Query)
	assert.Len(t, env.classifier.calls(), 1, "failures are not retried")
	assert.Equal(t, []string{StageClassify}, env.recorder.errors)
}

func TestHandle_RetrievalFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	boom := errors.New("vector store unreachable")
	env.dispatcher.Register(catalog.RouteMaterialInfo, experts.HandlerFunc(func(context.Context, experts.Request) (string, error) {
		return "", &experts.StageError{Stage: experts.StageRetrieval, Err: boom}
	}))

	sess := env.svc.Sessions().GetOrCreate("u")
	sess.IncrementRerouting()

	resp := env.svc.Handle(context.Background(), QueryRequest{UserID: "u", Query: "where are the lecture slides"})
	assert.Empty(t, resp.Answer)
	assert.Contains(t, resp.Error, "vector store unreachable")
	assert.Contains(t, resp.Error, experts.StageRetrieval)
	assert.Equal(t, 1, sess.ReroutingCounter(), "collaborator failure leaves the counter unaffected")
	assert.Equal(t, []string{experts.StageRetrieval}, env.recorder.errors)
}

func TestHandle(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		req        QueryRequest
		wantAnswer string
		wantErr    string
	}{
		{"answer", QueryRequest{UserID: "u", Query: "I feel overwhelmed"}, experts.MentalSupportText, ""},
		{"fallback is an answer", QueryRequest{UserID: "u", Query: "black holes"}, experts.FallbackText, ""},
		{"missing user", QueryRequest{Query: "progress"}, "", "user_id is required"},
		{"blank query", QueryRequest{UserID: "u", Query: "  "}, "", "query is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.svc.Handle(context.Background(), tt.req)
			assert.Equal(t, tt.wantAnswer, resp.Answer)
			if tt.wantErr == "" {
				assert.Empty(t, resp.Error)
			} else {
				assert.Contains(t, resp.Error, tt.wantErr)
			}
			assert.True(t, (resp.Answer == "") != (resp.Error == ""), "exactly one of answer and error")
		})
	}
}

func TestHandle_EmptyAnswerIsAnError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.dispatcher.Register(catalog.RouteProblemSolve, experts.Canned(""))

	resp := env.svc.Handle(context.Background(), QueryRequest{UserID: "u", Query: "stuck"})
	assert.Empty(t, resp.Answer)
	assert.Contains(t, resp.Error, "empty answer")
}

func TestRoute_ConcurrentUsers(t *testing.T) {
	env := newTestEnv(t, nil)
	const users = 20

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			for i := 0; i < 15; i++ {
				_, err := env.svc.Route(context.Background(), fmt.Sprintf("user%d", u), fmt.Sprintf("progress %d-%d", u, i))
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, users, env.svc.Sessions().Len())
	for u := 0; u < users; u++ {
		sess, _ := env.svc.Sessions().Lookup(fmt.Sprintf("user%d", u))
		ctx := sess.Context()
		require.Len(t, ctx, session.DefaultContextSize)
		for _, q := range ctx {
			assert.True(t, strings.HasPrefix(q, fmt.Sprintf("progress %d-", u)))
		}
	}
}
