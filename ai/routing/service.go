package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/experts"
	"github.com/hrygo/coursebot/ai/filter"
	"github.com/hrygo/coursebot/ai/observability/logging"
	"github.com/hrygo/coursebot/ai/session"
)

// DefaultMaxReroutes bounds rejected assignments before falling back.
const DefaultMaxReroutes = 3

// Config contains the dependencies and limits of the routing controller.
type Config struct {
	Classifier Classifier
	Dispatcher Dispatcher
	Sessions   *session.Store
	// Relevance defaults to AcceptAll.
	Relevance RelevancePolicy
	// Reshaper defaults to DefaultReshape.
	Reshaper Reshaper
	// Recorder is optional.
	Recorder    Recorder
	MaxReroutes int
}

// Service routes queries to experts.
type Service struct {
	classifier  Classifier
	dispatcher  Dispatcher
	sessions    *session.Store
	relevance   RelevancePolicy
	reshaper    Reshaper
	recorder    Recorder
	maxReroutes int
}

// NewService creates a routing controller. A negative MaxReroutes disables rerouting;
// zero uses DefaultMaxReroutes.
func NewService(cfg Config) (*Service, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("routing: classifier is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("routing: dispatcher is required")
	}

	svc := &Service{
		classifier:  cfg.Classifier,
		dispatcher:  cfg.Dispatcher,
		sessions:    cfg.Sessions,
		relevance:   cfg.Relevance,
		reshaper:    cfg.Reshaper,
		recorder:    cfg.Recorder,
		maxReroutes: cfg.MaxReroutes,
	}
	if svc.sessions == nil {
		svc.sessions = session.NewStore(session.DefaultContextSize)
	}
	if svc.relevance == nil {
		svc.relevance = AcceptAll{}
	}
	if svc.reshaper == nil {
		svc.reshaper = ReshapeFunc(DefaultReshape)
	}
	if svc.recorder == nil {
		svc.recorder = noopRecorder{}
	}
	switch {
	case svc.maxReroutes == 0:
		svc.maxReroutes = DefaultMaxReroutes
	case svc.maxReroutes < 0:
		svc.maxReroutes = 0
	}
	return svc, nil
}

// Sessions returns the session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Route resolves query for userID to exactly one expert answer.
//
// Each attempt records the current text in the session context and classifies it.
// An unmatched classification falls back immediately without touching the rerouting
// counter. A rejected assignment increments the counter; once it exceeds MaxReroutes
// the call falls back, otherwise the text is reshaped with recent context and the
// attempt repeats. A call performs at most MaxReroutes+1 classifications.
//
// The counter is reset only after an accepted expert answered successfully, and is
// left as-is on fallback. Collaborator failures end the call with a *CollaboratorError.
func (s *Service) Route(ctx context.Context, userID, query string) (*Outcome, error) {
	start := time.Now()
	sess := s.sessions.GetOrCreate(userID)
	ctx = logging.With(ctx, "user_id", userID)
	log := logging.FromContext(ctx)

	current := query
	rerouted := 0
	for attempt := 1; ; attempt++ {
		sess.AddContext(current)

		res, err := s.classifier.Classify(ctx, current)
		if err != nil {
			return nil, s.fail(ctx, StageClassify, current, err)
		}

		expert, known := catalog.ParseRouteName(res.Route)
		if !res.Matched || !known {
			log.Debug("routing: unmatched query", "query", filter.ForLog(current), "label", res.Route, "attempt", attempt)
			return s.resolve(ctx, start, sess, catalog.RouteFallback, ReasonUnmatched, current, attempt, rerouted)
		}

		if s.relevance.IsRelevant(current, expert) {
			log.Debug("routing: accepted", "expert", expert, "score", res.Score, "attempt", attempt)
			return s.resolve(ctx, start, sess, expert, ReasonAccepted, current, attempt, rerouted)
		}

		rerouted++
		s.recorder.RecordReroute(expert.String())
		counter := sess.IncrementRerouting()
		if counter > s.maxReroutes {
			log.Info("routing: reroute limit reached", "expert", expert, "counter", counter, "attempt", attempt)
			return s.resolve(ctx, start, sess, catalog.RouteFallback, ReasonRerouteLimit, current, attempt, rerouted)
		}

		reshaped := s.reshaper.Reshape(current, sess.RecentContext(ReshapeWindow))
		log.Info("routing: assignment rejected, rerouting",
			"expert", expert,
			"counter", counter,
			"attempt", attempt,
			"reshaped", filter.ForLog(reshaped),
		)
		current = reshaped
	}
}

func (s *Service) resolve(ctx context.Context, start time.Time, sess *session.UserSession, expert catalog.RouteName, reason Reason, query string, attempts, rerouted int) (*Outcome, error) {
	answer, err := s.dispatcher.Dispatch(ctx, expert, experts.Request{UserID: sess.UserID(), Query: query})
	if err != nil {
		return nil, s.fail(ctx, stageOf(err), query, err)
	}
	if reason == ReasonAccepted {
		sess.ResetRerouting()
	}

	s.recorder.RecordRoute(expert.String(), string(reason), attempts, time.Since(start))
	return &Outcome{
		Expert:   expert,
		Answer:   answer,
		Reason:   reason,
		Attempts: attempts,
		Rerouted: rerouted,
	}, nil
}

func (s *Service) fail(ctx context.Context, stage, query string, err error) error {
	s.recorder.RecordCollaboratorError(stage)
	logging.FromContext(ctx).Error("routing: collaborator failed",
		"stage", stage,
		"query", filter.ForLog(query),
		"error", err,
	)
	return &CollaboratorError{Stage: stage, Query: query, Err: err}
}

// Handle is the request boundary: it always returns either an answer or an error message.
func (s *Service) Handle(ctx context.Context, req QueryRequest) QueryResponse {
	if err := validateRequest(req); err != nil {
		return QueryResponse{Error: err.Error()}
	}

	out, err := s.Route(ctx, req.UserID, req.Query)
	if err != nil {
		return QueryResponse{Error: err.Error()}
	}
	if out.Answer == "" {
		return QueryResponse{Error: fmt.Sprintf("%s returned an empty answer", out.Expert)}
	}
	return QueryResponse{Answer: out.Answer}
}

func validateRequest(req QueryRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	return nil
}
