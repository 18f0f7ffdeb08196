// Package routing decides which expert answers a student query.
//
// A query is classified, checked by a relevance policy, and either dispatched,
// reshaped with recent session context and classified again, or sent to the
// fallback expert. The retry loop is bounded by Config.MaxReroutes.
package routing

import (
	"context"
	"time"

	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/classifier"
	"github.com/hrygo/coursebot/ai/experts"
)

// Classifier is the classification dependency of the controller.
type Classifier = classifier.Classifier

// Dispatcher produces the answer of a resolved expert.
type Dispatcher interface {
	Dispatch(ctx context.Context, expert catalog.RouteName, req experts.Request) (string, error)
}

// Recorder receives per-call routing metrics.
type Recorder interface {
	RecordRoute(expert, reason string, attempts int, latency time.Duration)
	RecordReroute(expert string)
	RecordCollaboratorError(stage string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRoute(string, string, int, time.Duration) {}
func (noopRecorder) RecordReroute(string)                          {}
func (noopRecorder) RecordCollaboratorError(string)                {}

// Reason explains how a call resolved.
type Reason string

const (
	ReasonAccepted     Reason = "accepted"
	ReasonUnmatched    Reason = "unmatched"
	ReasonRerouteLimit Reason = "reroute_limit"
)

// Outcome is the resolved expert and its answer.
type Outcome struct {
	Expert catalog.RouteName `json:"expert"`
	Answer string            `json:"answer"`
	Reason Reason            `json:"reason"`
	// Attempts counts classifications performed in this call.
	Attempts int `json:"attempts"`
	// Rerouted counts rejected assignments in this call.
	Rerouted int `json:"rerouted"`
}

// QueryRequest is the inbound request shape.
type QueryRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

// QueryResponse carries exactly one of Answer or Error.
type QueryResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}
