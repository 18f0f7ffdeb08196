// Package experts produces the answer of a resolved route.
package experts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/coursebot/ai/catalog"
)

// Request is what an expert sees of the student query.
type Request struct {
	UserID string
	Query  string
}

// Handler answers a request.
type Handler interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

func (f HandlerFunc) Respond(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Canned answers every request with the same text.
type Canned string

func (c Canned) Respond(context.Context, Request) (string, error) {
	return string(c), nil
}

// Guidance texts of the canned experts.
const (
	ProgressReportText = "Tracking your submitted labs and reviewing feedback will help ensure steady progress."
	ProblemSolveText   = "Start by breaking the problem into smaller parts and focus on the key concepts."
	MaterialInfoText   = "You can access additional study materials through the EG-UY 1004 portal and the university library."
	MentalSupportText  = "If you are feeling overwhelmed, NYU provides free counseling services to help students manage stress."
	FallbackText       = "I'm not sure I understood that. Could you rephrase or ask something more specific?"
)

// StageError tags an expert failure with the collaborator that failed.
type StageError struct {
	Err   error
	Stage string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Dispatcher maps route names to handlers.
type Dispatcher struct {
	handlers map[catalog.RouteName]Handler
	fallback Handler
}

// NewDispatcher returns a dispatcher with the canned experts registered.
// material_info uses the canned study-materials text until Register replaces it.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: map[catalog.RouteName]Handler{
			catalog.RouteProgressReport: Canned(ProgressReportText),
			catalog.RouteProblemSolve:   Canned(ProblemSolveText),
			catalog.RouteMaterialInfo:   Canned(MaterialInfoText),
			catalog.RouteMentalSupport:  Canned(MentalSupportText),
		},
		fallback: Canned(FallbackText),
	}
}

// Register sets the handler of route. Registering fallback replaces the fallback handler.
func (d *Dispatcher) Register(route catalog.RouteName, h Handler) {
	if route == catalog.RouteFallback {
		d.fallback = h
		return
	}
	d.handlers[route] = h
}

// Dispatch runs the handler of route. Unknown routes use the fallback handler.
// Handler errors are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, route catalog.RouteName, req Request) (string, error) {
	h, ok := d.handlers[route]
	if !ok {
		if route != catalog.RouteFallback {
			slog.Debug("experts: unknown route, using fallback", "route", route)
		}
		h = d.fallback
	}
	return h.Respond(ctx, req)
}
