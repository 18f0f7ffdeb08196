package routing

import (
	"errors"
	"fmt"

	"github.com/hrygo/coursebot/ai/experts"
)

// Collaborator stages.
const (
	StageClassify = "classify"
	StageExpert   = "expert"
)

// ErrInvalidRequest is returned for requests missing a user id or query.
var ErrInvalidRequest = errors.New("invalid request")

// CollaboratorError reports a failing external service. It ends the call without retry.
type CollaboratorError struct {
	Err   error
	Stage string
	Query string
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// stageOf returns the expert stage that failed, or StageExpert when unknown.
func stageOf(err error) string {
	var se *experts.StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StageExpert
}
