package routing

import "strings"

// ReshapeWindow is how many recent context entries a reshape may use.
const ReshapeWindow = 3

// Reshaper rewrites a rejected query using recent session context.
type Reshaper interface {
	Reshape(query string, context []string) string
}

// ReshapeFunc adapts a function to Reshaper.
type ReshapeFunc func(query string, context []string) string

func (f ReshapeFunc) Reshape(query string, context []string) string {
	return f(query, context)
}

// DefaultReshape appends the last ReshapeWindow context entries, oldest first:
//
//	<query> (Additional context: c1 | c2 | c3)
//
// The suffix is always appended, so the result differs from query even with no context.
func DefaultReshape(query string, context []string) string {
	if len(context) > ReshapeWindow {
		context = context[len(context)-ReshapeWindow:]
	}
	return query + " (Additional context: " + strings.Join(context, " | ") + ")"
}
