package routing

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/hrygo/coursebot/ai/catalog"
)

// RelevancePolicy decides whether a classified expert fits the query.
// A rejection sends the query through the reshape and reclassify loop.
type RelevancePolicy interface {
	IsRelevant(query string, expert catalog.RouteName) bool
}

// RelevanceFunc adapts a function to RelevancePolicy.
type RelevanceFunc func(query string, expert catalog.RouteName) bool

func (f RelevanceFunc) IsRelevant(query string, expert catalog.RouteName) bool {
	return f(query, expert)
}

// AcceptAll currently accepts every assignment.
// While it is the active policy the reroute path is never taken.
type AcceptAll struct{}

func (AcceptAll) IsRelevant(string, catalog.RouteName) bool { return true }

var (
	_ RelevancePolicy = AcceptAll{}
	_ RelevancePolicy = RelevanceFunc(nil)
	_ RelevancePolicy = (*CELPolicy)(nil)
)

// CELPolicy evaluates a boolean CEL expression over the variables
// `query` (string) and `expert` (string), for example:
//
//	!(expert == "mental_support" && query.contains("homework"))
type CELPolicy struct {
	expr    string
	program cel.Program
}

// NewCELPolicy compiles expr once. The expression must return a bool.
func NewCELPolicy(expr string) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("query", cel.StringType),
		cel.Variable("expert", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile relevance rule: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("relevance rule must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build relevance program: %w", err)
	}
	return &CELPolicy{expr: expr, program: prg}, nil
}

// IsRelevant evaluates the rule. Evaluation errors accept the assignment.
func (p *CELPolicy) IsRelevant(query string, expert catalog.RouteName) bool {
	out, _, err := p.program.Eval(map[string]any{
		"query":  query,
		"expert": expert.String(),
	})
	if err != nil {
		slog.Warn("relevance rule evaluation failed, accepting assignment",
			"rule", p.expr,
			"expert", expert,
			"error", err,
		)
		return true
	}
	ok, isBool := out.Value().(bool)
	return !isBool || ok
}

// NewRelevancePolicy returns AcceptAll for an empty rule and a CELPolicy otherwise.
func NewRelevancePolicy(rule string) (RelevancePolicy, error) {
	if rule == "" {
		return AcceptAll{}, nil
	}
	return NewCELPolicy(rule)
}
