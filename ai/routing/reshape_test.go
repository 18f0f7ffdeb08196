package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReshape(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		context  []string
		expected string
	}{
		{"empty context", "help", nil, "help (Additional context: )"},
		{"one entry", "help", []string{"lab 2"}, "help (Additional context: lab 2)"},
		{
			"uses last three oldest first",
			"help",
			[]string{"a", "b", "c", "d", "e"},
			"help (Additional context: c | d | e)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultReshape(tt.query, tt.context)
			assert.Equal(t, tt.expected, got)
			assert.NotEqual(t, tt.query, got)
			assert.Equal(t, got, DefaultReshape(tt.query, tt.context), "deterministic")
		})
	}
}

func TestDefaultReshape_DoesNotMutateContext(t *testing.T) {
	ctx := []string{"a", "b", "c", "d"}
	_ = DefaultReshape("q", ctx)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ctx)
}

func TestReshapeFunc(t *testing.T) {
	r := ReshapeFunc(func(q string, _ []string) string { return q + "!" })
	assert.Equal(t, "q!", r.Reshape("q", nil))
}
