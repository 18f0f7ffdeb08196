package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.yaml", "name: demo\nitems:\n  - a\n  - b\n")
	writeFile(t, dir, "typo.yaml", "name: demo\nitemz:\n  - a\n")

	loader := NewLoader(dir)
	assert.Equal(t, dir, loader.BaseDir())

	t.Run("relative path", func(t *testing.T) {
		var got sample
		require.NoError(t, loader.Load("ok.yaml", &got))
		assert.Equal(t, sample{Name: "demo", Items: []string{"a", "b"}}, got)
	})

	t.Run("absolute path", func(t *testing.T) {
		var got sample
		require.NoError(t, NewLoader("unused").Load(filepath.Join(dir, "ok.yaml"), &got))
		assert.Equal(t, "demo", got.Name)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var got sample
		err := loader.Load("typo.yaml", &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "typo.yaml")
	})

	t.Run("missing file", func(t *testing.T) {
		var got sample
		assert.Error(t, loader.Load("missing.yaml", &got))
	})
}
