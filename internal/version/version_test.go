package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	tests := []struct {
		version, target string
		expected        bool
	}{
		{"0.1.0", "0.1.0", true},
		{"0.2.0", "0.1.9", true},
		{"0.1.0", "0.10.0", false},
		{"1.0.0", "0.99.99", true},
	}
	for _, tt := range tests {
		t.Run(tt.version+">="+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsVersionGreaterOrEqualThan(tt.version, tt.target))
		})
	}
}

func TestString(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	Version, GitCommit = "1.2.3", "unknown"
	assert.Equal(t, "1.2.3", String())
	assert.True(t, IsValid(Version))

	GitCommit = "0123456789abcdef"
	assert.Equal(t, "1.2.3-01234567", String())
	assert.Contains(t, StringFull(), "Commit=0123456789abcdef")
	assert.False(t, IsValid("not-a-version"))
}
