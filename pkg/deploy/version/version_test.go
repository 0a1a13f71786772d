package version_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vecartdeploy/pkg/deploy/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
		found    bool
	}{
		{
			name:     "plain declaration",
			source:   `const Version = "1.4.2"`,
			expected: "v1.4.2",
			found:    true,
		},
		{
			name:     "two component version",
			source:   "package main\n\nimport \"fmt\"\n\nconst Version = \"1.0\"\n\nfunc main() {}\n",
			expected: "v1.0",
			found:    true,
		},
		{
			name:     "first match wins",
			source:   "const Version = \"2.0.0\"\nconst Version = \"3.0.0\"\n",
			expected: "v2.0.0",
			found:    true,
		},
		{
			name:     "last two quotes",
			source:   `const Version string = "ignored" + "5.6.7" // trailing`,
			expected: "v5.6.7",
			found:    true,
		},
		{
			name:   "no declaration",
			source: "package main\n\nvar version = \"1.2.3\"\n",
		},
		{
			name: "empty file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := version.NewResolver().Resolve(strings.NewReader(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.found, v.IsFound())
			assert.Equal(t, tt.expected, v.String())
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	_, err := version.NewResolver().Resolve(strings.NewReader("const Version = unquoted\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nconst Version = \"1.4.2\"\n"), 0o644))

	v, err := version.NewResolver().ResolveFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1.4.2", v.String())
	assert.Equal(t, "1.4.2", v.Literal())

	_, err = version.NewResolver().ResolveFile(filepath.Join(dir, "missing.go"))
	assert.Error(t, err)
}

func TestSemver(t *testing.T) {
	sv, err := version.Found("1.0").Semver()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", sv.String())

	_, err = version.Found("not-a-version").Semver()
	assert.Error(t, err)

	_, err = version.NotFound().Semver()
	assert.Error(t, err)
	assert.Equal(t, "", version.NotFound().String())
}
