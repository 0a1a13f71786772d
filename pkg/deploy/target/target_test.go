package target_test

import (
	"testing"

	"vecartdeploy/pkg/deploy/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	tests := []struct {
		target   target.Target
		expected string
	}{
		{target.Target{OS: "windows", Arch: "386", Label: "Windows_x86"}, "Vecart_v1.0_Windows_x86.exe"},
		{target.Target{OS: "windows", Arch: "amd64", Label: "Windows_x86-64"}, "Vecart_v1.0_Windows_x86-64.exe"},
		{target.Target{OS: "linux", Arch: "386", Label: "Linux_x86"}, "Vecart_v1.0_Linux_x86"},
		{target.Target{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"}, "Vecart_v1.0_Linux_x86-64"},
	}

	for _, tt := range tests {
		t.Run(tt.target.Label, func(t *testing.T) {
			assert.Equal(t, tt.expected, target.ArtifactName(target.DefaultProduct, "v1.0", tt.target))
		})
	}
}

func TestArtifactNameEmptyVersion(t *testing.T) {
	linux := target.Target{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"}
	assert.Equal(t, "Vecart__Linux_x86-64", target.ArtifactName("", "", linux))
}

func TestDefaultMatrixIsUnique(t *testing.T) {
	matrix := target.DefaultMatrix()
	require.Len(t, matrix, 4)
	assert.NoError(t, target.CheckUnique(matrix))

	names := map[string]bool{}
	for _, tg := range matrix {
		name := target.ArtifactName(target.DefaultProduct, "v2.3.4", tg)
		assert.False(t, names[name], "duplicate artifact name %s", name)
		names[name] = true
	}
}

func TestCheckUnique(t *testing.T) {
	err := target.CheckUnique([]target.Target{
		{OS: "linux", Arch: "amd64", Label: "Linux"},
		{OS: "linux", Arch: "386", Label: "Linux"},
	})
	assert.ErrorContains(t, err, `share the label "Linux"`)

	err = target.CheckUnique([]target.Target{
		{OS: "linux", Arch: "amd64", Label: "A"},
		{OS: "linux", Arch: "amd64", Label: "B"},
	})
	assert.ErrorContains(t, err, "listed twice")
}

func TestDefaultLabel(t *testing.T) {
	assert.Equal(t, "Windows_x86-64", target.DefaultLabel("windows", "amd64"))
	assert.Equal(t, "Linux_x86", target.DefaultLabel("linux", "386"))
	assert.Equal(t, "macOS_ARM64", target.DefaultLabel("darwin", "arm64"))
	assert.Equal(t, "Plan9_mips", target.DefaultLabel("plan9", "mips"))
}

func TestNormalizeKeepsExplicitLabels(t *testing.T) {
	in := []target.Target{
		{OS: "linux", Arch: "arm64"},
		{OS: "windows", Arch: "amd64", Label: "Win64"},
	}
	out := target.Normalize(in)
	assert.Equal(t, "Linux_ARM64", out[0].Label)
	assert.Equal(t, "Win64", out[1].Label)
	assert.Empty(t, in[0].Label, "input must not be modified")
}

func TestFilter(t *testing.T) {
	matrix := target.DefaultMatrix()

	labels := func(ts []target.Target) []string {
		var out []string
		for _, tg := range ts {
			out = append(out, tg.Label)
		}
		return out
	}

	tests := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{"no patterns", nil, []string{"Windows_x86", "Windows_x86-64", "Linux_x86", "Linux_x86-64"}},
		{"os wildcard", []string{"windows/*"}, []string{"Windows_x86", "Windows_x86-64"}},
		{"os only", []string{"linux"}, []string{"Linux_x86", "Linux_x86-64"}},
		{"exact platform", []string{"linux/amd64"}, []string{"Linux_x86-64"}},
		{"label", []string{"Windows_x86-64"}, []string{"Windows_x86-64"}},
		{"exclusion only", []string{"!linux/386"}, []string{"Windows_x86", "Windows_x86-64", "Linux_x86-64"}},
		{"matrix order kept", []string{"linux/amd64", "windows/386"}, []string{"Windows_x86", "Linux_x86-64"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := target.Filter(matrix, tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, labels(selected))
		})
	}
}

func TestFilterNoMatch(t *testing.T) {
	_, err := target.Filter(target.DefaultMatrix(), []string{"darwin/*"})
	assert.ErrorContains(t, err, "no target matches")
}
