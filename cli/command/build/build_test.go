package build

import (
	"testing"

	"vecartdeploy/pkg/archive"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/target"

	"github.com/docker/docker/errdefs"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	var opts Options
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	InstallFlags(flags, &opts)
	require.NoError(t, flags.Parse(args))
	opts.MarkSet(flags)
	return &opts
}

func TestApplyKeepsConfigWhenUnset(t *testing.T) {
	popts := pipeline.DefaultOptions("/src/vecart/deploy")
	popts.Checksums = true
	popts.Archive = archive.Zstd

	require.NoError(t, parse(t).Apply(&popts))
	assert.True(t, popts.Checksums)
	assert.Equal(t, archive.Zstd, popts.Archive)
	assert.Equal(t, orchestrator.Abort, popts.Policy)
	assert.Len(t, popts.Targets, 4)
}

func TestApplyOverrides(t *testing.T) {
	popts := pipeline.DefaultOptions("/src/vecart/deploy")
	popts.Checksums = true

	opts := parse(t, "--checksums=false", "--archive", "gzip", "-k", "--strict-version", "-t", "windows/*")
	require.NoError(t, opts.Apply(&popts))

	assert.False(t, popts.Checksums)
	assert.Equal(t, archive.Gzip, popts.Archive)
	assert.Equal(t, orchestrator.Continue, popts.Policy)
	assert.True(t, popts.StrictVersion)
	assert.Equal(t, []target.Target{
		{OS: "windows", Arch: "386", Label: "Windows_x86"},
		{OS: "windows", Arch: "amd64", Label: "Windows_x86-64"},
	}, popts.Targets)
}

func TestApplyErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{name: "policy", args: []string{"--on-failure", "retry"}},
		{name: "conflict", args: []string{"--on-failure", "abort", "--keep-going"}},
		{name: "archive", args: []string{"--archive", "rar"}},
		{name: "no match", args: []string{"--target", "darwin/*"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			popts := pipeline.DefaultOptions("/src/vecart/deploy")
			err := parse(t, tc.args...).Apply(&popts)
			assert.True(t, errdefs.IsInvalidParameter(err), "got %v", err)
		})
	}
}
