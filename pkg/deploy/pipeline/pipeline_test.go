package pipeline_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"vecartdeploy/pkg/archive"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/sumfile"
	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/deploy/toolchain/toolchaintest"
	"vecartdeploy/pkg/deploy/workspace"

	"github.com/docker/docker/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepo lays out an application checkout with a deployment directory
// inside it and returns the deployment directory.
func newRepo(t *testing.T, mainGo string) string {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.go"), []byte(mainGo), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(src, "images"), 0o755))
	f, err := os.Create(filepath.Join(src, "images", "logo.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 512, 300))))
	require.NoError(t, f.Close())

	deploy := filepath.Join(src, "deployment")
	require.NoError(t, os.MkdirAll(deploy, 0o755))
	return deploy
}

const mainGo = "package main\n\nconst Version = \"1.4.2\"\n\nfunc main() {}\n"

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRun(t *testing.T) {
	deploy := newRepo(t, mainGo)
	fake := toolchaintest.New("Vecart")

	res, err := pipeline.New(pipeline.DefaultOptions(deploy), fake).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1.4.2", res.Version.String())
	assert.Len(t, res.Build.Artifacts, 4)
	assert.Equal(t, target.DefaultMatrix(), res.Targets)
	assert.Equal(t, []string{
		"Vecart_v1.4.2_Linux_x86",
		"Vecart_v1.4.2_Linux_x86-64",
		"Vecart_v1.4.2_Windows_x86-64.exe",
		"Vecart_v1.4.2_Windows_x86.exe",
		"icon.ico",
	}, files(t, filepath.Join(deploy, "tmp")))
	assert.Len(t, fake.Injected(), 2)
	assert.Equal(t, res.Icon, fake.Injected()[0].Icon)
}

func TestRunRefusesWorkspaceOverSources(t *testing.T) {
	deploy := newRepo(t, mainGo)
	opts := pipeline.DefaultOptions(deploy)
	opts.WorkspaceDir = filepath.Join(deploy, "..")

	_, err := pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageIcon, stageErr.Stage)
	assert.ErrorIs(t, err, workspace.ErrProtected)
	assert.FileExists(t, filepath.Join(deploy, "..", "main.go"))
}

func TestRunTwiceLeavesNoLeftovers(t *testing.T) {
	deploy := newRepo(t, mainGo)
	opts := pipeline.DefaultOptions(deploy)

	_, err := pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	require.NoError(t, err)
	first := files(t, filepath.Join(deploy, "tmp"))

	// Something unrelated lands in the workspace between runs.
	require.NoError(t, os.WriteFile(filepath.Join(deploy, "tmp", "notes.txt"), []byte("x"), 0o444))

	_, err = pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, files(t, filepath.Join(deploy, "tmp")))
}

func TestRunVersionNotFound(t *testing.T) {
	deploy := newRepo(t, "package main\n\nfunc main() {}\n")
	fake := toolchaintest.New("Vecart")

	_, err := pipeline.New(pipeline.DefaultOptions(deploy), fake).Run(context.Background())

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageVersion, stageErr.Stage)
	assert.ErrorIs(t, err, pipeline.ErrVersionNotFound)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Empty(t, fake.Compiled())

	_, statErr := os.Stat(filepath.Join(deploy, "tmp"))
	assert.True(t, os.IsNotExist(statErr), "workspace must not be touched before the version is known")
}

func TestRunAllowMissingVersion(t *testing.T) {
	deploy := newRepo(t, "package main\n")
	opts := pipeline.DefaultOptions(deploy)
	opts.AllowMissingVersion = true
	opts.Targets = []target.Target{{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"}}

	res, err := pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Version.IsFound())
	assert.Equal(t, "Vecart__Linux_x86-64", res.Build.Artifacts[0].Name)
}

func TestRunStrictVersion(t *testing.T) {
	deploy := newRepo(t, "const Version = \"nightly\"\n")
	opts := pipeline.DefaultOptions(deploy)
	opts.Targets = []target.Target{{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"}}

	res, err := pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	require.NoError(t, err, "non-semver versions only warn by default")
	assert.Equal(t, "Vecart_vnightly_Linux_x86-64", res.Build.Artifacts[0].Name)

	opts.StrictVersion = true
	_, err = pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	assert.True(t, errdefs.IsInvalidParameter(err))
}

func TestRunMissingLogo(t *testing.T) {
	deploy := newRepo(t, mainGo)
	require.NoError(t, os.Remove(filepath.Join(deploy, "..", "images", "logo.png")))
	fake := toolchaintest.New("Vecart")

	_, err := pipeline.New(pipeline.DefaultOptions(deploy), fake).Run(context.Background())

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageIcon, stageErr.Stage)
	assert.Empty(t, fake.Compiled())
}

func TestRunBuildFailureNamesTarget(t *testing.T) {
	deploy := newRepo(t, mainGo)
	fake := toolchaintest.New("Vecart")
	fake.FailCompile["Linux_x86"] = 1

	res, err := pipeline.New(pipeline.DefaultOptions(deploy), fake).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build: compile Linux_x86")
	assert.True(t, errdefs.IsSystem(err))

	var terr *orchestrator.TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "linux/386", terr.Target.Platform())
	assert.Len(t, res.Build.Artifacts, 2)
}

func TestRunChecksumsAndArchives(t *testing.T) {
	deploy := newRepo(t, mainGo)
	opts := pipeline.DefaultOptions(deploy)
	opts.Targets = []target.Target{
		{OS: "windows", Arch: "amd64", Label: "Windows_x86-64"},
		{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"},
	}
	opts.Checksums = true
	opts.Archive = archive.Zstd

	res, err := pipeline.New(opts, toolchaintest.New("Vecart")).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Archives, 2)

	sums, err := sumfile.Read(res.SumFile)
	require.NoError(t, err)
	var names []string
	for _, s := range sums {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Vecart_v1.4.2_Linux_x86-64",
		"Vecart_v1.4.2_Linux_x86-64.tar.zst",
		"Vecart_v1.4.2_Windows_x86-64.exe",
		"Vecart_v1.4.2_Windows_x86-64.exe.tar.zst",
	}, names)
	assert.NoError(t, sumfile.Verify(context.Background(), filepath.Join(deploy, "tmp"), sums))
}
