package orchestrator_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/deploy/toolchain"
	"vecartdeploy/pkg/deploy/toolchain/toolchaintest"
	"vecartdeploy/pkg/deploy/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	src  string
	ws   *workspace.Workspace
	icon string
	fake *toolchaintest.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))

	ws := workspace.New(filepath.Join(root, "deployment", "tmp"))
	require.NoError(t, ws.Reset(context.Background()))
	icon := ws.Path("icon.ico")
	require.NoError(t, os.WriteFile(icon, []byte("ico"), 0o644))

	return &fixture{src: src, ws: ws, icon: icon, fake: toolchaintest.New("Vecart")}
}

func (f *fixture) orchestrator(policy orchestrator.FailurePolicy) *orchestrator.Orchestrator {
	return orchestrator.New(f.fake, f.ws, orchestrator.Options{
		SourceDir: f.src,
		Binary:    "Vecart",
		Product:   "Vecart",
		Icon:      f.icon,
		Policy:    policy,
	})
}

func workspaceFiles(t *testing.T, ws *workspace.Workspace) []string {
	t.Helper()
	entries, err := os.ReadDir(ws.Dir())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunDefaultMatrix(t *testing.T) {
	f := newFixture(t)

	report, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0", target.DefaultMatrix())
	require.NoError(t, err)
	require.Len(t, report.Artifacts, 4)
	assert.Empty(t, report.Failures)

	assert.Equal(t, []string{
		"Vecart_v1.0_Linux_x86",
		"Vecart_v1.0_Linux_x86-64",
		"Vecart_v1.0_Windows_x86-64.exe",
		"Vecart_v1.0_Windows_x86.exe",
		"icon.ico",
	}, workspaceFiles(t, f.ws))

	for _, a := range report.Artifacts {
		data, err := os.ReadFile(a.Path)
		require.NoError(t, err)
		assert.Equal(t, toolchaintest.Contents(a.Target), string(data), "artifact %s holds the wrong binary", a.Name)
		assert.EqualValues(t, len(data), a.Size)
	}

	// Build outputs are moved, not copied.
	for _, name := range []string{"Vecart", "Vecart.exe"} {
		_, err := os.Stat(filepath.Join(f.src, name))
		assert.True(t, os.IsNotExist(err), "%s left in source dir", name)
	}

	assert.Equal(t, target.DefaultMatrix(), f.fake.Compiled(), "targets must be built in matrix order")
	injected := f.fake.Injected()
	require.Len(t, injected, 2)
	assert.Equal(t, f.ws.Path("Vecart_v1.0_Windows_x86.exe"), injected[0].Exe)
	assert.Equal(t, f.ws.Path("Vecart_v1.0_Windows_x86-64.exe"), injected[1].Exe)
	assert.Equal(t, f.icon, injected[0].Icon)
}

func TestRunInjectsOnlyForWindows(t *testing.T) {
	t.Run("windows", func(t *testing.T) {
		f := newFixture(t)
		win := []target.Target{{OS: "windows", Arch: "amd64", Label: "Windows_x86-64"}}

		_, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0", win)
		require.NoError(t, err)

		injected := f.fake.Injected()
		require.Len(t, injected, 1)
		assert.Equal(t, f.ws.Path("Vecart_v1.0_Windows_x86-64.exe"), injected[0].Exe)
	})

	t.Run("linux", func(t *testing.T) {
		f := newFixture(t)
		linux := []target.Target{{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"}}

		_, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0", linux)
		require.NoError(t, err)
		assert.Empty(t, f.fake.Injected())
	})
}

func TestRunAbortStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	f.fake.FailCompile["Windows_x86-64"] = 2

	report, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0", target.DefaultMatrix())

	var terr *orchestrator.TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, orchestrator.StageCompile, terr.Stage)
	assert.Equal(t, "Windows_x86-64", terr.Target.Label)

	var toolErr *toolchain.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 2, toolErr.ExitCode)

	assert.Len(t, f.fake.Compiled(), 2)
	require.Len(t, report.Artifacts, 1)
	assert.Equal(t, "Vecart_v1.0_Windows_x86.exe", report.Artifacts[0].Name)
	require.Len(t, report.Failures, 1)
}

func TestRunContinueBuildsRemainingTargets(t *testing.T) {
	f := newFixture(t)
	f.fake.FailCompile["Windows_x86"] = 1
	f.fake.FailCompile["Linux_x86"] = 1

	report, err := f.orchestrator(orchestrator.Continue).Run(context.Background(), "v1.0", target.DefaultMatrix())

	var multi *orchestrator.MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Failures, 2)
	assert.Contains(t, err.Error(), "2 targets failed")
	assert.Contains(t, err.Error(), "compile Windows_x86:")
	assert.Contains(t, err.Error(), "compile Linux_x86:")

	assert.Len(t, f.fake.Compiled(), 4)
	require.Len(t, report.Artifacts, 2)
	assert.Equal(t, "Vecart_v1.0_Windows_x86-64.exe", report.Artifacts[0].Name)
	assert.Equal(t, "Vecart_v1.0_Linux_x86-64", report.Artifacts[1].Name)
}

func TestRunInjectFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.fake.FailInject["Vecart_v1.0_Windows_x86.exe"] = 1

	_, err := f.orchestrator(orchestrator.Continue).Run(context.Background(), "v1.0", target.DefaultMatrix())

	var terr *orchestrator.TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, orchestrator.StageInject, terr.Stage)
	assert.Len(t, f.fake.Compiled(), 1, "injection failures end the run even under the continue policy")
}

func TestRunMissingOutput(t *testing.T) {
	f := newFixture(t)
	f.fake.SkipOutput["Linux_x86"] = true

	_, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0",
		[]target.Target{{OS: "linux", Arch: "386", Label: "Linux_x86"}})

	var terr *orchestrator.TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, orchestrator.StageRelocate, terr.Stage)
}

func TestRunRemovesStaleOutput(t *testing.T) {
	f := newFixture(t)
	f.fake.SkipOutput["Linux_x86"] = true
	stale := filepath.Join(f.src, "Vecart")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o755))

	_, err := f.orchestrator(orchestrator.Abort).Run(context.Background(), "v1.0",
		[]target.Target{{OS: "linux", Arch: "386", Label: "Linux_x86"}})
	require.Error(t, err, "a stale binary must not be shipped")

	_, statErr := os.Stat(f.ws.Path("Vecart_v1.0_Linux_x86"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orchestrator(orchestrator.Abort).Run(ctx, "v1.0", target.DefaultMatrix())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.fake.Compiled())
}

func TestRunReportsProgress(t *testing.T) {
	f := newFixture(t)
	var seen []string
	o := orchestrator.New(f.fake, f.ws, orchestrator.Options{
		SourceDir: f.src,
		Icon:      f.icon,
		OnTarget: func(i, n int, tg target.Target) {
			assert.Equal(t, 4, n)
			seen = append(seen, tg.Label)
		},
	})

	_, err := o.Run(context.Background(), "v1.0", target.DefaultMatrix())
	require.NoError(t, err)
	assert.Equal(t, []string{"Windows_x86", "Windows_x86-64", "Linux_x86", "Linux_x86-64"}, seen)
}
