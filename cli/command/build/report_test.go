package build

import (
	"bytes"
	"testing"

	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/target"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCountsWholeMatrix(t *testing.T) {
	var out, errOut bytes.Buffer
	deployCli, err := command.NewDeployCli(command.WithOutputStream(&out), command.WithErrorStream(&errOut))
	require.NoError(t, err)

	matrix := target.DefaultMatrix()
	require.Len(t, matrix, 4)
	printReport(deployCli, &pipeline.Result{
		Targets: matrix,
		Build: &orchestrator.Report{
			Artifacts: []orchestrator.Artifact{{
				Target: matrix[0],
				Name:   "Vecart_v1.0_Windows_x86.exe",
				Path:   "/src/vecart/deploy/tmp/Vecart_v1.0_Windows_x86.exe",
				Size:   2048,
			}},
			Failures: []*orchestrator.TargetError{{
				Target: matrix[1],
				Stage:  orchestrator.StageCompile,
				Err:    errors.New("exit status 2"),
			}},
		},
	})

	assert.Contains(t, out.String(), "Built 1 of 4 targets")
	assert.Contains(t, out.String(), "Vecart_v1.0_Windows_x86.exe")
	assert.Contains(t, errOut.String(), "FAIL  Windows_x86-64: compile failed")
}
