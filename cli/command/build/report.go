package build

import (
	"fmt"
	"path/filepath"
	"time"

	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/output"

	"github.com/docker/go-units"
	"github.com/morikuni/aec"
)

func printReport(deployCli command.Cli, res *pipeline.Result) {
	out := deployCli.Output()
	if res.Build == nil {
		return
	}

	for _, a := range res.Build.Artifacts {
		size := units.HumanSize(float64(a.Size))
		out.Prettyln(output.Text{
			Plain: fmt.Sprintf("  ok    %s (%s)", a.Name, size),
			Fancy: fmt.Sprintf("  %s %s %s", aec.GreenF.Apply("✓"), a.Name, aec.LightBlackF.Apply("("+size+")")),
		})
	}
	for _, f := range res.Build.Failures {
		out.PrettyErrorln(output.Text{
			Plain: fmt.Sprintf("  FAIL  %s: %s failed", f.Target.Label, f.Stage),
			Fancy: fmt.Sprintf("  %s %s %s", aec.RedF.Apply("✗"), f.Target.Label, aec.LightBlackF.Apply(f.Stage+" failed")),
		})
	}

	for _, a := range res.Archives {
		out.Prettyln(output.Text{Plain: "  archive  " + filepath.Base(a)})
	}
	if res.SumFile != "" {
		out.Prettyln(output.Text{Plain: "  sums     " + filepath.Base(res.SumFile)})
	}

	total := len(res.Targets)
	summary := fmt.Sprintf("Built %d of %d targets for %s in %s",
		len(res.Build.Artifacts), total, versionLabel(res), units.HumanDuration(res.Duration.Round(time.Millisecond)))
	if len(res.Build.Artifacts) > 0 {
		summary += " into " + filepath.Dir(res.Build.Artifacts[0].Path)
	}
	out.Prettyln(output.Text{Plain: summary, Fancy: aec.Bold.Apply(summary)})
}

func versionLabel(res *pipeline.Result) string {
	if !res.Version.IsFound() {
		return "no version"
	}
	return res.Version.String()
}
