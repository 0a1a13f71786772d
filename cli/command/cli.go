package command

import (
	"os"

	deployTerm "vecartdeploy/cli"
	"vecartdeploy/cli/debug"
	cliflags "vecartdeploy/cli/flags"
	"vecartdeploy/pkg/config"
	"vecartdeploy/pkg/config/configfile"
	"vecartdeploy/pkg/output"
	"vecartdeploy/pkg/progress"
	"vecartdeploy/pkg/streams"
	"vecartdeploy/pkg/validator"

	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Streams is an interface which exposes the standard input and output streams
type Streams interface {
	In() *streams.In
	Out() *streams.Out
	Err() *streams.Out
}

// Cli represents the vecart-deploy command line client.
type Cli interface {
	Streams
	SetIn(in *streams.In)
	Apply(ops ...CLIOption) error
	ConfigFile() *configfile.ConfigFile
	Dir() string
	Output() *output.Output
	Progress() *progress.Progress
}

// DeployCli is an instance the vecart-deploy command line client.
// Instances of the client can be returned from NewDeployCli.
type DeployCli struct {
	in         *streams.In
	out        *streams.Out
	err        *streams.Out
	dir        string
	configFile *configfile.ConfigFile
	progress   *progress.Progress
}

// NewDeployCli returns a DeployCli instance with all operators applied on it.
// It applies by default the standard streams.
func NewDeployCli(ops ...CLIOption) (*DeployCli, error) {
	defaultOps := []CLIOption{
		WithStandardStreams(),
	}
	ops = append(defaultOps, ops...)

	cli := &DeployCli{}
	if err := cli.Apply(ops...); err != nil {
		return nil, err
	}
	return cli, nil
}

// Out returns the writer used for stdout
func (cli *DeployCli) Out() *streams.Out {
	return cli.out
}

// Err returns the writer used for stderr
func (cli *DeployCli) Err() *streams.Out {
	return cli.err
}

// SetIn sets the reader used for stdin
func (cli *DeployCli) SetIn(in *streams.In) {
	cli.in = in
}

// In returns the reader used for stdin
func (cli *DeployCli) In() *streams.In {
	return cli.in
}

// Output returns a printer over stdout and stderr.
func (cli *DeployCli) Output() *output.Output {
	return output.New(cli.out, cli.err)
}

// Progress returns the spinner shared by all commands. It is only enabled
// when stderr is a terminal and debug logging is off.
func (cli *DeployCli) Progress() *progress.Progress {
	if cli.progress == nil {
		cli.progress = &progress.Progress{
			ProgressColorEnabled:     cli.err.IsColorEnabled(),
			ProgressIndicatorEnabled: cli.err.IsTerminal() && !debug.IsEnabled(),
		}
	}
	return cli.progress
}

// Dir returns the deployment directory.
func (cli *DeployCli) Dir() string {
	if cli.dir == "" {
		cli.dir = config.Dir()
	}
	return cli.dir
}

// Apply all the operation on the cli
func (cli *DeployCli) Apply(ops ...CLIOption) error {
	for _, op := range ops {
		if err := op(cli); err != nil {
			return err
		}
	}
	return nil
}

// ConfigFile returns the ConfigFile
func (cli *DeployCli) ConfigFile() *configfile.ConfigFile {
	if cli.configFile == nil {
		cli.configFile = config.LoadDefaultConfigFile(cli.Dir(), cli.err)
	}
	return cli.configFile
}

// Initialize runs initialization that must happen after command line flags
// are parsed: logging, the deployment directory and deploy.json.
func (cli *DeployCli) Initialize(opts *cliflags.ClientOptions, ops ...CLIOption) error {
	if err := cli.Apply(ops...); err != nil {
		return err
	}

	logrus.SetOutput(cli.err)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    deployTerm.IsColorDisabled() || !cli.err.IsTerminal(),
		DisableTimestamp: true,
	})
	if err := cliflags.SetLogLevel(opts.LogLevel); err != nil {
		return errdefs.InvalidParameter(err)
	}
	if opts.Debug {
		debug.Enable()
	}

	if opts.Dir != "" {
		config.SetDir(opts.Dir)
	}
	cli.dir = config.Dir()
	if fi, err := os.Stat(cli.dir); err != nil || !fi.IsDir() {
		return errdefs.InvalidParameter(errors.Errorf("deployment directory %s does not exist", cli.dir))
	}

	cfg, err := loadConfig(cli.dir, opts.ConfigFile)
	if err != nil {
		return errdefs.InvalidParameter(err)
	}
	cli.configFile = cfg
	logrus.WithFields(logrus.Fields{"dir": cli.dir, "config": cfg.Filename}).Debug("initialized")

	return nil
}

func loadConfig(dir, file string) (*configfile.ConfigFile, error) {
	var (
		cfg *configfile.ConfigFile
		err error
	)
	if file == "" {
		cfg, err = config.Load(dir)
	} else {
		cfg, err = config.LoadFile(file)
	}
	if err != nil {
		return nil, err
	}

	v, err := validator.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateConfig(cfg, v); err != nil {
		return nil, err
	}
	return cfg, nil
}
