package flags

import (
	"vecartdeploy/pkg/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// ClientOptions are the global options of vecart-deploy.
type ClientOptions struct {
	Debug    bool
	LogLevel string
	// Dir is the deployment directory, holding deploy.json and the
	// workspace.
	Dir string
	// ConfigFile overrides the deploy.json location.
	ConfigFile string
}

// NewClientOptions returns a new ClientOptions.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{}
}

// InstallFlags adds flags for the common options on the FlagSet
func (o *ClientOptions) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Dir, "dir", config.Dir(), "Deployment directory (env "+config.EnvOverrideDir+")")
	flags.StringVar(&o.ConfigFile, "config", "", "Path to the config file (default \"<dir>/"+config.ConfigFileName+"\")")
	flags.BoolVarP(&o.Debug, "debug", "D", false, "Enable debug mode")
	flags.StringVarP(&o.LogLevel, "log-level", "l", "info", `Set the logging level ("debug", "info", "warn", "error", "fatal")`)
}

// SetLogLevel sets the logrus logging level
func SetLogLevel(logLevel string) error {
	if logLevel == "" {
		logrus.SetLevel(logrus.InfoLevel)
		return nil
	}
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Errorf("unable to parse logging level: %s", logLevel)
	}
	logrus.SetLevel(lvl)
	return nil
}
