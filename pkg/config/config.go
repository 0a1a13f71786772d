// Package config locates the deployment directory and loads its deploy.json.
package config

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"vecartdeploy/pkg/config/configfile"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// EnvOverrideDir names the environment variable that overrides the
	// deployment directory.
	EnvOverrideDir = "VECART_DEPLOY_DIR"
	// ConfigFileName is the name of the optional config file.
	ConfigFileName = "deploy.json"
)

var (
	initDir   sync.Once
	deployDir string
)

func resetDir() {
	if deployDir == "" {
		deployDir = os.Getenv(EnvOverrideDir)
	}
	if deployDir == "" {
		deployDir = "."
	}
	if abs, err := filepath.Abs(deployDir); err == nil {
		deployDir = abs
	}
}

// Dir returns the deployment directory: the value of VECART_DEPLOY_DIR, or
// the current working directory.
func Dir() string {
	initDir.Do(resetDir)
	return deployDir
}

// SetDir sets the deployment directory.
func SetDir(dir string) {
	initDir.Do(resetDir)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	deployDir = filepath.Clean(dir)
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Load reads deploy.json from dir. A missing file yields the defaults.
func Load(dir string) (*configfile.ConfigFile, error) {
	cfg, err := LoadFile(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return configfile.New(Path(dir)), nil
	}
	return cfg, err
}

// LoadFile reads the config file at filename, which must exist.
func LoadFile(filename string) (*configfile.ConfigFile, error) {
	if abs, err := filepath.Abs(filename); err == nil {
		filename = abs
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	cfg := configfile.New(filename)
	if err := cfg.LoadFromReader(f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}
	return cfg, nil
}

// LoadDefaultConfigFile loads the config of dir, printing a warning to
// stderr and falling back to the defaults if it cannot be read.
func LoadDefaultConfigFile(dir string, stderr io.Writer) *configfile.ConfigFile {
	cfg, err := Load(dir)
	if err != nil {
		logrus.WithError(err).Debug("falling back to default configuration")
		_, _ = io.WriteString(stderr, "WARNING: Error loading config file: "+err.Error()+"\n")
		return configfile.New(Path(dir))
	}
	return cfg
}
