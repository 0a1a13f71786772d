package configfile

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"vecartdeploy/pkg/deploy/target"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConfigFile is the deploy.json file of a deployment directory. Relative
// paths are resolved against the deployment directory, except VersionFile
// and Logo which are relative to SourceDir.
type ConfigFile struct {
	Filename string `json:"-"` // Note: for internal use only

	Product        string          `json:"product,omitempty" validate:"required,label"`
	Binary         string          `json:"binary,omitempty" validate:"required,label"`
	SourceDir      string          `json:"sourceDir,omitempty" validate:"required"`
	VersionFile    string          `json:"versionFile,omitempty" validate:"required"`
	Logo           string          `json:"logo,omitempty" validate:"required"`
	Workspace      string          `json:"workspace,omitempty" validate:"required"`
	Icon           string          `json:"icon,omitempty" validate:"required,endswith=.ico"`
	Injector       string          `json:"injector,omitempty" validate:"required,oneof=auto resourcehacker winres"`
	ResourceHacker string          `json:"resourceHacker,omitempty"`
	OnFailure      string          `json:"onFailure,omitempty" validate:"required,oneof=abort continue"`
	Checksums      bool            `json:"checksums,omitempty"`
	Archive        string          `json:"archive,omitempty" validate:"omitempty,oneof=none tar gzip gz zstd zst"`
	Targets        []target.Target `json:"targets,omitempty" validate:"required,min=1,dive"`
}

// Defaults, matching the layout of the Vecart repository.
const (
	DefaultSourceDir   = ".."
	DefaultVersionFile = "main.go"
	DefaultLogo        = "images/logo.png"
	DefaultWorkspace   = "tmp"
	DefaultIcon        = "icon.ico"
	DefaultInjector    = "auto"
	DefaultOnFailure   = "abort"
)

// New initializes a configuration with every default filled in for the
// given filename 'fn'.
func New(fn string) *ConfigFile {
	c := &ConfigFile{Filename: fn}
	c.SetDefaults()
	return c
}

// SetDefaults fills every unset field.
func (configFile *ConfigFile) SetDefaults() {
	setDefault := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	setDefault(&configFile.Product, target.DefaultProduct)
	setDefault(&configFile.Binary, configFile.Product)
	setDefault(&configFile.SourceDir, DefaultSourceDir)
	setDefault(&configFile.VersionFile, DefaultVersionFile)
	setDefault(&configFile.Logo, DefaultLogo)
	setDefault(&configFile.Workspace, DefaultWorkspace)
	setDefault(&configFile.Icon, DefaultIcon)
	setDefault(&configFile.Injector, DefaultInjector)
	setDefault(&configFile.OnFailure, DefaultOnFailure)

	if len(configFile.Targets) == 0 {
		configFile.Targets = target.DefaultMatrix()
	}
	configFile.Targets = target.Normalize(configFile.Targets)
}

// LoadFromReader reads the configuration data given and populates the
// receiver object. Unset fields keep their defaults.
func (configFile *ConfigFile) LoadFromReader(configData io.Reader) error {
	dec := json.NewDecoder(configData)
	dec.DisallowUnknownFields()
	if err := dec.Decode(configFile); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	configFile.SetDefaults()
	return nil
}

// SaveToWriter encodes the configuration to the given writer.
func (configFile *ConfigFile) SaveToWriter(writer io.Writer) error {
	data, err := json.MarshalIndent(configFile, "", "  ")
	if err != nil {
		return err
	}
	_, err = writer.Write(append(data, '\n'))
	return err
}

// Save writes the configuration to its Filename, atomically.
func (configFile *ConfigFile) Save() (retErr error) {
	if configFile.Filename == "" {
		return errors.Errorf("Can't save config with empty filename")
	}

	dir := filepath.Dir(configFile.Filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	temp, err := os.CreateTemp(dir, filepath.Base(configFile.Filename))
	if err != nil {
		return err
	}
	defer func() {
		temp.Close()
		if retErr != nil {
			if err := os.Remove(temp.Name()); err != nil {
				logrus.WithError(err).WithField("file", temp.Name()).Debug("Error cleaning up temp file")
			}
		}
	}()

	if err := configFile.SaveToWriter(temp); err != nil {
		return err
	}
	if err := temp.Close(); err != nil {
		return errors.Wrap(err, "error closing temp file")
	}
	if err := os.Chmod(temp.Name(), 0o644); err != nil {
		return err
	}

	// Handle situation where the configfile is a symlink
	cfgFile := configFile.Filename
	if f, err := os.Readlink(cfgFile); err == nil {
		cfgFile = f
	}
	return os.Rename(temp.Name(), cfgFile)
}

// Resolve turns p into a path relative to base unless it already is
// absolute.
func Resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
