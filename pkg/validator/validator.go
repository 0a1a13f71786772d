package validator

import (
	"regexp"

	"vecartdeploy/pkg/config/configfile"
	"vecartdeploy/pkg/deploy/target"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Description of deploy.json fields.
var FieldDescriptions = map[string]string{
	"Product":        "must contain only letters, digits, '.', '-' and '_'. (required)",
	"Binary":         "must contain only letters, digits, '.', '-' and '_'. (required)",
	"SourceDir":      "must be a path to the Go package to build. (required)",
	"VersionFile":    "must be a path relative to sourceDir. (required)",
	"Logo":           "must be a path relative to sourceDir. (required)",
	"Workspace":      "must be a directory path. (required)",
	"Icon":           "must be a file name ending in '.ico'. (required)",
	"Injector":       "must be one of: 'auto', 'resourcehacker' or 'winres'. (required)",
	"OnFailure":      "must be one of: 'abort' or 'continue'. (required)",
	"Archive":        "must be one of: 'none', 'tar', 'gzip' or 'zstd'. (optional)",
	"Targets":        "must list at least one target. (required)",
	"OS":             "must be a GOOS known to the Go toolchain. (required)",
	"Arch":           "must be a GOARCH known to the Go toolchain. (required)",
	"Label":          "must contain only letters, digits, '.', '-' and '_'. (optional)",
	"ResourceHacker": "must be a path to ResourceHacker.exe. (optional)",
}

var labelRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// knownArch lists the GOARCH values accepted by "go tool dist list".
var knownArch = map[string]bool{
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true,
	"mips": true, "mipsle": true, "mips64": true, "mips64le": true,
	"ppc64": true, "ppc64le": true, "riscv64": true, "s390x": true, "wasm": true,
}

// NewValidator creates a new validator instance.
func NewValidator() (*goValidator.Validate, error) {
	validator := goValidator.New()
	for tag, fn := range map[string]goValidator.Func{
		"goos":   goosValid,
		"goarch": goarchValid,
		"label":  labelValid,
	} {
		if err := validator.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}

	return validator, nil
}

// ValidateConfig validates a deploy.json configuration, including that
// every target produces a distinct artifact.
func ValidateConfig(cfg *configfile.ConfigFile, v *goValidator.Validate) error {
	if errs := v.Struct(cfg); errs != nil {
		return HandleValidatorError(errs)
	}
	return errors.Wrap(target.CheckUnique(cfg.Targets), "invalid deploy.json")
}

func goosValid(fl goValidator.FieldLevel) bool {
	return knownOS[fl.Field().String()]
}

func goarchValid(fl goValidator.FieldLevel) bool {
	return knownArch[fl.Field().String()]
}

func labelValid(fl goValidator.FieldLevel) bool {
	return labelRegex.MatchString(fl.Field().String())
}

// knownOS lists the GOOS values accepted by "go tool dist list".
var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true,
	"freebsd": true, "illumos": true, "ios": true, "js": true, "linux": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true,
	"wasip1": true, "windows": true,
}
