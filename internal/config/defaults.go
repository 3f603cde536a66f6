package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// DefaultFileName is the configuration file looked up in the home directory.
const DefaultFileName = ".builder-config.yml"

// Defaults holds the settings that can be provided through the environment
// instead of flags. Flags always take precedence.
type Defaults struct {
	// ConfigPath is the configuration file location. Empty means
	// ~/.builder-config.yml.
	ConfigPath string `env:"BUILDER_CONFIG"`

	// Shell selects how pipelines are executed: "system" or "builtin".
	// Empty means the platform default.
	Shell string `env:"BUILDER_SHELL"`

	// LogLevel is a zerolog level name.
	LogLevel string `env:"BUILDER_LOG_LEVEL" envDefault:"warn"`

	// BuildType is the default value of the bt variable.
	BuildType string `env:"BUILDER_BUILD_TYPE" envDefault:"Release"`
}

// LoadDefaults reads Defaults from the process environment.
func LoadDefaults() (Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return Defaults{}, eris.Wrap(err, "error getting env configs")
	}
	if d.ConfigPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Defaults{}, eris.Wrap(err, "cannot locate home directory")
		}
		d.ConfigPath = filepath.Join(home, DefaultFileName)
	}
	return d, nil
}
