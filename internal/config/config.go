// Package config holds the command-line configuration and its validation.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read into a Config.
const EnvPrefix = "INTUNEWIN"

// Mode selects the operation a Config drives.
type Mode string

// Modes, one per subcommand.
const (
	ModePack    Mode = "pack"
	ModeUnpack  Mode = "unpack"
	ModeEncrypt Mode = "encrypt"
	ModeDecrypt Mode = "decrypt"
	ModeInspect Mode = "inspect"
	ModeCheck   Mode = "check"
)

// Config is filled from flags and INTUNEWIN_* environment variables.
type Config struct {
	// Common flags
	Parallel int    `mapstructure:"parallel"  validate:"min=1"                       yaml:"parallel"`
	Quiet    bool   `mapstructure:"quiet"     validate:"exclusive=Verbose"           yaml:"quiet"`
	Verbose  bool   `mapstructure:"verbose"                                          yaml:"verbose"`
	Stats    bool   `mapstructure:"stats"                                            yaml:"stats"`
	Show     bool   `mapstructure:"show"                                             yaml:"-"`
	TempDir  string `mapstructure:"temp-dir"                                         yaml:"temp-dir,omitempty"`

	// Command-specific flags
	Output      string   `mapstructure:"output"       validate:"required_if=Mode pack,required_if=Mode unpack,required_if=Mode encrypt,required_if=Mode decrypt,notnested=Source" yaml:"output,omitempty"`
	Source      string   `mapstructure:"source"       validate:"required_if=Mode pack,required_if=Mode check" yaml:"source,omitempty"`
	Setup       string   `mapstructure:"setup"        validate:"required_if=Mode pack"                         yaml:"setup,omitempty"`
	Name        string   `mapstructure:"name"                                                                  yaml:"name,omitempty"`
	Description string   `mapstructure:"description"                                                           yaml:"description,omitempty"`
	Exclude     []string `mapstructure:"exclude"                                                               yaml:"exclude,omitempty"`
	ExcludeFrom string   `mapstructure:"exclude-from" validate:"omitempty,file"                                yaml:"exclude-from,omitempty"`
	IgnoreCase  bool     `mapstructure:"ignore-case"                                                           yaml:"ignore-case,omitempty"`
	Metadata    string   `mapstructure:"metadata"     validate:"required_if=Mode decrypt"                         yaml:"metadata,omitempty"`
	KeyFile     string   `mapstructure:"key-file"     validate:"omitempty,file"                                yaml:"key-file,omitempty"`

	// Set by the command, not by flags
	Mode  Mode     `mapstructure:"-" validate:"oneof=pack unpack encrypt decrypt inspect check" yaml:"mode"`
	Files []string `mapstructure:"-"                                                       yaml:"files,omitempty"`
}

// Load binds flags and environment variables and decodes them into cfg.
// Flags that were set explicitly win over the environment, which wins over flag defaults.
func Load(flags *pflag.FlagSet, cfg *Config) error {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return nil
}

// Validate checks the configuration against its struct tags and the positional arguments
// against the mode.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := registerValidations(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	switch c.Mode {
	case ModePack, ModeCheck:
		if len(c.Files) != 0 {
			return fmt.Errorf("%s takes no positional arguments, got %d", c.Mode, len(c.Files))
		}
	case ModeEncrypt, ModeDecrypt:
		if len(c.Files) != 1 {
			return fmt.Errorf("%s takes exactly one input file, got %d", c.Mode, len(c.Files))
		}
	case ModeUnpack, ModeInspect:
		if len(c.Files) == 0 {
			return fmt.Errorf("%s needs at least one package", c.Mode)
		}
	}

	return nil
}
