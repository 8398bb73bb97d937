// Package config provides runtime configuration values for the dsupdate tool.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by output.format.
const (
	FormatJSON   = "json"
	FormatXML    = "xml"
	FormatRawXML = "raw-xml"
	FormatYAML   = "yaml"
)

// Config holds the knobs for decoding and rendering update records.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Decode   DecodeConfig   `mapstructure:"decode"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Log      LogConfig      `mapstructure:"log"`
}

// OutputConfig selects how records are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Indent bool   `mapstructure:"indent"`
}

// DecodeConfig selects compatibility with records written by the legacy dataware.
type DecodeConfig struct {
	LegacyTagGate      bool `mapstructure:"legacy_tag_gate"`
	LegacyLocationSwap bool `mapstructure:"legacy_location_swap"`
}

// DefaultsConfig holds values used when a record is built without them.
type DefaultsConfig struct {
	Type string `mapstructure:"type"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.format", FormatJSON)
	v.SetDefault("output.indent", false)
	v.SetDefault("decode.legacy_tag_gate", false)
	v.SetDefault("decode.legacy_location_swap", false)
	v.SetDefault("defaults.type", "dataware:update")
	v.SetDefault("log.level", "info")
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"to":                   "output.format",
	"indent":               "output.indent",
	"legacy-tag-gate":      "decode.legacy_tag_gate",
	"legacy-location-swap": "decode.legacy_location_swap",
	"log-level":            "log.level",
}

// Load collects configuration from defaults, an optional YAML file,
// DSUPDATE_* environment variables and explicitly set flags, in increasing
// precedence. flags may be nil; flags missing from the set are skipped.
// A missing cfgFile is an error; an empty cfgFile skips the file.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix("DSUPDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Output.Format {
	case FormatJSON, FormatXML, FormatRawXML, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("output.format %q: must be one of json, xml, raw-xml, yaml", c.Output.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: must be one of debug, info, warn, error", c.Log.Level))
	}
	return errors.Join(errs...)
}
