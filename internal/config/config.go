// Package config loads CLI settings from file, environment, and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is used for the config file name and search paths.
	AppName = "formflow"
	// EnvPrefix prefixes every environment override, e.g. FORMFLOW_SCHEMA_DIR.
	EnvPrefix = "FORMFLOW"
)

// Config holds the resolved CLI settings.
type Config struct {
	SchemaDir string `mapstructure:"schema_dir"`
	DraftsDir string `mapstructure:"drafts_dir"`
	OutputDir string `mapstructure:"output_dir"`
	Strict    bool   `mapstructure:"strict"`
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// New returns a viper instance with defaults, env bindings, and, when
// present, the config file applied. cfgFile overrides the search path; a
// missing default config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(cfgFile), err)
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Load is New followed by Decode.
func Load(cfgFile string) (Config, error) {
	v, err := New(cfgFile)
	if err != nil {
		return Config{}, err
	}
	return Decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema_dir", "schemas")
	v.SetDefault("drafts_dir", filepath.Join(".formflow", "drafts"))
	v.SetDefault("output_dir", filepath.Join(".formflow", "submissions"))
	v.SetDefault("strict", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")
}

func describe(cfgFile string) string {
	if cfgFile == "" {
		return "config file"
	}
	return cfgFile
}
