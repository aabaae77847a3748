// Package config loads the engine settings from an optional golens.yaml
// and GOLENS_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

const (
	EnvPrefix = "GOLENS"
	FileName  = "golens"
)

// Config holds the engine settings.
type Config struct {
	// Root is the project directory; its go.mod names the module.
	Root   string `mapstructure:"root" yaml:"root" json:"root"`
	GoRoot string `mapstructure:"goroot" yaml:"goroot" json:"goroot"`
	GoPath string `mapstructure:"gopath" yaml:"gopath" json:"gopath"`

	MaxImportWorkers int           `mapstructure:"max_import_workers" yaml:"max_import_workers" json:"max_import_workers"`
	ReparseDelay     time.Duration `mapstructure:"reparse_delay" yaml:"reparse_delay" json:"reparse_delay"`
	CheckChunkSize   int           `mapstructure:"check_chunk_size" yaml:"check_chunk_size" json:"check_chunk_size"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	// SkipPatterns are doublestar globs of files the importer never reads.
	SkipPatterns []string `mapstructure:"skip_patterns" yaml:"skip_patterns" json:"skip_patterns"`
}

// SetDefaults registers every key with its default. GOROOT and GOPATH
// come from the environment the way the go command finds them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("goroot", defaultGoRoot())
	v.SetDefault("gopath", defaultGoPath())
	v.SetDefault("max_import_workers", 10)
	v.SetDefault("reparse_delay", "300ms")
	v.SetDefault("check_chunk_size", 64)
	v.SetDefault("log_level", "info")
	v.SetDefault("skip_patterns", []string{"**/*_test.go"})
}

func defaultGoRoot() string {
	if r := os.Getenv("GOROOT"); r != "" {
		return r
	}
	return runtime.GOROOT()
}

func defaultGoPath() string {
	if p := os.Getenv("GOPATH"); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "go")
	}
	return ""
}

// NewViper returns a viper reading golens.yaml from dir, or file when it
// is set, through fs, with environment overrides.
func NewViper(fs afero.Fs, file, dir string) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. A missing golens.yaml is not an error;
// a named file that is missing is.
func Load(fs afero.Fs, file, dir string) (*Config, error) {
	v := NewViper(fs, file, dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Errorf("reading config: %w", err)
		}
	}
	return New(v)
}

// New decodes and validates the configuration held by v.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root is required")
	}
	if c.MaxImportWorkers < 1 {
		return errors.New("max_import_workers must be at least 1")
	}
	if c.CheckChunkSize < 1 {
		return errors.New("check_chunk_size must be at least 1")
	}
	if c.ReparseDelay < 0 {
		return errors.New("reparse_delay must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
