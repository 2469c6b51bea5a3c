package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"
)

// DefaultLocation is the config file read when none is given.
const DefaultLocation = "./auradoc.toml"

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config is the root of the config
type Config struct {
	Engine  Engine  `toml:"engine" yaml:"engine"`
	Logging Logging `toml:"logging" yaml:"logging"`
}

// Engine tunes the compositor.
type Engine struct {
	// Workers bounds concurrent image decodes. Zero means GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers" valid:"range(0|1024)"`

	// DecodeTimeout caps a single image decode; a field exceeding it gets a
	// placeholder.
	DecodeTimeout time.Duration `toml:"decode_timeout" yaml:"decode-timeout"`

	// MaxImageDimension downsamples images whose longest side exceeds it.
	// Zero keeps images at full resolution.
	MaxImageDimension int `toml:"max_image_dimension" yaml:"max-image-dimension" valid:"range(0|65535)"`

	// CompressLevel is the zlib level for new streams, -1 for the default.
	CompressLevel int `toml:"compress_level" yaml:"compress-level"`

	// Repair runs unparseable input through a repair pass before giving up.
	Repair bool `toml:"repair" yaml:"repair"`
}

// Logging contains logging configuration.
type Logging struct {
	// Level is the log level (debug, info, warn, error).
	Level string `toml:"level" yaml:"level" valid:"in(debug|info|warn|error)"`

	// Format is the log format (text, json).
	Format string `toml:"format" yaml:"format" valid:"in(text|json)"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `toml:"output" yaml:"output"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Engine: Engine{
			Workers:           runtime.GOMAXPROCS(0),
			DecodeTimeout:     5 * time.Second,
			MaxImageDimension: 4096,
			CompressLevel:     -1,
			Repair:            true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// SetDefaults fills unset engine values.
func (e *Engine) SetDefaults() {
	if e.Workers <= 0 {
		e.Workers = runtime.GOMAXPROCS(0)
	}
	if e.DecodeTimeout <= 0 {
		e.DecodeTimeout = 5 * time.Second
	}
}

// SetDefaults sets default values for logging configuration.
func (l *Logging) SetDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
	if l.Output == "" {
		l.Output = "stderr"
	}
}

// ValidateFields validates all the fields of the config
func (c Config) ValidateFields() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		var field string
		var errs govalidator.Errors
		if errors.As(err, &errs) && len(errs) > 0 {
			var ferr govalidator.Error
			if errors.As(errs[0], &ferr) {
				field = ferr.Name
			}
		}
		return &ConfigError{Field: field, Message: err.Error(), Err: err}
	}
	if c.Engine.DecodeTimeout < 0 {
		return &ConfigError{Field: "decode_timeout", Message: "must not be negative"}
	}
	if c.Engine.CompressLevel < -1 || c.Engine.CompressLevel > 9 {
		return &ConfigError{Field: "compress_level", Message: fmt.Sprintf("%d is outside -1..9", c.Engine.CompressLevel)}
	}
	return nil
}

// Load reads a TOML or YAML config file, chosen by extension, applies
// defaults for omitted values and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or ".yml").
func Parse(data []byte, ext string) (Config, error) {
	c := Defaults()

	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return Config{}, &ConfigError{Message: "failed to parse TOML", Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, &ConfigError{Message: "failed to parse YAML", Err: err}
		}
	default:
		return Config{}, &ConfigError{Message: fmt.Sprintf("unknown extension %q", ext), Err: ErrUnsupportedFormat}
	}

	c.Engine.SetDefaults()
	c.Logging.SetDefaults()

	if err := c.ValidateFields(); err != nil {
		return Config{}, err
	}
	return c, nil
}
