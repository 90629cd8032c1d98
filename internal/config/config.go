// Package config loads the optional fable.yaml of a story directory and
// applies FABLE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the story directory.
const FileName = "fable.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FABLE_"

// Config is the project configuration. Zero values mean "use the default".
// QuoteColors and QuestionColor turn on the text handler's speech and
// question styling; both are off unless set.
type Config struct {
	Name          string            `mapstructure:"name"`
	Entry         Entry             `mapstructure:"entry" envPrefix:"ENTRY_"`
	Extensions    []string          `mapstructure:"extensions"`
	Palette       map[string]string `mapstructure:"palette"`
	Width         int               `mapstructure:"width" env:"WIDTH"`
	Typewriter    Typewriter        `mapstructure:"typewriter" envPrefix:"TYPEWRITER_"`
	QuoteColors   bool              `mapstructure:"quote_colors" env:"QUOTE_COLORS"`
	QuestionColor string            `mapstructure:"question_color" env:"QUESTION_COLOR"`
	MaxSteps      int               `mapstructure:"max_steps" env:"MAX_STEPS"`
	Redis         Redis             `mapstructure:"redis" envPrefix:"REDIS_"`
	Log           Log               `mapstructure:"log" envPrefix:"LOG_"`
	Serve         Serve             `mapstructure:"serve" envPrefix:"SERVE_"`
}

// Entry is where `fable run` starts when no file is given.
type Entry struct {
	File  string `mapstructure:"file" env:"FILE"`
	Block string `mapstructure:"block" env:"BLOCK"`
}

// Typewriter paces text output. Zero delays print lines at once.
type Typewriter struct {
	CharDelay time.Duration `mapstructure:"char_delay" env:"CHAR_DELAY"`
	LineDelay time.Duration `mapstructure:"line_delay" env:"LINE_DELAY"`
}

type Redis struct {
	URL    string `mapstructure:"url" env:"URL"`
	Prefix string `mapstructure:"prefix" env:"PREFIX"`
}

type Log struct {
	Level  string `mapstructure:"level" env:"LEVEL"`
	Format string `mapstructure:"format" env:"FORMAT"`
}

type Serve struct {
	Addr string `mapstructure:"addr" env:"ADDR"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log:   Log{Format: "text"},
		Serve: Serve{Addr: ":8080"},
	}
}

// Load reads path, or dir/fable.yaml when path is empty, over Default and
// then applies environment overrides. A missing fable.yaml is not an error;
// a missing explicit path is.
func Load(dir, path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode merges YAML data into cfg.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// ParseEnv applies FABLE_* variables to target.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
