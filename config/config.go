// Package config loads the settings of the calcscript command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calcscript"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the command configuration. A file may set any subset of the
// fields; the rest keep their defaults.
type Config struct {
	// Prompt is printed before each REPL input.
	Prompt string `yaml:"prompt" toml:"prompt"`
	// ContPrompt is printed before continuation lines.
	ContPrompt string `yaml:"cont_prompt" toml:"cont_prompt"`
	// DB is the path of the session database. Empty disables it.
	DB string `yaml:"db" toml:"db"`
	// Restore reloads variables saved in the database at startup.
	Restore bool `yaml:"restore" toml:"restore"`
	// Color is one of ColorAuto, ColorAlways, or ColorNever.
	Color string `yaml:"color" toml:"color"`
	// Precision is the working precision of extended calculations in bits.
	Precision uint `yaml:"precision" toml:"precision"`
	// Constants are additional named constants.
	Constants map[string]float64 `yaml:"constants" toml:"constants"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Prompt:     "> ",
		ContPrompt: ". ",
		Color:      ColorAuto,
		Precision:  128,
	}
}

// Load reads a configuration file. Files ending in .toml are TOML; anything
// else is YAML. Unknown keys are errors.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = decodeTOML(b, &cfg)
	} else {
		err = decodeYAML(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(b []byte, cfg *Config) error {
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return err
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		return fmt.Errorf("unknown key %q", keys[0].String())
	}
	return nil
}

func decodeYAML(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		// Empty file.
		return nil
	}
	return err
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q", c.Color)
	}
	if c.Precision == 0 {
		return errors.New("precision must be positive")
	}
	for name := range c.Constants {
		if !validName(name) {
			return fmt.Errorf("invalid constant name %q", name)
		}
	}
	return nil
}

// validName reports whether name lexes as a single identifier.
func validName(name string) bool {
	toks, errs := calcscript.Tokenize(name)
	return len(errs) == 0 && len(toks) == 1 && toks[0].Kind == calcscript.TokenIdentifier
}

// Options returns the runtime options the configuration describes.
func (c Config) Options() []calcscript.RuntimeOption {
	opts := []calcscript.RuntimeOption{calcscript.Prec(c.Precision)}
	names := make([]string, 0, len(c.Constants))
	for name := range c.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, calcscript.Constant(name, calcscript.RealVal(c.Constants[name])))
	}
	return opts
}
