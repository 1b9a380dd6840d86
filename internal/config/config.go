// Package config loads the optional YAML run configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stephenmw/distress/internal/solve"
	"github.com/stephenmw/distress/packet"
)

// ErrInvalid is wrapped by every error caused by the contents of a config.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Dividers []string `yaml:"dividers"`
	Workers  int      `yaml:"workers"`
	Strategy string   `yaml:"strategy"`
	Labels   Labels   `yaml:"labels"`
}

type Labels struct {
	Part1 string `yaml:"part1"`
	Part2 string `yaml:"part2"`
}

func Default() Config {
	return Config{
		Dividers: []string{"[[2]]", "[[6]]"},
		Workers:  1,
		Strategy: string(solve.StrategySort),
		Labels: Labels{
			Part1: "Part 1",
			Part2: "Part 2",
		},
	}
}

// Load reads the config at path on top of Default. An empty path returns
// Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w (path=%s): %w", ErrInvalid, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w (path=%s)", err, path)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Dividers) == 0 {
		return fmt.Errorf("%w: at least one divider is required", ErrInvalid)
	}
	if _, err := c.ParsedDividers(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}

	strategy, err := solve.ParseStrategy(c.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if strategy == solve.StrategyCount && len(c.Dividers) != 2 {
		return fmt.Errorf("%w: strategy %q needs exactly 2 dividers", ErrInvalid, strategy)
	}

	return nil
}

func (c Config) ParsedDividers() ([]packet.Element, error) {
	ret := make([]packet.Element, 0, len(c.Dividers))
	for i, d := range c.Dividers {
		e, err := packet.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("%w: dividers[%d]: %w", ErrInvalid, i, err)
		}
		ret = append(ret, e)
	}
	return ret, nil
}

// Options converts c into solve options. c must be valid.
func (c Config) Options() (solve.Options, error) {
	dividers, err := c.ParsedDividers()
	if err != nil {
		return solve.Options{}, err
	}

	strategy, err := solve.ParseStrategy(c.Strategy)
	if err != nil {
		return solve.Options{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return solve.Options{
		Dividers: dividers,
		Workers:  c.Workers,
		Strategy: strategy,
	}, nil
}
