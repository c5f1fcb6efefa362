// Package config loads the optional YAML file read by cmd/websynth.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	websynth "github.com/jurgenbelien/websynth-go"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	SampleRate int                `yaml:"sample_rate"`
	Steps      int                `yaml:"steps"`
	Tempo      float64            `yaml:"tempo,omitempty"`
	Controls   map[string]float64 `yaml:"controls,omitempty"`
	Relative   map[string]float64 `yaml:"relative,omitempty"`
	Pattern    Pattern            `yaml:"pattern,omitempty"`
}

// Pattern lists per-step values from the first step on. Shorter lists leave
// the remaining steps at their defaults.
type Pattern struct {
	Pitch    []float64 `yaml:"pitch,flow,omitempty"`
	Velocity []float64 `yaml:"velocity,flow,omitempty"`
}

// Target is what a Config is applied to.
type Target interface {
	SetControl(name string, value float64) error
	SetControlRelative(name string, r float64) error
	SetPitch(index int, octaves float64) error
	SetVelocity(index int, velocity float64) error
}

func Default() Config {
	return Config{SampleRate: 48000, Steps: websynth.DefaultSteps}
}

// Load reads path over the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalid, c.SampleRate)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps %d", ErrInvalid, c.Steps)
	}
	if c.Tempo < 0 || !finite(c.Tempo) {
		return fmt.Errorf("%w: tempo %v", ErrInvalid, c.Tempo)
	}
	for name, v := range c.Controls {
		if !finite(v) {
			return fmt.Errorf("%w: control %s = %v", ErrInvalid, name, v)
		}
	}
	if v, ok := c.Controls["tempo"]; ok && v <= 0 {
		return fmt.Errorf("%w: control tempo = %v, must be positive", ErrInvalid, v)
	}
	for name, r := range c.Relative {
		if !finite(r) || r < 0 || r > 1 {
			return fmt.Errorf("%w: relative %s = %v outside [0, 1]", ErrInvalid, name, r)
		}
	}
	if len(c.Pattern.Pitch) > c.Steps || len(c.Pattern.Velocity) > c.Steps {
		return fmt.Errorf("%w: pattern longer than %d steps", ErrInvalid, c.Steps)
	}
	return nil
}

// Apply writes tempo, raw controls, relative controls and the pattern into
// t in that order. Controls are applied in name order.
func (c Config) Apply(t Target) error {
	if c.Tempo > 0 {
		if err := t.SetControl("tempo", c.Tempo); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.Controls) {
		if err := t.SetControl(name, c.Controls[name]); err != nil {
			return fmt.Errorf("controls: %w", err)
		}
	}
	for _, name := range sortedKeys(c.Relative) {
		if err := t.SetControlRelative(name, c.Relative[name]); err != nil {
			return fmt.Errorf("relative: %w", err)
		}
	}
	for i, p := range c.Pattern.Pitch {
		if err := t.SetPitch(i, p); err != nil {
			return fmt.Errorf("pattern pitch %d: %w", i, err)
		}
	}
	for i, v := range c.Pattern.Velocity {
		if err := t.SetVelocity(i, v); err != nil {
			return fmt.Errorf("pattern velocity %d: %w", i, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
