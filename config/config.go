// Package config loads lsbsteg settings from TOML or YAML files and the environment
// and turns them into lsbsteg.Options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/unkn0wn-root/lsbsteg"
	"github.com/unkn0wn-root/lsbsteg/codec"
)

const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Config is the file/env facing configuration of a Steg.
type Config struct {
	Step        lsbsteg.Step
	Namespace   string
	MaxPayload  int
	TTL         time.Duration // passed to Put by callers; 0 => no expiry
	Compression string
	ZstdLevel   int
}

func DefaultConfig() Config {
	return Config{
		Step:        lsbsteg.Step2,
		Namespace:   "default",
		Compression: CompressionNone,
		ZstdLevel:   3,
	}
}

func (c Config) Validate() error {
	if !c.Step.Valid() {
		return &lsbsteg.StepError{Step: c.Step}
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.MaxPayload < 0 {
		return fmt.Errorf("max_payload (%d) must be >= 0", c.MaxPayload)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl (%s) must be >= 0", c.TTL)
	}
	switch c.Compression {
	case CompressionNone:
	case CompressionZstd:
		if c.ZstdLevel < 1 || c.ZstdLevel > 22 {
			return fmt.Errorf("zstd_level (%d) must be in 1..22", c.ZstdLevel)
		}
	default:
		return fmt.Errorf("unknown compression %q (want %q or %q)", c.Compression, CompressionNone, CompressionZstd)
	}
	return nil
}

type fileConfig struct {
	Step        *int    `toml:"step" yaml:"step"`
	Namespace   *string `toml:"namespace" yaml:"namespace"`
	MaxPayload  *int    `toml:"max_payload" yaml:"max_payload"`
	TTL         *string `toml:"ttl" yaml:"ttl"`
	Compression *string `toml:"compression" yaml:"compression"`
	ZstdLevel   *int    `toml:"zstd_level" yaml:"zstd_level"`
}

// Load reads path on top of DefaultConfig. The format is picked by extension:
// .toml, .yaml or .yml. The result is not validated.
func Load(path string) (Config, error) {
	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &raw); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("load config: unsupported extension %q", ext)
	}

	cfg := DefaultConfig()
	if raw.Step != nil {
		cfg.Step = 0 // out of uint8 range fails Validate
		if *raw.Step >= 0 && *raw.Step <= 255 {
			cfg.Step = lsbsteg.Step(*raw.Step)
		}
	}
	if raw.Namespace != nil {
		cfg.Namespace = strings.TrimSpace(*raw.Namespace)
	}
	if raw.MaxPayload != nil {
		cfg.MaxPayload = *raw.MaxPayload
	}
	if raw.TTL != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.TTL))
		if err != nil {
			return Config{}, fmt.Errorf("parse ttl: %w", err)
		}
		cfg.TTL = d
	}
	if raw.Compression != nil {
		cfg.Compression = strings.ToLower(strings.TrimSpace(*raw.Compression))
	}
	if raw.ZstdLevel != nil {
		cfg.ZstdLevel = *raw.ZstdLevel
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from LSBSTEG_* environment variables.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	atoi := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*dst = n
		return nil
	}

	if v, ok := lookup("LSBSTEG_STEP"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 8)
		if err != nil {
			return fmt.Errorf("parse LSBSTEG_STEP: %w", err)
		}
		cfg.Step = lsbsteg.Step(n)
	}
	if v, ok := lookup("LSBSTEG_NAMESPACE"); ok {
		cfg.Namespace = strings.TrimSpace(v)
	}
	if err := atoi("LSBSTEG_MAX_PAYLOAD", &cfg.MaxPayload); err != nil {
		return err
	}
	if v, ok := lookup("LSBSTEG_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse LSBSTEG_TTL: %w", err)
		}
		cfg.TTL = d
	}
	if v, ok := lookup("LSBSTEG_COMPRESSION"); ok {
		cfg.Compression = strings.ToLower(strings.TrimSpace(v))
	}
	return atoi("LSBSTEG_ZSTD_LEVEL", &cfg.ZstdLevel)
}

// Build validates cfg and returns Options using inner as the value codec, wrapped
// in zstd when compression is enabled. Provider, Logger and Hooks are left for the
// caller. release frees codec resources and must be called when the Steg is done.
func Build[V any](cfg Config, inner codec.Codec[V]) (opts lsbsteg.Options[V], release func(), err error) {
	if err := cfg.Validate(); err != nil {
		return lsbsteg.Options[V]{}, nil, err
	}
	if inner == nil {
		return lsbsteg.Options[V]{}, nil, fmt.Errorf("codec is required")
	}

	release = func() {}
	cd := inner
	if cfg.Compression == CompressionZstd {
		z, err := codec.NewZstd(inner, cfg.ZstdLevel)
		if err != nil {
			return lsbsteg.Options[V]{}, nil, fmt.Errorf("zstd codec: %w", err)
		}
		cd = z
		release = func() { _ = z.Close() }
	}

	return lsbsteg.Options[V]{
		Step:       cfg.Step,
		Codec:      cd,
		Namespace:  cfg.Namespace,
		MaxPayload: cfg.MaxPayload,
	}, release, nil
}
