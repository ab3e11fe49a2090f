package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "BABELLM_"
	envConfig = "BABELLM_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BABELLM_CONFIG is set
//  3. env (prefix BABELLM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// BABELLM_REVEAL_DELAY_MS -> reveal_delay_ms
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ItemsPerRound < 1:
		return fmt.Errorf("%w: items_per_round must be positive", ErrInvalidConfig)
	case c.RevealDelayMS < 1:
		return fmt.Errorf("%w: reveal_delay_ms must be positive", ErrInvalidConfig)
	case c.RevealAnimationMS < 0:
		return fmt.Errorf("%w: reveal_animation_ms must not be negative", ErrInvalidConfig)
	case c.FrameIntervalMS < 1:
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidConfig)
	case c.BurstIntervalMS < 1:
		return fmt.Errorf("%w: burst_interval_ms must be positive", ErrInvalidConfig)
	case c.AnalysisLatencyMinMS < 0 || c.AnalysisLatencyMaxMS < c.AnalysisLatencyMinMS:
		return fmt.Errorf("%w: analysis latency range [%d,%d] is invalid",
			ErrInvalidConfig, c.AnalysisLatencyMinMS, c.AnalysisLatencyMaxMS)
	case c.SessionBackend != SessionMemory && c.SessionBackend != SessionRedis:
		return fmt.Errorf("%w: unknown session_backend %q", ErrInvalidConfig, c.SessionBackend)
	case c.SessionBackend == SessionRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
	case c.SessionTTLSeconds < 1:
		return fmt.Errorf("%w: session_ttl_s must be positive", ErrInvalidConfig)
	case c.RenderWorkers < 1 || c.RenderQueueSize < 1:
		return fmt.Errorf("%w: render pool must have workers and queue capacity", ErrInvalidConfig)
	}
	return nil
}
