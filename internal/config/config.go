// Package config defines service configuration and its loading from
// defaults, an optional YAML file and BABELLM_ environment variables.
package config

import (
	"runtime"
	"time"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir overrides the embedded fixture set when non-empty.
	DataDir string `koanf:"data_dir"`

	// ItemsPerRound is how many languages a round shows.
	ItemsPerRound int `koanf:"items_per_round"`

	RevealDelayMS      int `koanf:"reveal_delay_ms"`
	RevealAnimationMS  int `koanf:"reveal_animation_ms"`
	FrameIntervalMS    int `koanf:"frame_interval_ms"`
	CelebrationDelayMS int `koanf:"celebration_delay_ms"`
	CelebrationMS      int `koanf:"celebration_ms"`
	BurstIntervalMS    int `koanf:"burst_interval_ms"`

	// AnalysisLatencyMinMS and AnalysisLatencyMaxMS bound the simulated model latency.
	AnalysisLatencyMinMS int `koanf:"analysis_latency_min_ms"`
	AnalysisLatencyMaxMS int `koanf:"analysis_latency_max_ms"`

	// SessionBackend selects where round handoff values live: memory or redis.
	SessionBackend    string `koanf:"session_backend"`
	SessionTTLSeconds int    `koanf:"session_ttl_s"`
	RedisAddr         string `koanf:"redis_addr"`
	RedisDB           int    `koanf:"redis_db"`
	RedisPrefix       string `koanf:"redis_prefix"`

	// RenderWorkers and RenderQueueSize size the share card pipeline.
	RenderWorkers   int `koanf:"render_workers"`
	RenderQueueSize int `koanf:"render_queue_size"`

	// SubmissionGuardSize bounds the remembered submitted rounds.
	SubmissionGuardSize int `koanf:"submission_guard_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		ItemsPerRound:        3,
		RevealDelayMS:        1500,
		RevealAnimationMS:    1500,
		FrameIntervalMS:      16,
		CelebrationDelayMS:   500,
		CelebrationMS:        3000,
		BurstIntervalMS:      250,
		AnalysisLatencyMinMS: 300,
		AnalysisLatencyMaxMS: 800,
		SessionBackend:       SessionMemory,
		SessionTTLSeconds:    3600,
		RedisAddr:            "localhost:6379",
		RedisPrefix:          "babellm:",
		RenderWorkers:        runtime.NumCPU(),
		RenderQueueSize:      64,
		SubmissionGuardSize:  50_000,
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// RevealDelay is the gap between consecutive item reveals.
func (c *Config) RevealDelay() time.Duration { return ms(c.RevealDelayMS) }

// RevealAnimation is how long one bar takes to fill.
func (c *Config) RevealAnimation() time.Duration { return ms(c.RevealAnimationMS) }

// FrameInterval is the animation frame period.
func (c *Config) FrameInterval() time.Duration { return ms(c.FrameIntervalMS) }

// CelebrationDelay is the pause before confetti starts.
func (c *Config) CelebrationDelay() time.Duration { return ms(c.CelebrationDelayMS) }

// Celebration is how long confetti keeps firing.
func (c *Config) Celebration() time.Duration { return ms(c.CelebrationMS) }

// BurstInterval is the gap between confetti bursts.
func (c *Config) BurstInterval() time.Duration { return ms(c.BurstIntervalMS) }

// AnalysisLatency returns the simulated latency bounds.
func (c *Config) AnalysisLatency() (time.Duration, time.Duration) {
	return ms(c.AnalysisLatencyMinMS), ms(c.AnalysisLatencyMaxMS)
}

// SessionTTL is how long handoff values are kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}
