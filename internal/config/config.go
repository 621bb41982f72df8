// Package config provides the configuration schema, loader, and provider
// registry for the cadenza analysis service.
package config

import (
	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/analysis/pause"
	"github.com/MrWong99/cadenza/internal/analysis/rubric"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for cadenza.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
}

// ServerConfig holds logging and observability settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address the Prometheus /metrics endpoint
	// listens on (e.g., ":9090"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	ASR        ProviderEntry `yaml:"asr"`
	Prosody    ProviderEntry `yaml:"prosody"`
	Spectral   ProviderEntry `yaml:"spectral"`
	Embeddings ProviderEntry `yaml:"embeddings"`
	Coach      ProviderEntry `yaml:"coach"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "whisper", "praatserver", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint, or is the
	// sidecar address for the HTTP measurement providers.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider. For the whisper
	// ASR provider this is the path of the GGML model file.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above (e.g., "language", "threads" for whisper).
	Options map[string]any `yaml:"options"`

	// Fallback optionally names a second provider of the same kind, tried
	// when this one fails or its circuit breaker is open. Honoured for the
	// coach and embeddings stages; ignored elsewhere.
	Fallback *ProviderEntry `yaml:"fallback"`
}

// AnalysisConfig tunes the scoring pipeline. Every block has documented
// defaults; an empty block means "use them".
type AnalysisConfig struct {
	// Pauses overrides the pause classification bands. Leave empty for
	// [pause.DefaultThresholds].
	Pauses *pause.Thresholds `yaml:"pauses"`

	// Linguistic overrides the filler/repair word and pattern sets. Leave
	// empty for [linguistic.DefaultConfig].
	Linguistic *linguistic.Config `yaml:"linguistic"`

	// RubricCutoffs overrides the score-to-band cut points. Leave empty for
	// [rubric.DefaultCutoffs].
	RubricCutoffs *rubric.Cutoffs `yaml:"rubric_cutoffs"`

	// SkipCoach disables the coaching stage even when a coach provider is
	// configured. Reports then carry metrics and rubric only.
	SkipCoach bool `yaml:"skip_coach"`

	// HistoryFile, when set, appends a one-line JSON summary of every run
	// to this file so scores can be tracked across practice sessions.
	HistoryFile string `yaml:"history_file"`
}

// PauseThresholds resolves the configured pause bands, falling back to the
// defaults.
func (a AnalysisConfig) PauseThresholds() pause.Thresholds {
	if a.Pauses != nil {
		return *a.Pauses
	}
	return pause.DefaultThresholds()
}

// LinguisticConfig resolves the configured word/pattern sets, falling back to
// the defaults.
func (a AnalysisConfig) LinguisticConfig() linguistic.Config {
	if a.Linguistic != nil {
		return *a.Linguistic
	}
	return linguistic.DefaultConfig()
}

// Cutoffs resolves the configured rubric cut points, falling back to the
// defaults.
func (a AnalysisConfig) Cutoffs() rubric.Cutoffs {
	if a.RubricCutoffs != nil {
		return *a.RubricCutoffs
	}
	return rubric.DefaultCutoffs()
}
