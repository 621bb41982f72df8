package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"asr":        {"whisper"},
	"prosody":    {"praatserver"},
	"spectral":   {"librosaserver"},
	"embeddings": {"openai", "ollama"},
	"coach":      {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("asr", cfg.Providers.ASR.Name)
	validateProviderName("prosody", cfg.Providers.Prosody.Name)
	validateProviderName("spectral", cfg.Providers.Spectral.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)
	validateProviderName("coach", cfg.Providers.Coach.Name)

	// ASR is the one stage the pipeline cannot run without.
	if cfg.Providers.ASR.Name == "" {
		errs = append(errs, errors.New("providers.asr.name is required"))
	}
	if cfg.Providers.ASR.Name == "whisper" && cfg.Providers.ASR.Model == "" {
		errs = append(errs, errors.New("providers.asr.model (GGML model file path) is required for the whisper provider"))
	}

	// The HTTP measurement sidecars need an address to reach.
	if cfg.Providers.Prosody.Name == "praatserver" && cfg.Providers.Prosody.BaseURL == "" {
		errs = append(errs, errors.New("providers.prosody.base_url is required for the praatserver provider"))
	}
	if cfg.Providers.Spectral.Name == "librosaserver" && cfg.Providers.Spectral.BaseURL == "" {
		errs = append(errs, errors.New("providers.spectral.base_url is required for the librosaserver provider"))
	}

	// Degraded-mode warnings: the pipeline runs, but parts of the rubric
	// score on zeroed features.
	if cfg.Providers.Prosody.Name == "" {
		slog.Warn("no prosody provider configured; clarity, tone, and confidence will score on zeroed acoustic features")
	}
	if cfg.Providers.Spectral.Name == "" {
		slog.Warn("no spectral provider configured; cadence tempo will score as unmeasured")
	}
	if cfg.Providers.Embeddings.Name == "" {
		slog.Warn("no embeddings provider configured; coherence falls back to its neutral default")
	}
	if cfg.Providers.Coach.Name == "" && !cfg.Analysis.SkipCoach {
		slog.Warn("no coach provider configured; reports will not carry feedback")
	}

	// Analysis tuning blocks validate only when overridden; the defaults are
	// known-good.
	if cfg.Analysis.Pauses != nil {
		if err := cfg.Analysis.Pauses.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("analysis.pauses: %w", err))
		}
	}
	if cfg.Analysis.RubricCutoffs != nil {
		if err := cfg.Analysis.RubricCutoffs.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("analysis.rubric_cutoffs: %w", err))
		}
	}
	if cfg.Analysis.Linguistic != nil {
		if err := cfg.Analysis.Linguistic.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("analysis.linguistic: %w", err))
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
