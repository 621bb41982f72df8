// Command cadenza analyses a speech recording and prints a delivery report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/cadenza/internal/analysis"
	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/config"
	"github.com/MrWong99/cadenza/internal/health"
	"github.com/MrWong99/cadenza/internal/history"
	"github.com/MrWong99/cadenza/internal/observe"
	"github.com/MrWong99/cadenza/internal/resilience"
	"github.com/MrWong99/cadenza/pkg/provider/asr"
	"github.com/MrWong99/cadenza/pkg/provider/asr/whisper"
	"github.com/MrWong99/cadenza/pkg/provider/coach"
	coachanyllm "github.com/MrWong99/cadenza/pkg/provider/coach/anyllm"
	"github.com/MrWong99/cadenza/pkg/provider/embeddings"
	ollamaembed "github.com/MrWong99/cadenza/pkg/provider/embeddings/ollama"
	oaembed "github.com/MrWong99/cadenza/pkg/provider/embeddings/openai"
	"github.com/MrWong99/cadenza/pkg/provider/prosody"
	"github.com/MrWong99/cadenza/pkg/provider/prosody/praatserver"
	"github.com/MrWong99/cadenza/pkg/provider/spectral"
	"github.com/MrWong99/cadenza/pkg/provider/spectral/librosaserver"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	audioPath := flag.String("audio", "", "path to the WAV recording to analyse")
	skipCoach := flag.Bool("skip-coach", false, "skip the coaching stage even when a coach provider is configured")
	flag.Parse()

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "cadenza: -audio is required")
		flag.Usage()
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "cadenza: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "cadenza: %v\n", err)
		}
		return 1
	}
	if *skipCoach {
		cfg.Analysis.SkipCoach = true
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("cadenza starting",
		"config", *configPath,
		"audio", *audioPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownObs, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "cadenza"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		startMetricsListener(cfg.Server.MetricsAddr, sidecarCheckers(cfg))
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	defer providers.Close()

	// ── Engine ────────────────────────────────────────────────────────────────
	var lingOpts []linguistic.Option
	if providers.Embeddings != nil {
		lingOpts = append(lingOpts, linguistic.WithEmbeddings(providers.Embeddings))
	}
	extractor, err := linguistic.New(cfg.Analysis.LinguisticConfig(), lingOpts...)
	if err != nil {
		slog.Error("failed to build linguistic extractor", "err", err)
		return 1
	}

	engOpts := []analysis.Option{
		analysis.WithPauseThresholds(cfg.Analysis.PauseThresholds()),
		analysis.WithCutoffs(cfg.Analysis.Cutoffs()),
	}
	if providers.Prosody != nil {
		engOpts = append(engOpts, analysis.WithProsody(providers.Prosody))
	}
	if providers.Spectral != nil {
		engOpts = append(engOpts, analysis.WithSpectral(providers.Spectral))
	}
	if providers.Coach != nil && !cfg.Analysis.SkipCoach {
		engOpts = append(engOpts, analysis.WithCoach(providers.Coach))
	}
	engine, err := analysis.New(providers.ASR, extractor, engOpts...)
	if err != nil {
		slog.Error("failed to build analysis engine", "err", err)
		return 1
	}

	// ── Analyse ───────────────────────────────────────────────────────────────
	report, err := engine.Analyze(ctx, *audioPath)
	if err != nil {
		var invErr *analysis.InvalidInputError
		if errors.As(err, &invErr) {
			slog.Error("invalid input", "err", err)
			return 2
		}
		slog.Error("analysis failed", "err", err)
		return 1
	}

	if cfg.Analysis.HistoryFile != "" {
		store := history.NewFileStore(cfg.Analysis.HistoryFile)
		if err := store.Append(report); err != nil {
			slog.Warn("failed to record session history", "err", err)
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Error("failed to encode report", "err", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet holds the instantiated providers for one run. ASR is always
// non-nil after buildProviders succeeds; the rest are nil when unconfigured.
type providerSet struct {
	ASR        asr.Provider
	Prosody    prosody.Provider
	Spectral   spectral.Provider
	Embeddings embeddings.Provider
	Coach      coach.Provider
}

// Close releases providers that hold native resources.
func (p *providerSet) Close() {
	if c, ok := p.ASR.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			slog.Warn("asr provider close error", "err", err)
		}
	}
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── ASR ───────────────────────────────────────────────────────────────────

	reg.RegisterASR("whisper", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		if threads := optInt(entry.Options, "threads"); threads > 0 {
			opts = append(opts, whisper.WithThreads(threads))
		}
		return whisper.New(entry.Model, opts...)
	})

	// ── Measurement sidecars ──────────────────────────────────────────────────

	reg.RegisterProsody("praatserver", func(entry config.ProviderEntry) (prosody.Provider, error) {
		return praatserver.New(entry.BaseURL)
	})

	reg.RegisterSpectral("librosaserver", func(entry config.ProviderEntry) (spectral.Provider, error) {
		return librosaserver.New(entry.BaseURL)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		return ollamaembed.New(entry.BaseURL, entry.Model)
	})

	// ── Coach ─────────────────────────────────────────────────────────────────
	// openai, anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile
	// all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterCoach(providerName, func(entry config.ProviderEntry) (coach.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return coachanyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterCoach("ollama", func(entry config.ProviderEntry) (coach.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return coachanyllm.New("ollama", entry.Model, opts...)
	})
}

// buildProviders instantiates all providers named in cfg using the registry.
func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	ps := &providerSet{}

	p, err := reg.CreateASR(cfg.Providers.ASR)
	if err != nil {
		return nil, fmt.Errorf("create asr provider %q: %w", cfg.Providers.ASR.Name, err)
	}
	ps.ASR = p
	slog.Info("provider created", "kind", "asr", "name", cfg.Providers.ASR.Name)

	if name := cfg.Providers.Prosody.Name; name != "" {
		p, err := reg.CreateProsody(cfg.Providers.Prosody)
		if err != nil {
			return nil, fmt.Errorf("create prosody provider %q: %w", name, err)
		}
		ps.Prosody = p
		slog.Info("provider created", "kind", "prosody", "name", name)
	}

	if name := cfg.Providers.Spectral.Name; name != "" {
		p, err := reg.CreateSpectral(cfg.Providers.Spectral)
		if err != nil {
			return nil, fmt.Errorf("create spectral provider %q: %w", name, err)
		}
		ps.Spectral = p
		slog.Info("provider created", "kind", "spectral", "name", name)
	}

	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		}
		if fb := cfg.Providers.Embeddings.Fallback; fb != nil {
			sp, err := reg.CreateEmbeddings(*fb)
			if err != nil {
				return nil, fmt.Errorf("create embeddings fallback %q: %w", fb.Name, err)
			}
			group := resilience.NewEmbeddingsFallback(p, name, resilience.FallbackConfig{})
			group.AddFallback(fb.Name, sp)
			p = group
			slog.Info("provider fallback configured", "kind", "embeddings", "primary", name, "fallback", fb.Name)
		}
		ps.Embeddings = p
		slog.Info("provider created", "kind", "embeddings", "name", name)
	}

	if name := cfg.Providers.Coach.Name; name != "" {
		p, err := reg.CreateCoach(cfg.Providers.Coach)
		if err != nil {
			return nil, fmt.Errorf("create coach provider %q: %w", name, err)
		}
		if fb := cfg.Providers.Coach.Fallback; fb != nil {
			sp, err := reg.CreateCoach(*fb)
			if err != nil {
				return nil, fmt.Errorf("create coach fallback %q: %w", fb.Name, err)
			}
			group := resilience.NewCoachFallback(p, name, resilience.FallbackConfig{})
			group.AddFallback(fb.Name, sp)
			p = group
			slog.Info("provider fallback configured", "kind", "coach", "primary", name, "fallback", fb.Name)
		}
		ps.Coach = p
		slog.Info("provider created", "kind", "coach", "name", name)
	}

	return ps, nil
}

// sidecarCheckers builds readiness probes for the configured measurement
// sidecars. An unconfigured sidecar gets no probe; its absence is a planned
// degradation, not unreadiness.
func sidecarCheckers(cfg *config.Config) []health.Checker {
	var checkers []health.Checker
	if cfg.Providers.Prosody.Name == "praatserver" && cfg.Providers.Prosody.BaseURL != "" {
		checkers = append(checkers, health.CheckHTTP("prosody", cfg.Providers.Prosody.BaseURL, nil))
	}
	if cfg.Providers.Spectral.Name == "librosaserver" && cfg.Providers.Spectral.BaseURL != "" {
		checkers = append(checkers, health.CheckHTTP("spectral", cfg.Providers.Spectral.BaseURL, nil))
	}
	return checkers
}

// ── Metrics listener ──────────────────────────────────────────────────────────

// startMetricsListener serves the Prometheus scrape endpoint plus health
// probes in a background goroutine for the lifetime of the process.
func startMetricsListener(addr string, checkers []health.Checker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(checkers...).Register(mux)

	wrapped := observe.Middleware(observe.DefaultMetrics())(mux)
	srv := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics listener error", "err", err)
		}
	}()
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// optInt extracts an integer value from a provider Options map[string]any.
// Returns 0 if the map is nil, the key is absent, or the value is not an
// integer (YAML decodes whole numbers as int).
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	v, ok := opts[key]
	if !ok {
		return 0
	}
	n, ok := v.(int)
	if !ok {
		return 0
	}
	return n
}
