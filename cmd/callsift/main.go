// Command callsift audits folders of sales-call recordings: releasing and
// late-hello detection on the agent channel, three-tier rebuttal matching
// over the transcript, and intro scoring into a reviewable table.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/app"
	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/pkg/provider/classify"
	"github.com/callsift/callsift/pkg/provider/classify/anyllm"
	"github.com/callsift/callsift/pkg/provider/embeddings"
	ollamaembed "github.com/callsift/callsift/pkg/provider/embeddings/ollama"
	oaembed "github.com/callsift/callsift/pkg/provider/embeddings/openai"
	"github.com/callsift/callsift/pkg/provider/transcribe"
	"github.com/callsift/callsift/pkg/provider/transcribe/whisper"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "callsift",
		Short:         "Audit sales-call recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; providers read their API keys from env
			// when the config omits them.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "callsift.yaml", "path to the YAML configuration file")

	root.AddCommand(newProcessCommand(&configPath))
	root.AddCommand(newPhrasesCommand(&configPath))
	root.AddCommand(newConfigCommand(&configPath))
	root.AddCommand(newVersionCommand())

	return root
}

// loadConfig loads the config file and installs the default logger at its
// configured level. A missing file falls back to the built-in defaults so
// `callsift process` works without a config.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel.Slog(),
	})))
	return cfg, nil
}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Transcription ────────────────────────────────────────────────────

	reg.RegisterTranscribe("whisper", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterTranscribe("whisper-native", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithNativeLanguage(lang))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	// ── Embeddings ───────────────────────────────────────────────────────

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

	// ── Classifier (LLM escalation tier) ─────────────────────────────────
	// openai, anthropic share the pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{"openai", "anthropic"} {
		reg.RegisterClassify(providerName, func(entry config.ProviderEntry) (classify.Classifier, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama and llama.cpp are local servers; BaseURL is the address.
	for _, providerName := range []string{"ollama", "llamacpp"} {
		reg.RegisterClassify(providerName, func(entry config.ProviderEntry) (classify.Classifier, error) {
			var opts []anyllmlib.Option
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}
}

// buildProviders instantiates all providers named in cfg using the registry
// and returns them in an [app.Providers] struct. An unregistered name is
// skipped so the corresponding tier degrades instead of failing the run.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	if name := cfg.Providers.Transcribe.Name; name != "" {
		p, err := reg.CreateTranscribe(cfg.Providers.Transcribe)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("skipping unregistered provider", "kind", "transcribe", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create transcribe provider %q: %w", name, err)
		} else {
			ps.Transcribe = p
			slog.Info("provider created", "kind", "transcribe", "name", name)
		}
	}

	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("skipping unregistered provider", "kind", "embeddings", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		} else {
			ps.Embeddings = p
			slog.Info("provider created", "kind", "embeddings", "name", name)
		}
	}

	if name := cfg.Providers.Classify.Name; name != "" {
		p, err := reg.CreateClassify(cfg.Providers.Classify)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("skipping unregistered provider", "kind", "classify", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create classify provider %q: %w", name, err)
		} else {
			ps.Classify = p
			slog.Info("provider created", "kind", "classify", "name", name)
		}
	}

	return ps, nil
}

// newApp loads the config, builds the providers, and wires the application.
func newApp(ctx context.Context, configPath string) (*app.App, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		return nil, nil, err
	}

	application, err := app.New(ctx, cfg, providers)
	if err != nil {
		return nil, nil, err
	}
	return application, cfg, nil
}

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
