package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marovi/papertrans/internal/parse"
	"github.com/marovi/papertrans/internal/pipeline"
	"github.com/marovi/papertrans/internal/translate"
	"github.com/marovi/papertrans/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>",
	Short: "Convert a paper PDF into translated Markdown",
	Long: `Convert runs the full pipeline on one PDF: parse, map figures to
captions, translate every text block, and write Markdown plus image files
into the output directory. The run is all-or-nothing: a failing stage
leaves the output directory untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]

	cfg, err := convertConfig(cmd)
	if err != nil {
		return err
	}

	rules := parse.DefaultRules()
	if cfg.Parser.RulesPath != "" {
		rules, err = parse.LoadRules(cfg.Parser.RulesPath)
		if err != nil {
			return err
		}
	}

	provider, cleanup, err := buildProvider(cfg.Translation)
	if err != nil {
		return err
	}
	defer cleanup()

	conv := pipeline.New(parse.NewExtractor(rules), provider, cfg, rules.CaptionWindow, os.Stdout)
	result, err := conv.Run(cmd.Context(), pdfPath)
	if err != nil {
		return err
	}

	fmt.Printf("\nConverted %d block(s) and %d image(s): %s\n", result.Blocks, result.Images, result.MarkdownPath)
	return nil
}

// convertConfig assembles the pipeline configuration from flags, the
// viper config file, and loaded secrets, in that precedence order.
func convertConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	outDir := stringSetting(cmd, "output", "output.dir")
	lang := stringSetting(cmd, "lang", "translation.target_lang")
	sourceLang := stringSetting(cmd, "source-lang", "translation.source_lang")
	provider := stringSetting(cmd, "provider", "translation.provider")
	rulesPath := stringSetting(cmd, "rules", "parser.rules_path")
	cachePath := stringSetting(cmd, "cache", "translation.cache_path")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	noSource, _ := cmd.Flags().GetBool("no-source")

	if err := translate.ValidateTarget(lang); err != nil {
		return types.PipelineConfig{}, err
	}
	if noCache {
		cachePath = ""
	}

	cfg := types.PipelineConfig{
		Parser: types.ParserConfig{RulesPath: rulesPath},
		Translation: types.TranslationConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: "papertrans/" + version,
			},
			Provider:      types.TranslationProvider(provider),
			TargetLang:    lang,
			SourceLang:    sourceLang,
			OpenAIAPIKey:  secretDefault("openai-api-key", viper.GetString("translation.openai_api_key")),
			OpenAIBaseURL: secretDefault("openai-base-url", viper.GetString("translation.openai_base_url")),
			OpenAIModel:   secretDefault("openai-model", viper.GetString("translation.openai_model")),
			CachePath:     cachePath,
		},
		Output: types.OutputConfig{Dir: outDir, KeepSource: !noSource},
	}
	return cfg, nil
}

// buildProvider constructs the configured translation backend, wrapping
// it in the SQLite cache when a cache path is set. The returned cleanup
// closes the cache.
func buildProvider(cfg types.TranslationConfig) (translate.Provider, func(), error) {
	var p translate.Provider
	switch cfg.Provider {
	case types.ProviderGoogle, "":
		p = translate.NewGoogleProvider(cfg)
	case types.ProviderOpenAI:
		p = translate.NewOpenAIProvider(cfg)
	case types.ProviderEcho:
		p = translate.Echo{}
	default:
		return nil, nil, fmt.Errorf("unknown provider %q: use google, openai, or echo", cfg.Provider)
	}

	cleanup := func() {}
	if cfg.CachePath != "" {
		cache, err := translate.OpenCache(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		p = translate.WithCache(p, cache)
		cleanup = func() { cache.Close() }
	}
	return p, cleanup, nil
}

// stringSetting reads a flag, falling back to the viper config key when
// the flag was left at its default.
func stringSetting(cmd *cobra.Command, flag, viperKey string) string {
	v, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) {
		if cv := viper.GetString(viperKey); cv != "" {
			return cv
		}
	}
	return v
}

func init() {
	convertCmd.Flags().String("output", "output", "output directory for Markdown and images")
	convertCmd.Flags().String("lang", "es", "target language tag")
	convertCmd.Flags().String("source-lang", "en", "source language tag")
	convertCmd.Flags().String("provider", "google", "translation provider: google, openai, or echo")
	convertCmd.Flags().String("rules", "", "template rules YAML file (default: built-in NeurIPS rules)")
	convertCmd.Flags().String("cache", ".papertrans/translations.db", "SQLite translation cache file")
	convertCmd.Flags().Bool("no-cache", false, "disable the translation cache")
	convertCmd.Flags().Bool("no-source", false, "skip the untranslated companion Markdown file")
	convertCmd.Flags().Duration("timeout", 30*time.Second, "per-segment translation deadline")

	rootCmd.AddCommand(convertCmd)
}
