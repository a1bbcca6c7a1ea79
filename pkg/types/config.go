// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each HTTP request. The translation call is the only
	// network suspension point in the pipeline, so this is also the
	// per-segment translation deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "papertrans/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ParserConfig holds settings for the parse stage.
type ParserConfig struct {
	// RulesPath points to a template rules YAML file. Empty selects the
	// built-in NeurIPS rules.
	RulesPath string `json:"rules_path,omitempty" yaml:"rules_path,omitempty"`
}

// TranslationProvider identifies the translation backend.
type TranslationProvider string

const (
	ProviderGoogle TranslationProvider = "google"
	ProviderOpenAI TranslationProvider = "openai"
	ProviderEcho   TranslationProvider = "echo"
)

// TranslationConfig holds settings for the translation stage.
type TranslationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the translation backend: google, openai, or echo.
	Provider TranslationProvider `json:"provider" yaml:"provider"`

	// TargetLang is the BCP 47 target language tag (default "es").
	TargetLang string `json:"target_lang" yaml:"target_lang"`

	// SourceLang is the source language tag (default "en").
	SourceLang string `json:"source_lang" yaml:"source_lang"`

	// OpenAIAPIKey authenticates against an OpenAI-compatible endpoint.
	OpenAIAPIKey string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`

	// OpenAIBaseURL overrides the OpenAI-compatible API base URL.
	OpenAIBaseURL string `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty"`

	// OpenAIModel is the model identifier used for translation requests.
	OpenAIModel string `json:"openai_model,omitempty" yaml:"openai_model,omitempty"`

	// CachePath is the SQLite translation cache file. Empty disables caching.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`
}

// OutputConfig holds settings for the render stage.
type OutputConfig struct {
	// Dir is the output directory. It receives one Markdown file per
	// language plus an images subdirectory.
	Dir string `json:"dir" yaml:"dir"`

	// KeepSource controls whether an untranslated companion Markdown file
	// is written alongside the translated one (default true).
	KeepSource bool `json:"keep_source" yaml:"keep_source"`
}

// PipelineConfig groups all stage configurations for one Converter.
type PipelineConfig struct {
	Parser      ParserConfig      `json:"parser" yaml:"parser"`
	Translation TranslationConfig `json:"translation" yaml:"translation"`
	Output      OutputConfig      `json:"output" yaml:"output"`
}
