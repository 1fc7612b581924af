package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Extract   ExtractConfig
	Dataset   DatasetConfig
	Fetch     FetchConfig
	Provider  ProviderConfig
	Eval      EvalConfig
	Pdftotext string
}

// ExtractConfig bounds the per-document text excerpt.
type ExtractConfig struct {
	MaxPages  int // accepted-page ceiling
	Margin    int // look-ahead candidates beyond MaxPages
	TextMin   int // word count that ends the walk early
	TextLimit int // hard word-count ceiling per excerpt
}

// DatasetConfig controls metadata selection, partitioning and serialization.
type DatasetConfig struct {
	FieldList       []string // allowed metadata fields, "element" or "element/qualifier"
	TestIDFile      string   // newline-separated normalized test identifiers
	PromptSuffix    string
	CompletionStop  string
	PartitionStrict bool // unmatched identifier: error instead of fall-through to train
}

// FetchConfig holds document retrieval and cache configuration.
type FetchConfig struct {
	CacheDir    string
	CacheDBURL  string
	Concurrency int
	Strict      bool // retrieval failure aborts the run instead of skipping the item
	Timeout     time.Duration
}

// ProviderConfig holds fine-tuning/inference provider configuration.
type ProviderConfig struct {
	APIKey       string
	BaseURL      string
	BaseModel    string
	Timeout      time.Duration
	PollInterval time.Duration
}

// EvalConfig holds evaluation configuration.
type EvalConfig struct {
	MaxTokens int
	Sample    int // 0 means all test documents
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			MaxPages:  getEnvAsInt("MAX_PAGES", 4),
			Margin:    getEnvAsInt("PAGE_MARGIN", 2),
			TextMin:   getEnvAsInt("TEXT_MIN", 500),
			TextLimit: getEnvAsInt("TEXT_LIMIT", 1500),
		},
		Dataset: DatasetConfig{
			FieldList:       getEnvAsList("FIELD_LIST", "title,creator,contributor/advisor,publisher,date/issued,identifier/urn,language/iso"),
			TestIDFile:      getEnv("TEST_ID_FILE", ""),
			PromptSuffix:    getEnvAsDelim("PROMPT_SUFFIX", "\n\n###\n\n"),
			CompletionStop:  getEnvAsDelim("COMPLETION_STOP", " END"),
			PartitionStrict: getEnvAsBool("PARTITION_STRICT", false),
		},
		Fetch: FetchConfig{
			CacheDir:    getEnv("CACHE_DIR", "./cache"),
			CacheDBURL:  getEnv("CACHE_DB_URL", "file:cache/index.db"),
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 1),
			Strict:      getEnvAsBool("FETCH_STRICT", true),
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", 60*time.Second),
		},
		Provider: ProviderConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", ""),
			BaseModel:    getEnv("BASE_MODEL", "babbage-002"),
			Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			PollInterval: getEnvAsDuration("OPENAI_POLL_INTERVAL", 15*time.Second),
		},
		Eval: EvalConfig{
			MaxTokens: getEnvAsInt("EVAL_MAX_TOKENS", 350),
			Sample:    getEnvAsInt("EVAL_SAMPLE", 0),
		},
		Pdftotext: getEnv("PDFTOTEXT", "pdftotext"),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvAsDelim reads a delimiter value, interpreting `\n` escapes so that
// multi-line delimiters survive the environment.
func getEnvAsDelim(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.ReplaceAll(value, `\n`, "\n")
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.MaxPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_PAGES must be positive", ErrInvalidInput)
	}
	if c.Extract.Margin < 0 {
		return NewAppError("CONFIG_ERROR", "PAGE_MARGIN must not be negative", ErrInvalidInput)
	}
	if c.Extract.TextLimit < c.Extract.TextMin {
		return NewAppError("CONFIG_ERROR", "TEXT_LIMIT must not be below TEXT_MIN", ErrInvalidInput)
	}
	if len(c.Dataset.FieldList) == 0 {
		return NewAppError("CONFIG_ERROR", "FIELD_LIST must name at least one field", ErrInvalidInput)
	}
	if c.Dataset.PromptSuffix == "" || c.Dataset.CompletionStop == "" {
		return NewAppError("CONFIG_ERROR", "PROMPT_SUFFIX and COMPLETION_STOP are required", ErrInvalidInput)
	}
	if c.Fetch.Concurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "FETCH_CONCURRENCY must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateProvider gates the commands that talk to the remote provider.
func (c *Config) ValidateProvider() error {
	if c.Provider.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
