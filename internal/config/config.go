package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rag-chat/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Model provider: "http" talks to the raw embedding/completion endpoints,
	// "openai" goes through the OpenAI SDK.
	Provider string `env:"LLM_PROVIDER" envDefault:"http"`

	// External service configurations
	EmbeddingCfg  EmbeddingConnectorConfig  `envPrefix:"EMBEDDING_"`
	CompletionCfg CompletionConnectorConfig `envPrefix:"COMPLETION_"`
	OpenAICfg     OpenAIConfig              `envPrefix:"OPENAI_"`
	SearchCfg     SearchConfig              `envPrefix:"SEARCH_"`

	Chat   ChatConfig   `envPrefix:"CHAT_"`
	Ingest IngestConfig `envPrefix:"INGEST_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Loaded from CHAT_SYSTEM_PROMPT_FILE, falls back to DefaultSystemPrompt
	SystemPrompt string

	// Environment (set from flag, not from env var)
	Environment string
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"90s"`
	Token                 string        `env:"TOKEN"`
	APIKey                string        `env:"API_KEY"`
	Url                   string        `env:"SERVICE_URL"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Endpoint string `env:"ENDPOINT"`
	Model    string `env:"MODEL"`
}

type CompletionConnectorConfig struct {
	HTTPClientConfig
	Endpoint    string   `env:"ENDPOINT"`
	Model       string   `env:"MODEL"`
	MaxTokens   int      `env:"MAX_TOKENS" envDefault:"500"`
	Temperature *float64 `env:"TEMPERATURE"`
}

type OpenAIConfig struct {
	APIKey         string `env:"API_KEY"`
	BaseURL        string `env:"BASE_URL"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
}

const (
	SearchBackendElastic  = "elastic"
	SearchBackendPgvector = "pgvector"
	SearchBackendMemory   = "memory"
)

// DefaultTopK is the number of documents injected into every turn.
const DefaultTopK = 2

type SearchConfig struct {
	Backend   string `env:"BACKEND" envDefault:"elastic"`
	IndexName string `env:"INDEX_NAME" envDefault:"codebase_index_v2"`
	TopK      int    `env:"TOP_K" envDefault:"2"`
	// Dimension of the dense_vector mapping created by ingestion
	Dimension int           `env:"DIMENSION" envDefault:"1536"`
	Elastic   ElasticConfig `envPrefix:"ELASTIC_"`
}

type ElasticConfig struct {
	HTTPClientConfig
	InsecureSkipVerify bool `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
}

type ChatConfig struct {
	MaxHistoryMessages int           `env:"MAX_HISTORY_MESSAGES" envDefault:"7"`
	MaxMessageLength   int           `env:"MAX_MESSAGE_LENGTH" envDefault:"4000"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CleanupInterval    time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	SystemPromptFile   string        `env:"SYSTEM_PROMPT_FILE" envDefault:"internal/config/system_prompt.txt"`
}

type IngestConfig struct {
	// Root is indexed at server start when the memory backend is used
	Root         string               `env:"ROOT"`
	MaxTokens    int                  `env:"MAX_TOKENS" envDefault:"8000"`
	MaxFileSize  int64                `env:"MAX_FILE_SIZE" envDefault:"1048576"`
	ExcludeDirs  []string             `env:"EXCLUDE_DIRS" envSeparator:"," envDefault:"bin,obj,embeddings,wwwroot,.git,node_modules,vendor"`
	ExcludeFiles []string             `env:"EXCLUDE_FILES" envSeparator:"," envDefault:"appsettings.json,.env"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// DefaultSystemPrompt is pinned at the head of every conversation.
const DefaultSystemPrompt = "You are a virtual assistant for a software development team, answering the technical " +
	"and project questions of users (USER) precisely and concisely. Use the details provided in the system messages, " +
	"which contain excerpts of files, documentation and other relevant project information. Answer based on that " +
	"information and keep a short-term memory of the answers and details discussed. If a user asks about something " +
	"not covered by the system messages, politely ask for more details such as a file or class name. Keep a " +
	"professional and friendly tone."

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the process environment into a validated Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadSystemPrompt(cfg); err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.Chat.MaxHistoryMessages < 2 || cfg.Chat.MaxHistoryMessages > 100 {
		errors = append(errors, fmt.Sprintf("CHAT_MAX_HISTORY_MESSAGES must be between 2 and 100, got %d", cfg.Chat.MaxHistoryMessages))
	}

	if cfg.Chat.MaxMessageLength < 1 {
		errors = append(errors, fmt.Sprintf("CHAT_MAX_MESSAGE_LENGTH must be positive, got %d", cfg.Chat.MaxMessageLength))
	}

	if cfg.SearchCfg.TopK < 1 || cfg.SearchCfg.TopK > 20 {
		errors = append(errors, fmt.Sprintf("SEARCH_TOP_K must be between 1 and 20, got %d", cfg.SearchCfg.TopK))
	}

	switch cfg.SearchCfg.Backend {
	case SearchBackendElastic:
		if cfg.SearchCfg.Elastic.Url == "" {
			errors = append(errors, "SEARCH_ELASTIC_SERVICE_URL is required for the elastic backend")
		}
	case SearchBackendPgvector, SearchBackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("SEARCH_BACKEND must be one of elastic, pgvector, memory, got %q", cfg.SearchCfg.Backend))
	}

	if !cfg.EnableMocks {
		switch cfg.Provider {
		case "http":
			if cfg.EmbeddingCfg.Endpoint == "" && cfg.EmbeddingCfg.Url == "" {
				errors = append(errors, "EMBEDDING_ENDPOINT or EMBEDDING_SERVICE_URL is required for the http provider")
			}
			if cfg.CompletionCfg.Endpoint == "" && cfg.CompletionCfg.Url == "" {
				errors = append(errors, "COMPLETION_ENDPOINT or COMPLETION_SERVICE_URL is required for the http provider")
			}
		case "openai":
			if cfg.OpenAICfg.APIKey == "" {
				errors = append(errors, "OPENAI_API_KEY is required for the openai provider")
			}
		default:
			errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be http or openai, got %q", cfg.Provider))
		}
	}

	if cfg.CompletionCfg.MaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("COMPLETION_MAX_TOKENS must be positive, got %d", cfg.CompletionCfg.MaxTokens))
	}

	if t := cfg.CompletionCfg.Temperature; t != nil && (*t < 0 || *t > 2) {
		errors = append(errors, fmt.Sprintf("COMPLETION_TEMPERATURE must be between 0 and 2, got %v", *t))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadSystemPrompt(cfg *Config) error {
	path := filepath.Clean(cfg.Chat.SystemPromptFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Printf("Warning: system prompt file not found at %s, using default prompt\n", path)
		cfg.SystemPrompt = DefaultSystemPrompt
		return nil
	}
	if err != nil {
		return fmt.Errorf("read system prompt file: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return fmt.Errorf("system prompt file is empty: %s", path)
	}

	cfg.SystemPrompt = prompt
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
