package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings is the static process configuration read from the environment
// (and an optional .env file).
type Settings struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"` // empty = stdout only

	PostgresURI        string `env:"POSTGRES_URI,required"`
	AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	SeedDefaultConfigs bool   `env:"SEED_DEFAULT_CONFIGS" envDefault:"false"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	RedisDialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`

	MongoURI     string `env:"MONGO_URI"`
	MongoDB      string `env:"MONGO_DB" envDefault:"seopilot"`
	MongoMaxPool uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"10"`
	MongoTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"15s"`
	CallLogStore string `env:"CALL_LOG_STORE" envDefault:"postgres"` // postgres|mongo

	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	VertexProject         string `env:"VERTEX_PROJECT"`
	VertexLocation        string `env:"VERTEX_LOCATION" envDefault:"us-central1"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"5"`
	MaxAttempts       int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	RetryBackoff      time.Duration `env:"RETRY_BACKOFF" envDefault:"60s"`

	CatalogPageSize int           `env:"CATALOG_PAGE_SIZE" envDefault:"20"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`

	ExportBucket string `env:"EXPORT_BUCKET"`

	// base64, 32 bytes; seals store api tokens
	AppKey string `env:"APP_KEY"`
}

// Load reads .env (if present) and parses the environment into Settings.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.MaxAttempts < 1 {
		s.MaxAttempts = 1
	}
	if s.WorkerConcurrency < 1 {
		s.WorkerConcurrency = 1
	}
	// each product worker blocks one connection in XREADGROUP
	if floor := s.WorkerConcurrency + 4; s.RedisPoolSize < floor {
		s.RedisPoolSize = floor
	}
	if s.CatalogPageSize < 1 {
		s.CatalogPageSize = 20
	}
	return s, nil
}
