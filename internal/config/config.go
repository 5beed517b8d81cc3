package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Screening ScreeningConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
}

// ScreeningConfig holds every knob the screening pipeline consumes. Each
// component receives the values it needs through its constructor; nothing
// reads the environment directly.
type ScreeningConfig struct {
	MaxChunkTokens             int
	ChunkOverlap               int
	TopK                       int
	ScoreThreshold             float64
	EmbeddingDim               int
	RequestTimeout             time.Duration
	MaxConcurrentProviderCalls int
	ThrottleMaxAttempts        int
	ProviderCallsPerSecond     float64
	ShortlistLimit             int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_screener"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "screening_chunks"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
		},
		Screening: ScreeningConfig{
			MaxChunkTokens:             getEnvAsInt("MAX_CHUNK_TOKENS", 500),
			ChunkOverlap:               getEnvAsInt("CHUNK_OVERLAP", 50),
			TopK:                       getEnvAsInt("TOP_K", 3),
			ScoreThreshold:             getEnvAsFloat("SCORE_THRESHOLD", 60.0),
			EmbeddingDim:               getEnvAsInt("EMBEDDING_DIM", 768),
			RequestTimeout:             getEnvAsDuration("REQUEST_TIMEOUT", "30s"),
			MaxConcurrentProviderCalls: getEnvAsInt("MAX_CONCURRENT_PROVIDER_CALLS", 3),
			ThrottleMaxAttempts:        getEnvAsInt("THROTTLE_MAX_ATTEMPTS", 4),
			ProviderCallsPerSecond:     getEnvAsFloat("PROVIDER_CALLS_PER_SECOND", 2.0),
			ShortlistLimit:             getEnvAsInt("SHORTLIST_LIMIT", 10),
		},
	}
}

// Validate rejects unusable screening parameters before any component
// starts. Invalid configuration is fatal, never retried.
func (c *Config) Validate() error {
	s := c.Screening
	if s.MaxChunkTokens <= 0 {
		return fmt.Errorf("MAX_CHUNK_TOKENS must be positive, got %d", s.MaxChunkTokens)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.MaxChunkTokens {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, MAX_CHUNK_TOKENS), got %d", s.ChunkOverlap)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", s.TopK)
	}
	if s.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", s.EmbeddingDim)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", s.RequestTimeout)
	}
	if s.MaxConcurrentProviderCalls <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_PROVIDER_CALLS must be positive, got %d", s.MaxConcurrentProviderCalls)
	}
	if s.ThrottleMaxAttempts <= 0 {
		return fmt.Errorf("THROTTLE_MAX_ATTEMPTS must be positive, got %d", s.ThrottleMaxAttempts)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
