package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Ai       AIConfig
	Workflow WorkflowConfig
	Content  ContentConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	RedisEnabled       bool
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
	EmbeddingCache    int64 // cached query vectors, 0 disables
}

type WorkflowConfig struct {
	BaseURL     string
	LessonPath  string
	HTTPTimeout time.Duration
}

type ContentConfig struct {
	CourseDir      string
	IngestionTopic string // watermill topic for uploaded material
	ChunkSize      int
	ChunkOverlap   int
	SearchTopK     int
	MaxUploadBytes int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisEnabled:       getEnvAsBool("REDIS_ENABLED", false),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbeddingCache:    int64(getEnvAsInt("EMBEDDING_CACHE_SIZE", 1000)),
		},
		Workflow: WorkflowConfig{
			BaseURL:     strings.TrimRight(getEnv("WORKFLOW_BASE_URL", "http://localhost:5678"), "/"),
			LessonPath:  getEnv("WORKFLOW_LESSON_PATH", "/webhook/lesson"),
			HTTPTimeout: getEnvAsDuration("WORKFLOW_HTTP_TIMEOUT", 120*time.Second),
		},
		Content: ContentConfig{
			CourseDir:      getEnv("COURSE_DIR", "courses"),
			IngestionTopic: getEnv("CONTENT_INGESTION_TOPIC_NAME", "INGEST_COURSE_CONTENT"),
			ChunkSize:      getEnvAsInt("CONTENT_CHUNK_SIZE", 800),
			ChunkOverlap:   getEnvAsInt("CONTENT_CHUNK_OVERLAP", 100),
			SearchTopK:     getEnvAsInt("CONTENT_SEARCH_TOP_K", 3),
			MaxUploadBytes: getEnvAsInt("CONTENT_MAX_UPLOAD_BYTES", 20*1024*1024),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-tutor-backend"),
		},
	}
}

// IsProduction reports whether GO_ENV is "production"
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
