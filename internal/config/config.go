package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	DataDir  string

	// persistence: "file" writes JSON documents under DataDir, "db" uses gorm
	StorageBackend string
	DBDriver       string
	DBDSN          string

	// session links: "memory" or "redis"
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	// zero keeps session links until logout
	SessionTTL     time.Duration

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	// AI provider
	AIProvider        string
	GeminiAPIKey      string
	GeminiModel       string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
	AnthropicAPIKey   string
	AnthropicModel    string

	// rabbitMQ, empty URL disables turn events
	RabbitURL         string
	RabbitQueue       string
	WorkerConcurrency int

	UploadDir       string
	MaxUploadBytes  int64
	PersistInterval time.Duration
	LogLevel        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func Load() Config {
	tokenTTL := getint("TOKEN_TTL_HOURS", 24*7)
	if tokenTTL <= 0 {
		tokenTTL = 24 * 7
	}

	sessionTTL := getint("SESSION_TTL_HOURS", 0)
	if sessionTTL < 0 {
		sessionTTL = 0
	}

	persistEvery := getint("PERSIST_INTERVAL_SECONDS", 300)
	if persistEvery <= 0 {
		persistEvery = 300
	}

	concurrency := getint("WORKER_CONCURRENCY", 2)
	if concurrency <= 0 {
		concurrency = 2
	}
	if concurrency > 50 {
		concurrency = 50
	}

	var origins []string
	for _, o := range strings.Split(getenv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	dataDir := getenv("DATA_DIR", "data")

	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":3000"),
		DataDir:  dataDir,

		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "file")),
		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:          os.Getenv("DB_DSN"),

		SessionBackend: strings.ToLower(getenv("SESSION_BACKEND", "memory")),
		RedisAddr:      getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getint("REDIS_DB", 0),
		SessionTTL:     time.Duration(sessionTTL) * time.Hour,

		JWTSecret:   getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:    time.Duration(tokenTTL) * time.Hour,
		CORSOrigins: origins,

		AIProvider:        strings.ToLower(getenv("AI_PROVIDER", "gemini")),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		OllamaBaseURL:     getenv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getenv("OLLAMA_MODEL", "llava:latest"),
		OpenRouterBaseURL: getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getenv("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    getenv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		RabbitURL:         os.Getenv("RABBIT_URL"),
		RabbitQueue:       getenv("RABBIT_QUEUE", "companion_turns"),
		WorkerConcurrency: concurrency,

		UploadDir:       getenv("UPLOAD_DIR", dataDir+"/uploads"),
		MaxUploadBytes:  10 << 20,
		PersistInterval: time.Duration(persistEvery) * time.Second,
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}
