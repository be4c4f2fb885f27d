package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port      string
	JWTSecret string

	// Database. DatabaseURL takes a postgres DSN; when empty the server
	// falls back to a local sqlite file (dev mode).
	DatabaseURL string
	SQLitePath  string

	// AI providers. Gemini is primary, OpenAI is the fallback.
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Midtrans payment gateway.
	MidtransServerKey  string
	MidtransClientKey  string
	MidtransProduction bool

	// Xendit callback verification token.
	XenditCallbackToken string

	// WhatsApp Cloud API / Meta graph.
	VerifyToken  string
	GraphAPIBase string

	// Website-extraction proxy (reader-style, page text by URL).
	CrawlProxyBase string

	// Redis cache for widget business-info lookups. Empty addr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "./nuvio.db"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:  getEnv("MIDTRANS_CLIENT_KEY", ""),
		MidtransProduction: getEnvBool("MIDTRANS_PRODUCTION", false),

		XenditCallbackToken: getEnv("XENDIT_CALLBACK_TOKEN", ""),

		VerifyToken:  getEnv("VERIFY_TOKEN", ""),
		GraphAPIBase: getEnv("GRAPH_API_BASE", "https://graph.facebook.com/v19.0"),

		CrawlProxyBase: getEnv("CRAWL_PROXY_BASE", "https://r.jina.ai"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
