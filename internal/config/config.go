package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BlobBasePath string

	AuthSecret string

	// Generation collaborator (OpenAI-compatible Responses API).
	GenAIBaseURL string
	GenAIKey     string
	GenAIModel   string
	GenAITimeout time.Duration

	// Redis for the daily-quote cache; empty disables caching.
	RedisAddr string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		BlobBasePath:       envOr("BLOB_BASE_PATH", "./data"),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		GenAIBaseURL:       envOr("GENAI_BASE_URL", "https://api.openai.com"),
		GenAIKey:           os.Getenv("GENAI_API_KEY"),
		GenAIModel:         envOr("GENAI_MODEL", "gpt-4o-mini"),
		GenAITimeout:       envDuration("GENAI_TIMEOUT", 60*time.Second),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.brightboard.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
