package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	ArtifactSource   string
	ArtifactDir      string
	ArtifactManifest string

	ArtifactS3Bucket    string
	ArtifactS3Prefix    string
	ArtifactS3Region    string
	ArtifactS3Endpoint  string
	ArtifactS3AccessKey string
	ArtifactS3SecretKey string

	ReducerEnabled bool

	LanguageDetectionEnabled   bool
	LanguageDetectionLanguages []string

	PostgresDSN string

	NATSURL               string
	ScreenSubject         string
	NATSRequestTimeoutSec int

	MaxUploadBytes int64

	APIRateLimitRPS       int
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	ResilienceMaxAttempts    int
	ResilienceBreakerEnabled bool

	WorkerMetricsPort string
}

// Load reads the process environment. A .env file (ENV_FILE, default ./.env) is applied first
// without overriding variables that are already set.
func Load() Config {
	loadDotEnv(mustEnv("ENV_FILE", ".env"))

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		ArtifactSource:   strings.ToLower(mustEnv("ARTIFACT_SOURCE", "local")),
		ArtifactDir:      mustEnv("ARTIFACT_DIR", "./artifacts"),
		ArtifactManifest: mustEnv("ARTIFACT_MANIFEST", ""),

		ArtifactS3Bucket:    mustEnv("ARTIFACT_S3_BUCKET", ""),
		ArtifactS3Prefix:    mustEnv("ARTIFACT_S3_PREFIX", ""),
		ArtifactS3Region:    mustEnv("ARTIFACT_S3_REGION", "us-east-1"),
		ArtifactS3Endpoint:  mustEnv("ARTIFACT_S3_ENDPOINT", ""),
		ArtifactS3AccessKey: mustEnv("ARTIFACT_S3_ACCESS_KEY", ""),
		ArtifactS3SecretKey: mustEnv("ARTIFACT_S3_SECRET_KEY", ""),

		ReducerEnabled: mustEnvBool("REDUCER_ENABLED", true),

		LanguageDetectionEnabled:   mustEnvBool("LANGUAGE_DETECTION_ENABLED", false),
		LanguageDetectionLanguages: mustEnvList("LANGUAGE_DETECTION_LANGUAGES", []string{"en", "de", "fr", "es", "it", "pt", "nl", "ru"}),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:               mustEnv("NATS_URL", "nats://localhost:4222"),
		ScreenSubject:         mustEnv("SCREEN_SUBJECT", "resumes.screen"),
		NATSRequestTimeoutSec: mustEnvInt("NATS_REQUEST_TIMEOUT_SECONDS", 30),

		MaxUploadBytes: int64(mustEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		APIRateLimitRPS:       mustEnvInt("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:        mustEnvInt("API_MAX_INFLIGHT", 16),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		ResilienceMaxAttempts:    mustEnvInt("RESILIENCE_MAX_ATTEMPTS", 4),
		ResilienceBreakerEnabled: mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func loadDotEnv(path string) {
	if path == "" {
		return
	}
	// A missing file is the normal case outside local development.
	_ = godotenv.Load(path)
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
