package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Tracking TrackingConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
	RateLimit      int
}

type SessionConfig struct {
	TokenStore    string
	TokenFile     string
	ProgressStore string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
}

// Enabled reports whether any broker was configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type TrackingConfig struct {
	PollSeconds int
	StepSeconds int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeout, _ := strconv.Atoi(getEnv("API_TIMEOUT_SECONDS", "15"))
	rateLimit, _ := strconv.Atoi(getEnv("API_RATE_LIMIT", "20"))
	pollSeconds, _ := strconv.Atoi(getEnv("TRACKING_POLL_SECONDS", "30"))
	stepSeconds, _ := strconv.Atoi(getEnv("TRACKING_STEP_SECONDS", "10"))

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
			TimeoutSeconds: timeout,
			RateLimit:      rateLimit,
		},
		Session: SessionConfig{
			TokenStore:    getEnv("TOKEN_STORE", "file"),
			TokenFile:     getEnv("TOKEN_FILE", defaultTokenFile()),
			ProgressStore: getEnv("PROGRESS_STORE", "memory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			TopicEvents: getEnv("KAFKA_TOPIC_CLIENT_EVENTS", "client-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Tracking: TrackingConfig{
			PollSeconds: pollSeconds,
			StepSeconds: stepSeconds,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, api=%s", cfg.Server.Env, cfg.Server.Port, cfg.API.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".food-delivery-token"
	}
	return filepath.Join(home, ".food-delivery", "token")
}
