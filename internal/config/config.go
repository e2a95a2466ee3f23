package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	RabbitMQURL  string
	ExtractorURL string
	LogLevel     string
	LogFormat    string
	WorkerCount  int
	S3           S3Config
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists. RABBITMQ_URL is optional: without it the API runs
// analysis inline instead of dispatching jobs to the worker.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DB_URL"),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		ExtractorURL: os.Getenv("EXTRACTOR_URL"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    getenv("LOG_FORMAT", "console"),
		WorkerCount:  3,
		S3: S3Config{
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			Region:       getenv("S3_REGION", "auto"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			Bucket:       os.Getenv("S3_BUCKET"),
			UsePathStyle: getenv("S3_USE_PATH_STYLE", "true") == "true",
		},
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid WORKER_COUNT %q", v)
		}
		cfg.WorkerCount = n
	}

	for name, value := range map[string]string{
		"DB_URL":        cfg.DatabaseURL,
		"EXTRACTOR_URL": cfg.ExtractorURL,
		"S3_ACCESS_KEY": cfg.S3.AccessKey,
		"S3_SECRET_KEY": cfg.S3.SecretKey,
		"S3_BUCKET":     cfg.S3.Bucket,
	} {
		if value == "" {
			return nil, fmt.Errorf("empty %s in environment", name)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
