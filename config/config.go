package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config is the process configuration, read from the environment and an optional .env file.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR, default=:8080"`
	LogLevel    int    `env:"LOG_LEVEL, default=0"` // debug = -4, info = 0, warn = 4
	CORSOrigins string `env:"CORS_ORIGINS, default=http://localhost:3000"`
	JWTSecret   string `env:"JWT_SECRET" validate:"required"`

	DB     Database `env:", prefix=DB_"`
	Lookup Lookup
	Vision Vision
	Images Images
}

type Database struct {
	Driver     string `env:"DRIVER, default=postgres" validate:"oneof=postgres sqlite"`
	Host       string `env:"HOST, default=localhost"`
	Port       string `env:"PORT, default=5432"`
	User       string `env:"USER"`
	Password   string `env:"PASSWORD"`
	Name       string `env:"NAME, default=nutrition_tracker"`
	SSLMode    string `env:"SSLMODE, default=disable"`
	SQLitePath string `env:"SQLITE_PATH, default=nutrition.db"`
}

// Lookup holds the food database providers.
type Lookup struct {
	OpenFoodFactsURL string        `env:"OFF_URL, default=https://world.openfoodfacts.org/api/v0" validate:"url"`
	USDAURL          string        `env:"USDA_URL, default=https://api.nal.usda.gov/fdc/v1" validate:"url"`
	USDAAPIKey       string        `env:"USDA_API_KEY, default=DEMO_KEY"`
	Timeout          time.Duration `env:"LOOKUP_TIMEOUT, default=10s"`
}

type Vision struct {
	Provider string `env:"IMAGE_PROVIDER, default=openai" validate:"oneof=openai rekognition"`
	URL      string `env:"OPENAI_URL, default=https://api.openai.com/v1/chat/completions" validate:"url"`
	APIKey   string `env:"OPENAI_API_KEY"`
	Model    string `env:"OPENAI_MODEL, default=gpt-4o-mini"`
}

// Images configures where uploaded meal photos are kept. S3 is used when Bucket is set.
type Images struct {
	AWSRegion string `env:"AWS_REGION, default=us-east-1"`
	Bucket    string `env:"S3_BUCKET"`
	PublicURL string `env:"S3_PUBLIC_URL"`
	UploadDir string `env:"UPLOAD_DIR, default=uploads"`
}

// Load reads envFile (if present) into the environment and decodes Config from it.
func Load(ctx context.Context, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// InitLogger installs a JSON slog handler at the configured level as the default logger.
func InitLogger(level int) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(level)})
	slog.SetDefault(slog.New(h))
}
