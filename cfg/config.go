package cfg

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type MarketClientConfig struct {
	BaseURL string
}

type WeatherClientConfig struct {
	BaseURL string
}

type Config struct {
	AppEnv              string
	AppPort             string
	RedisConfig         RedisConfig
	MarketClientConfig  MarketClientConfig
	WeatherClientConfig WeatherClientConfig
	DatabaseDSN         string
	SnapshotTTLMinutes  int
	TaxRate             float64
	QuoteValidity       time.Duration
}

func Load() (*Config, error) {
	var errs []error

	err := godotenv.Load()
	if err != nil {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)
	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := mustEnv("REDIS_PASSWORD", &errs)

	marketClientBaseUrl := mustEnv("MARKET_CLIENT_BASE_URL", &errs)
	weatherClientBaseUrl := mustEnv("WEATHER_CLIENT_BASE_URL", &errs)

	// Optional: empty DSN means the in-memory request store.
	databaseDSN := os.Getenv("DATABASE_DSN")

	snapshotTTL := mustEnv("SNAPSHOT_TTL_MINUTES", &errs)
	snapshotTTLInt, err := strconv.Atoi(snapshotTTL)
	if err != nil {
		errs = append(errs, errors.New("conversion failed env: "+"SNAPSHOT_TTL_MINUTES"))
	}

	taxRate := envFloat("TAX_RATE", 0.08, &errs)
	quoteValidHours := envInt("QUOTE_VALID_HOURS", 24, &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		RedisConfig: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		MarketClientConfig: MarketClientConfig{
			BaseURL: marketClientBaseUrl,
		},
		WeatherClientConfig: WeatherClientConfig{
			BaseURL: weatherClientBaseUrl,
		},
		DatabaseDSN:        databaseDSN,
		SnapshotTTLMinutes: snapshotTTLInt,
		TaxRate:            taxRate,
		QuoteValidity:      time.Duration(quoteValidHours) * time.Hour,
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envFloat(key string, fallback float64, errs *[]error) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int, errs *[]error) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return parsed
}
