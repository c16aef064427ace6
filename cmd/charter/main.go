package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"charter/cfg"
	"charter/internal/charter"
	"charter/internal/pricing"
	"charter/internal/request"
	"charter/pkg/cache"
	"charter/pkg/db"
	"charter/pkg/idgen"
	"charter/pkg/logger"
	"charter/pkg/quoteclient"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Cache
	// ============
	redisAddr := config.RedisConfig.Host + ":" + config.RedisConfig.Port
	redis := cache.NewRedisCache(redisAddr, config.RedisConfig.Password)
	snapshotTTL := time.Duration(config.SnapshotTTLMinutes) * time.Minute

	// ============
	// Providers
	// ============
	httpClient := &http.Client{
		Timeout: 5 * time.Second,
	}
	marketClient := quoteclient.NewMarketDataClient(httpClient, config.MarketClientConfig.BaseURL, zlogger)
	weatherClient := quoteclient.NewWeatherClient(httpClient, config.WeatherClientConfig.BaseURL, zlogger)
	market := quoteclient.NewCachedMarketData(marketClient, redis, snapshotTTL, zlogger)
	weather := quoteclient.NewCachedWeather(weatherClient, redis, snapshotTTL, zlogger)

	// ============
	// Store
	// ============
	var store request.Store
	if config.DatabaseDSN != "" {
		sqlClient, err := db.NewSQLClient("postgres", config.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		store = request.NewPostgresStore(sqlClient)
	} else {
		store = request.NewMemoryStore()
	}

	ids, err := idgen.NewSnowflakeGenerator(1)
	if err != nil {
		log.Fatalf("Failed to init id generator: %v", err)
	}

	// ============
	// Internal Service
	// ============
	engine := pricing.NewEngine(market, weather, zlogger,
		pricing.WithTaxRate(config.TaxRate),
		pricing.WithValidity(config.QuoteValidity),
	)
	lifecycle := request.NewLifecycle(store, ids, zlogger,
		request.WithQuoteValidity(config.QuoteValidity),
	)
	handler := charter.NewHandler(engine, lifecycle)

	// ============
	// HTTP
	// ============
	r := gin.Default()
	handler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", config.AppPort)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
