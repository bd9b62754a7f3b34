package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/feirou/backend/config"
	httpDelivery "github.com/feirou/backend/internal/delivery/http"
	"github.com/feirou/backend/internal/domain"
	"github.com/feirou/backend/internal/infrastructure/cache"
	"github.com/feirou/backend/internal/infrastructure/catalog"
	"github.com/feirou/backend/internal/infrastructure/geo"
	"github.com/feirou/backend/internal/infrastructure/narrative"
	"github.com/feirou/backend/internal/infrastructure/pricefeed"
	"github.com/feirou/backend/internal/usecase"
)

func main() {
	// Load .env if present; real deployments use environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Server.Environment == "development"

	log.Printf("Starting Feirou Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	catalogStore, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogStore.Close()
	log.Printf("Catalog database: %s", cfg.Catalog.Path)

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	feedClient := pricefeed.NewClient(cfg.PriceFeed.APIKey, cfg.PriceFeed.BaseURL)
	feedClient.SetDebug(debug)
	log.Printf("Price feed configured: %s", cfg.PriceFeed.BaseURL)

	geoClient := geo.NewClient(cfg.Geo.APIKey, cfg.Geo.BaseURL, memoryCache, cfg.Cache.TTL)
	geoClient.SetDebug(debug)
	if geoClient.Configured() {
		log.Printf("Geo provider configured: %s", cfg.Geo.BaseURL)
	} else {
		log.Printf("WARNING: geo provider not configured - route distances will be randomized estimates")
	}

	var advisor domain.NarrativeAdvisor
	if cfg.Narrative.Enabled && cfg.Narrative.APIKey != "" {
		narrativeClient := narrative.NewClient(cfg.Narrative.APIKey, cfg.Narrative.BaseURL, cfg.Narrative.Model)
		narrativeClient.SetDebug(debug)
		advisor = narrativeClient
		log.Printf("Narrative advisor enabled: %s (%s)", cfg.Narrative.BaseURL, cfg.Narrative.Model)
	} else {
		advisor = narrative.NewNoop()
		log.Printf("Narrative advisor disabled - deterministic verdict text only")
	}

	// Initialize usecase layer
	matcher := usecase.NewMarketMatcher(usecase.MatcherConfig{
		ExtraStopWords:     cfg.Matching.ExtraStopWords,
		EnableDebugLogging: cfg.Matching.Debug || debug,
	})

	ranker := usecase.NewRouteRanker(geoClient, debug)
	assigner := usecase.NewPriceAssigner(debug)
	analyzer := usecase.NewCostBenefitAnalyzer(usecase.CostModel{
		FuelPricePerLiter:        cfg.CostModel.FuelPricePerLiter,
		FuelEfficiencyKmPerLiter: cfg.CostModel.FuelEfficiencyKmPerLiter,
		HourlyTimeValue:          cfg.CostModel.HourlyTimeValue,
	}, advisor, debug)

	optimizer := usecase.NewOptimizer(catalogStore, ranker, assigner, analyzer, debug)

	syncService := usecase.NewPriceSyncService(catalogStore, feedClient, matcher, usecase.SyncConfig{
		Concurrency:        cfg.Sync.Concurrency,
		RadiusKm:           cfg.PriceFeed.RadiusKm,
		PeriodDays:         cfg.PriceFeed.PeriodDays,
		EnableDebugLogging: debug,
	})

	log.Printf("Sync: concurrency=%d radius=%dkm period=%dd",
		cfg.Sync.Concurrency, cfg.PriceFeed.RadiusKm, cfg.PriceFeed.PeriodDays)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(optimizer, syncService, catalogStore)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
