package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"meter-billing/internal/api/handlers"
	"meter-billing/internal/api/middleware"
	"meter-billing/internal/billing"
	"meter-billing/internal/config"
	"meter-billing/internal/ingest"
	"meter-billing/internal/nem12"
	"meter-billing/internal/tariff"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}

	st, err := cfg.OpenStore()
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer st.Close()

	tariffs, err := tariff.Load(cfg.Tariffs)
	if err != nil {
		log.Fatalf("Failed to load tariffs %s: %v", cfg.Tariffs, err)
	}

	source := nem12.New()
	importer := ingest.New(st, source, cfg.Step())
	aggregator := billing.New(st, tariff.NewResolver(tariffs))

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	importHandler := handlers.NewImportHandler(importer)
	billingHandler := handlers.NewBillingHandler(aggregator)
	nmiHandler := handlers.NewNMIHandler(source)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/import", importHandler.Run)
		api.GET("/billing/summary", billingHandler.Summary)
		api.GET("/billing/breakdown", billingHandler.Breakdown)
		api.GET("/nmis", nmiHandler.List)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s (dataset=%s backend=%s)", addr, cfg.Data.Path, cfg.Data.Backend)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
