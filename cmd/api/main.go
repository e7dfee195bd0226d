package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/api"
	"github.com/omishoninjp-sys/daigo/internal/api/middleware"
	"github.com/omishoninjp-sys/daigo/internal/cache"
	"github.com/omishoninjp-sys/daigo/internal/config"
	"github.com/omishoninjp-sys/daigo/internal/pricing"
	"github.com/omishoninjp-sys/daigo/internal/scraper"
	"github.com/omishoninjp-sys/daigo/internal/service"
	"github.com/omishoninjp-sys/daigo/internal/shopify"
	"github.com/omishoninjp-sys/daigo/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Server.Debug)
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting DAIGO API",
		zap.Bool("debug", cfg.Server.Debug),
		zap.String("remote_endpoint", cfg.Scraper.RemoteEndpoint),
	)

	// Fee schedule is validated here so a bad config fails at boot, not
	// on the first quote.
	schedule, err := pricing.NewSchedule(cfg.Pricing.Tiers)
	if err != nil {
		log.Fatal("Invalid fee schedule", zap.Error(err))
	}
	rates := pricing.NewRateProvider(cfg.Pricing, log)
	engine := pricing.NewEngine(schedule, cfg.Pricing.MinFeeJPY, rates)

	// Two pools: the stealth one carries anti-automation launch flags,
	// so it cannot share an allocator with the plain fetcher.
	genericPool, err := scraper.NewBrowserPool(log, &scraper.BrowserConfig{
		Headless:     cfg.Scraper.Headless,
		UserAgent:    cfg.Scraper.UserAgent,
		PoolSize:     cfg.Scraper.BrowserPool,
		WindowWidth:  1920,
		WindowHeight: 1080,
	})
	if err != nil {
		log.Fatal("Failed to create browser pool", zap.Error(err))
	}
	defer genericPool.Close()

	stealthPool, err := scraper.NewBrowserPool(log, &scraper.BrowserConfig{
		Headless:     cfg.Scraper.Headless,
		UserAgent:    cfg.Scraper.UserAgent,
		PoolSize:     cfg.Scraper.BrowserPool,
		WindowWidth:  1920,
		WindowHeight: 1080,
		Stealth:      true,
	})
	if err != nil {
		log.Fatal("Failed to create stealth browser pool", zap.Error(err))
	}
	defer stealthPool.Close()

	var store cache.Store = cache.Noop{}
	if cfg.Cache.Enabled {
		redisStore, err := cache.NewRedis(cfg.Cache.RedisURL, log)
		if err != nil {
			log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			store = redisStore
			defer redisStore.Close()
		}
	}

	routes := scraper.BuildRoutes(cfg.Scraper, genericPool, stealthPool)
	extractor := scraper.NewExtractor(routes, store, log).
		WithBudget(cfg.Scraper.RequestBudget).
		WithCacheTTL(cfg.Cache.TTL, cfg.Cache.BlockTTL)

	storefront := shopify.NewClient(cfg.Shopify, log)
	daigo := service.New(extractor, engine, storefront, log)

	app := fiber.New(fiber.Config{
		AppName:               "GOYOUTATI DAIGO API v3.0.0",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: !cfg.Server.Debug,
		ErrorHandler:          errorHandler,
	})

	middleware.Setup(app, cfg)
	api.SetupRoutes(app, cfg, &api.Dependencies{Daigo: daigo})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Shutting down gracefully...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Server starting", zap.String("address", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("Server failed to start", zap.Error(err))
	}
}

// errorHandler handles errors globally
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logger.Error("Request error",
		zap.Int("status", code),
		zap.String("path", c.Path()),
		zap.Error(err),
	)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    "request_failed",
	})
}
