package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Shopify   ShopifyConfig   `yaml:"shopify"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	APIKey       string        `yaml:"api_key"`
	Debug        bool          `yaml:"debug"`
}

type ShopifyConfig struct {
	Store        string `yaml:"store"`
	AccessToken  string `yaml:"access_token"`
	APIVersion   string `yaml:"api_version"`
	CollectionID string `yaml:"collection_id"`
	StoreDomain  string `yaml:"store_domain"`
}

// BaseURL returns the Admin API root for the configured store
func (s ShopifyConfig) BaseURL() string {
	return "https://" + s.Store + "/admin/api/" + s.APIVersion
}

// Tier is one markup band of the fee schedule. MaxJPY == 0 on the last
// tier means unbounded.
type Tier struct {
	MinJPY int     `yaml:"min_jpy" json:"min_jpy"`
	MaxJPY int     `yaml:"max_jpy" json:"max_jpy"`
	Markup float64 `yaml:"markup" json:"markup"`
}

type PricingConfig struct {
	Tiers          []Tier        `yaml:"tiers"`
	MinFeeJPY      int           `yaml:"min_fee_jpy"`
	FixedTWDRate   float64       `yaml:"fixed_twd_rate"`
	DefaultTWDRate float64       `yaml:"default_twd_rate"`
	RateTTL        time.Duration `yaml:"rate_ttl"`
	RateEndpoint   string        `yaml:"rate_endpoint"`
}

type ScraperConfig struct {
	UserAgent      string        `yaml:"user_agent"`
	DirectTimeout  time.Duration `yaml:"direct_timeout"`
	BrowserTimeout time.Duration `yaml:"browser_timeout"`
	RequestBudget  time.Duration `yaml:"request_budget"`
	BrowserPool    int           `yaml:"browser_pool"`
	RemoteEndpoint string        `yaml:"remote_endpoint"`
	Headless       bool          `yaml:"headless"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
	BlockTTL time.Duration `yaml:"block_ttl"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	MaxAge         int      `yaml:"max_age"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := defaultConfig()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			APIKey:       "change-me-in-production",
			Debug:        false,
		},
		Shopify: ShopifyConfig{
			Store:       "your-store.myshopify.com",
			APIVersion:  "2024-10",
			StoreDomain: "goyoutati.com",
		},
		Pricing: PricingConfig{
			Tiers: []Tier{
				{MinJPY: 0, MaxJPY: 3001, Markup: 1.40},
				{MinJPY: 3001, MaxJPY: 8001, Markup: 1.35},
				{MinJPY: 8001, MaxJPY: 20001, Markup: 1.30},
				{MinJPY: 20001, MaxJPY: 50001, Markup: 1.25},
				{MinJPY: 50001, MaxJPY: 0, Markup: 1.20},
			},
			MinFeeJPY:      300,
			DefaultTWDRate: 0.21,
			RateTTL:        time.Hour,
			RateEndpoint:   "https://api.exchangerate-api.com/v4/latest/JPY",
		},
		Scraper: ScraperConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			DirectTimeout:  5 * time.Second,
			BrowserTimeout: 20 * time.Second,
			RequestBudget:  60 * time.Second,
			BrowserPool:    2,
			Headless:       true,
		},
		Cache: CacheConfig{
			Enabled:  false,
			RedisURL: "redis://localhost:6379/0",
			TTL:      10 * time.Minute,
			BlockTTL: 8 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"https://your-store.myshopify.com"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			MaxAge:         600,
		},
	}
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("API_SECRET_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("DEBUG"); v == "true" {
		c.Server.Debug = true
	}

	// Shopify
	if v := os.Getenv("SHOPIFY_STORE"); v != "" {
		c.Shopify.Store = v
	}
	if v := os.Getenv("SHOPIFY_ACCESS_TOKEN"); v != "" {
		c.Shopify.AccessToken = v
	}
	if v := os.Getenv("SHOPIFY_API_VERSION"); v != "" {
		c.Shopify.APIVersion = v
	}
	if v := os.Getenv("DAIGO_COLLECTION_ID"); v != "" {
		c.Shopify.CollectionID = v
	}
	if v := os.Getenv("STORE_DOMAIN"); v != "" {
		c.Shopify.StoreDomain = v
	}

	// Pricing
	if v := os.Getenv("MIN_SERVICE_FEE_JPY"); v != "" {
		if fee, err := strconv.Atoi(v); err == nil {
			c.Pricing.MinFeeJPY = fee
		}
	}
	if v := os.Getenv("FIXED_JPY_TO_TWD_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pricing.FixedTWDRate = rate
		}
	}
	if v := os.Getenv("DEFAULT_JPY_TO_TWD_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pricing.DefaultTWDRate = rate
		}
	}

	// Scraper
	if v := os.Getenv("SCRAPE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Scraper.RequestBudget = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("ZOZO_SCRAPER_URL"); v != "" {
		c.Scraper.RemoteEndpoint = v
	}
	if v := os.Getenv("BROWSER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scraper.BrowserPool = n
		}
	}

	// Cache
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Enabled = true
	}

	// CORS
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = strings.Split(v, ",")
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Pricing.MinFeeJPY < 0 {
		return fmt.Errorf("config: min_fee_jpy must not be negative")
	}
	if len(c.Pricing.Tiers) == 0 {
		return fmt.Errorf("config: pricing tiers must not be empty")
	}
	if c.Scraper.BrowserPool <= 0 {
		return fmt.Errorf("config: browser_pool must be positive")
	}
	// Tier shape (sorted, gapless, unbounded tail) is checked by the
	// pricing package when the schedule is built.
	return nil
}
