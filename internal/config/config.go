package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/pricing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv string `yaml:"app_env"`

	APIBaseURL   string        `yaml:"api_base_url"`
	APITimeout   time.Duration `yaml:"api_timeout"`
	APIRateLimit float64       `yaml:"api_rate_limit"`
	APIRateBurst int           `yaml:"api_rate_burst"`

	StoreDriver string `yaml:"store_driver"`
	StoreDSN    string `yaml:"store_dsn"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	StockValidation  string `yaml:"stock_validation"`
	AutoPromo        bool   `yaml:"auto_promo"`
	CatalogCacheSize int    `yaml:"catalog_cache_size"`

	// Used when GET /config/ cannot be reached.
	Fallback StoreRules `yaml:"fallback"`
}

type StoreRules struct {
	TaxRate               string `yaml:"tax_rate"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
	StandardShippingFee   string `yaml:"standard_shipping_fee"`
}

// Rules parses the fallback figures.
func (r StoreRules) Rules() (pricing.Rules, error) {
	tax, err := decimal.NewFromString(r.TaxRate)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("invalid fallback tax_rate: %w", err)
	}
	threshold, err := decimal.NewFromString(r.FreeShippingThreshold)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("invalid fallback free_shipping_threshold: %w", err)
	}
	fee, err := decimal.NewFromString(r.StandardShippingFee)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("invalid fallback standard_shipping_fee: %w", err)
	}
	return pricing.Rules{TaxRate: tax, FreeShippingThreshold: threshold, StandardShippingFee: fee}, nil
}

func defaults() *Config {
	return &Config{
		AppEnv:           "development",
		APIBaseURL:       "http://localhost:8000/api",
		APITimeout:       15 * time.Second,
		APIRateLimit:     5,
		APIRateBurst:     10,
		StoreDriver:      "sqlite",
		StoreDSN:         "storefront.db",
		KafkaTopic:       "storefront-events",
		StockValidation:  "always",
		AutoPromo:        true,
		CatalogCacheSize: 256,
		Fallback: StoreRules{
			TaxRate:               "0.1",
			FreeShippingThreshold: "50",
			StandardShippingFee:   "5.99",
		},
	}
}

// LoadConfig reads .env (when present), the optional YAML file named by
// STOREFRONT_CONFIG_FILE, then the environment. Environment values win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("STOREFRONT_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	switch cfg.StockValidation {
	case "always", "legacy-only", "never":
	default:
		return nil, fmt.Errorf("invalid STOCK_VALIDATION %q", cfg.StockValidation)
	}

	if _, err := cfg.Fallback.Rules(); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case "memory", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.APIBaseURL, "API_BASE_URL")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.StoreDSN, "STORE_DSN")
	setString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setString(&cfg.StockValidation, "STOCK_VALIDATION")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid API_TIMEOUT: %w", err)
		}
		cfg.APITimeout = d
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
		}
		cfg.APIRateLimit = f
	}
	if v := os.Getenv("API_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_BURST: %w", err)
		}
		cfg.APIRateBurst = n
	}
	if v := os.Getenv("CATALOG_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_CACHE_SIZE: %w", err)
		}
		cfg.CatalogCacheSize = n
	}
	if v := os.Getenv("AUTO_PROMO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_PROMO: %w", err)
		}
		cfg.AutoPromo = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
