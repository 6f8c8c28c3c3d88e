package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stocksync/internal/syncerr"
)

type SellerAccount struct {
	ClientID string `yaml:"client_id"`
	APIKey   string `yaml:"api_key"`
}

type MarketCampaign struct {
	Name        string `yaml:"name"`
	CampaignID  string `yaml:"campaign_id"`
	WarehouseID int64  `yaml:"warehouse_id"`
}

type Config struct {
	FeedURL     string
	HTTPTimeout time.Duration

	SellerBaseURL  string
	SellerAccounts []SellerAccount

	MarketBaseURL   string
	MarketToken     string
	MarketCampaigns []MarketCampaign

	LogLevel       string
	LogFormat      string
	LogOutput      string
	LogMaxAge      int
	MetricsPort    string
	PushgatewayURL string
	DatabaseURL    string
	RedisURL       string
}

// accountsFile is the layout of ACCOUNTS_FILE.
type accountsFile struct {
	Seller []SellerAccount `yaml:"seller"`
	Market struct {
		Token     string           `yaml:"token"`
		Campaigns []MarketCampaign `yaml:"campaigns"`
	} `yaml:"market"`
}

func Load() (*Config, error) {
	// project root .env first, then the working directory one
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{
		FeedURL:        os.Getenv("FEED_URL"),
		HTTPTimeout:    time.Duration(atoiEnv("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		SellerBaseURL:  os.Getenv("SELLER_BASE_URL"),
		MarketBaseURL:  os.Getenv("MARKET_BASE_URL"),
		MarketToken:    os.Getenv("MARKET_TOKEN"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		LogOutput:      getEnv("LOG_OUTPUT", "stdout"),
		LogMaxAge:      atoiEnv("LOG_MAX_AGE_DAYS", 0),
		MetricsPort:    os.Getenv("METRICS_PORT"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
	}

	if clientID := os.Getenv("CLIENT_ID"); clientID != "" || os.Getenv("SELLER_TOKEN") != "" {
		cfg.SellerAccounts = []SellerAccount{{ClientID: clientID, APIKey: os.Getenv("SELLER_TOKEN")}}
	}

	for _, c := range []struct{ name, idKey, whKey string }{
		{"fbs", "FBS_ID", "WAREHOUSE_FBS_ID"},
		{"dbs", "DBS_ID", "WAREHOUSE_DBS_ID"},
	} {
		id := os.Getenv(c.idKey)
		if id == "" {
			continue
		}
		wh, err := strconv.ParseInt(os.Getenv(c.whKey), 10, 64)
		if err != nil {
			return nil, &syncerr.ConfigError{Key: c.whKey, Err: fmt.Errorf("warehouse id must be an integer: %w", err)}
		}
		cfg.MarketCampaigns = append(cfg.MarketCampaigns, MarketCampaign{Name: c.name, CampaignID: id, WarehouseID: wh})
	}

	if path := os.Getenv("ACCOUNTS_FILE"); path != "" {
		if err := cfg.loadAccounts(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadAccounts replaces the env-derived accounts of every marketplace the
// file mentions.
func (c *Config) loadAccounts(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &syncerr.ConfigError{Key: "ACCOUNTS_FILE", Err: err}
	}
	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return &syncerr.ConfigError{Key: "ACCOUNTS_FILE", Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	if len(f.Seller) > 0 {
		c.SellerAccounts = f.Seller
	}
	if f.Market.Token != "" {
		c.MarketToken = f.Market.Token
	}
	if len(f.Market.Campaigns) > 0 {
		c.MarketCampaigns = f.Market.Campaigns
	}
	return nil
}

func (c *Config) ValidateSeller() error {
	if len(c.SellerAccounts) == 0 {
		return &syncerr.ConfigError{Key: "CLIENT_ID", Err: errors.New("no seller accounts configured")}
	}
	for i, a := range c.SellerAccounts {
		if a.ClientID == "" {
			return &syncerr.ConfigError{Key: "CLIENT_ID", Err: fmt.Errorf("seller account %d has no client id", i)}
		}
		if a.APIKey == "" {
			return &syncerr.ConfigError{Key: "SELLER_TOKEN", Err: fmt.Errorf("seller account %s has no api key", a.ClientID)}
		}
	}
	return nil
}

func (c *Config) ValidateMarket() error {
	if c.MarketToken == "" {
		return &syncerr.ConfigError{Key: "MARKET_TOKEN", Err: errors.New("not set")}
	}
	if len(c.MarketCampaigns) == 0 {
		return &syncerr.ConfigError{Key: "FBS_ID", Err: errors.New("no market campaigns configured")}
	}
	for _, mc := range c.MarketCampaigns {
		if mc.CampaignID == "" {
			return &syncerr.ConfigError{Key: "campaign_id", Err: fmt.Errorf("campaign %q has no id", mc.Name)}
		}
		if mc.WarehouseID <= 0 {
			return &syncerr.ConfigError{Key: "warehouse_id", Err: fmt.Errorf("campaign %s has no warehouse", mc.CampaignID)}
		}
	}
	return nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func atoiEnv(k string, d int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return d
	}
	return n
}
