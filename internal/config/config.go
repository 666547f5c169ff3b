// Load envs from .env
// Load YAML config
// Apply env overrides and defaults

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	//storage
	StorageType string `yaml:"storage_type"` //local | supabase
	DataDir     string `yaml:"data_dir"`
	FileFormat  string `yaml:"file_format"` //csv | xlsx
	DatabaseURL string `yaml:"database_url"`

	//scraping
	ScrapeDelayMs int  `yaml:"scrape_delay_ms"`
	NavTimeoutMs  int  `yaml:"nav_timeout_ms"`
	Headless      bool `yaml:"headless"`

	//optional run-summary reporting
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// Load reads DefaultPath (or $CONFIG_PATH) on top of defaults and env vars.
func Load() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFrom(path)
}

func LoadFrom(path string) *Config {
	_ = godotenv.Load()

	//defaults; yaml only overrides keys that are present
	cfg := &Config{
		StorageType:   "local",
		DataDir:       "./data",
		FileFormat:    "xlsx",
		ScrapeDelayMs: 1500,
		NavTimeoutMs:  60000,
		Headless:      true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Could not read %s: %v (using defaults)", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("❌ Error parsing %s: %v", path, err)
		}
	}

	//override with env vars
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.StorageType = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FILE_FORMAT"); v != "" {
		cfg.FileFormat = v
	}
	if v := os.Getenv("SUPABASE_DB_URL"); v != "" {
		cfg.DatabaseURL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SCRAPE_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("❌ Invalid SCRAPE_DELAY_MS: %v", err)
		}
		cfg.ScrapeDelayMs = ms
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		cfg.Headless = v != "false" && v != "0"
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Fatalf("❌ Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.StorageType != "local" && cfg.StorageType != "supabase" {
		log.Fatalf("❌ Unknown storage_type: %s", cfg.StorageType)
	}
	if cfg.FileFormat != "csv" && cfg.FileFormat != "xlsx" {
		log.Fatalf("❌ Unknown file_format: %s", cfg.FileFormat)
	}

	return cfg
}

// ScrapeDelay is the politeness delay between detail-page requests.
func (c *Config) ScrapeDelay() time.Duration {
	return time.Duration(c.ScrapeDelayMs) * time.Millisecond
}

// NavTimeout is the ceiling for a single page navigation.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}
