package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultTrainURL = "http://lapi.transitchicago.com/api/1.0/ttarrivals.aspx"
	DefaultBusURL   = "https://www.ctabustracker.com/bustime/api/v3/getpredictions"
)

type Config struct {
	Train   TrainFeedConfig
	Bus     BusFeedConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// TrainFeedConfig for the Train Tracker arrivals feed
type TrainFeedConfig struct {
	URL          string
	APIKey       string
	MapID        string // station identifier, e.g. 40380 (Clark/Lake)
	StopID       string // optional platform/direction identifier
	MaxResults   int
	PollInterval time.Duration
}

// BusFeedConfig for the Bus Tracker predictions feed
type BusFeedConfig struct {
	URL          string
	APIKey       string
	StopID       string // bus stop id (stpid)
	Direction    string // only predictions heading this way are kept
	MaxResults   int    // 0 means no cap
	PollInterval time.Duration
}

type ServerConfig struct {
	ListenAddr  string
	HTTPTimeout time.Duration
}

type LoggingConfig struct {
	Level      string
	FilePath   string
	DiscordURL string
}

func Load() (*Config, error) {
	pollInterval := getDurationEnv("CTA_POLL_INTERVAL", 60*time.Second)

	cfg := &Config{
		Train: TrainFeedConfig{
			URL:          getEnv("CTA_TRAIN_URL", DefaultTrainURL),
			APIKey:       getEnv("CTA_API_KEY_TRAIN", ""),
			MapID:        getEnv("CTA_MAP_ID", ""),
			StopID:       getEnv("CTA_STP_ID", ""),
			MaxResults:   getIntEnv("CTA_MAX", 8),
			PollInterval: getDurationEnv("CTA_TRAIN_POLL_INTERVAL", pollInterval),
		},
		Bus: BusFeedConfig{
			URL:          getEnv("CTA_BUS_URL", DefaultBusURL),
			APIKey:       getEnv("CTA_API_KEY_BUS", ""),
			StopID:       getEnv("CTA_BUS_STP_ID", ""),
			Direction:    getEnv("CTA_BUS_DIRECTION", "Southbound"),
			MaxResults:   getIntEnv("CTA_BUS_MAX", 0),
			PollInterval: getDurationEnv("CTA_BUS_POLL_INTERVAL", pollInterval),
		},
		Server: ServerConfig{
			ListenAddr:  getEnv("LISTEN_ADDR", ":8000"),
			HTTPTimeout: getDurationEnv("CTA_HTTP_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE", "cta-tracker.log"),
			DiscordURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Validate reports configuration the train feed can never succeed with.
func (c *TrainFeedConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CTA_API_KEY_TRAIN is required")
	}
	if c.MapID == "" && c.StopID == "" {
		return fmt.Errorf("set CTA_MAP_ID or CTA_STP_ID")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("train poll interval must be positive")
	}
	return nil
}

// Validate reports configuration the bus feed can never succeed with.
func (c *BusFeedConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CTA_API_KEY_BUS is required")
	}
	if c.StopID == "" {
		return fmt.Errorf("CTA_BUS_STP_ID (bus stop ID, stpid) is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("bus poll interval must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
