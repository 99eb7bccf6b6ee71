package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Train.URL != DefaultTrainURL {
		t.Errorf("Unexpected train URL: %q", cfg.Train.URL)
	}
	if cfg.Bus.URL != DefaultBusURL {
		t.Errorf("Unexpected bus URL: %q", cfg.Bus.URL)
	}
	if cfg.Train.MaxResults != 8 {
		t.Errorf("Expected default max 8, got %d", cfg.Train.MaxResults)
	}
	if cfg.Bus.Direction != "Southbound" {
		t.Errorf("Expected default direction Southbound, got %q", cfg.Bus.Direction)
	}
	if cfg.Train.PollInterval != 60*time.Second {
		t.Errorf("Expected default poll interval 60s, got %v", cfg.Train.PollInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CTA_API_KEY_TRAIN", "train-key")
	t.Setenv("CTA_MAP_ID", "40380")
	t.Setenv("CTA_POLL_INTERVAL", "30s")
	t.Setenv("CTA_BUS_POLL_INTERVAL", "45s")
	t.Setenv("CTA_MAX", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Train.APIKey != "train-key" || cfg.Train.MapID != "40380" {
		t.Errorf("Unexpected train config: %+v", cfg.Train)
	}
	if cfg.Train.MaxResults != 4 {
		t.Errorf("Expected max 4, got %d", cfg.Train.MaxResults)
	}
	// Shared interval applies unless the feed overrides it.
	if cfg.Train.PollInterval != 30*time.Second {
		t.Errorf("Expected train interval 30s, got %v", cfg.Train.PollInterval)
	}
	if cfg.Bus.PollInterval != 45*time.Second {
		t.Errorf("Expected bus interval 45s, got %v", cfg.Bus.PollInterval)
	}
}

func TestTrainValidate(t *testing.T) {
	cfg := TrainFeedConfig{PollInterval: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing API key")
	}

	cfg.APIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when neither mapid nor stpid is set")
	}

	cfg.MapID = "40380"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cfg.MapID = ""
	cfg.StopID = "30070"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected stpid alone to be valid, got %v", err)
	}
}

func TestBusValidate(t *testing.T) {
	cfg := BusFeedConfig{PollInterval: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing API key")
	}

	cfg.APIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing stop id")
	}

	cfg.StopID = "5530"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}
