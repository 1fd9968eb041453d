// Package config provides configuration management for Reachwell services.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the audience and campaign
// services.
type Config struct {
	DatabaseURL string

	// Campaign dispatch tuning.
	BatchSize    int
	TickInterval time.Duration
	SuccessRate  float64

	// Audience preview row cap.
	PreviewLimit int
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DatabaseURL:  "sqlite://reachwell.db",
		BatchSize:    100,
		TickInterval: time.Second,
		SuccessRate:  0.9,
		PreviewLimit: 100,
	}
}

// Validate checks ranges: positive batch size and interval, success rate
// within [0, 1], positive preview limit.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database.url must be set")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("campaign.batch_size must be positive, got %d", c.BatchSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("campaign.tick_interval must be positive, got %v", c.TickInterval)
	}
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("campaign.success_rate must be within [0, 1], got %v", c.SuccessRate)
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("audience.preview_limit must be positive, got %d", c.PreviewLimit)
	}
	return nil
}
