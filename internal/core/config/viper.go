package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with CLI flags > environment > config file >
// defaults precedence. Environment variables use the RW_ prefix with
// underscores for dots (RW_CAMPAIGN_BATCH_SIZE).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults matching Default()
	v.SetDefault("database.url", "sqlite://reachwell.db")
	v.SetDefault("campaign.batch_size", 100)
	v.SetDefault("campaign.tick_interval", "1s")
	v.SetDefault("campaign.success_rate", 0.9)
	v.SetDefault("audience.preview_limit", 100)

	v.SetEnvPrefix("RW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:  v.GetString("database.url"),
		BatchSize:    v.GetInt("campaign.batch_size"),
		TickInterval: v.GetDuration("campaign.tick_interval"),
		SuccessRate:  v.GetFloat64("campaign.success_rate"),
		PreviewLimit: v.GetInt("audience.preview_limit"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
