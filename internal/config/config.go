package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LiveKit struct {
	URL       string `mapstructure:"url"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type Config struct {
	Mode                   string        `mapstructure:"mode"`
	Host                   string        `mapstructure:"host"`
	Port                   int           `mapstructure:"port"`
	LiveKit                LiveKit       `mapstructure:"livekit"`
	DefaultMaxParticipants int           `mapstructure:"default_max_participants"`
	EmptyTimeout           time.Duration `mapstructure:"empty_timeout"`
	UpdateInterval         time.Duration `mapstructure:"update_interval"`
	TokenTTL               time.Duration `mapstructure:"token_ttl"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("livekit.url", "")
	v.SetDefault("livekit.api_key", "")
	v.SetDefault("livekit.api_secret", "")
	v.SetDefault("default_max_participants", 100)
	v.SetDefault("empty_timeout", "300s")
	v.SetDefault("update_interval", "5s")
	v.SetDefault("token_ttl", "6h")

	// Secrets usually arrive as ROOMCAST_LIVEKIT_API_SECRET etc.
	v.SetEnvPrefix("ROOMCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
