package main

import (
	"fmt"
	"strings"

	"selapp/internal/repository"
	"selapp/internal/scheduler"
	"selapp/pkg/webpush"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Auth      AuthConfig       `yaml:"auth"`
	Push      webpush.Config   `yaml:"push"`
	Scheduler scheduler.Config `yaml:"scheduler"`

	CronSecret             string `yaml:"cronSecret"`
	DevotionalWebhookToken string `yaml:"devotionalWebhookToken"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// Empty means allow any origin (local development).
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	TokenTTL  string `yaml:"tokenTTL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
