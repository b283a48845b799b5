/**
 * @description
 * This file handles the configuration management for the onboarding-service.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @notes
 * - The Meta app credentials, the webhook verify token, and the registration
 *   PIN are secrets with no safe default; LoadConfig fails when any of them is
 *   missing so the service cannot start with a silent fallback.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	GraphAPIBaseURL    string `mapstructure:"GRAPH_API_BASE_URL"`
	MetaAppID          string `mapstructure:"META_APP_ID"`
	MetaAppSecret      string `mapstructure:"META_APP_SECRET"`
	WebhookVerifyToken string `mapstructure:"WEBHOOK_VERIFY_TOKEN"`
	WhatsAppPin        string `mapstructure:"WHATSAPP_PIN"`
	WebhookAppSecret   string `mapstructure:"WEBHOOK_APP_SECRET"`
}

// requiredKeys are settings the service refuses to start without.
var requiredKeys = []string{
	"DATABASE_URL",
	"META_APP_ID",
	"META_APP_SECRET",
	"WEBHOOK_VERIFY_TOKEN",
	"WHATSAPP_PIN",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values for non-secret settings only.
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0")

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("GRAPH_API_BASE_URL")
	_ = viper.BindEnv("META_APP_ID")
	_ = viper.BindEnv("META_APP_SECRET")
	_ = viper.BindEnv("WEBHOOK_VERIFY_TOKEN")
	_ = viper.BindEnv("WHATSAPP_PIN")
	_ = viper.BindEnv("WEBHOOK_APP_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	for _, key := range requiredKeys {
		if viper.GetString(key) == "" {
			return nil, fmt.Errorf("required configuration %s is not set", key)
		}
	}

	return &config, nil
}
