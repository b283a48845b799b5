package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	setEnvWithCleanup(t, "DATABASE_URL", "postgres://localhost:5432/onboarding")
	setEnvWithCleanup(t, "META_APP_ID", "app-id")
	setEnvWithCleanup(t, "META_APP_SECRET", "app-secret")
	setEnvWithCleanup(t, "WEBHOOK_VERIFY_TOKEN", "verify-token")
	setEnvWithCleanup(t, "WHATSAPP_PIN", "123456")
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setRequiredEnv(t)
	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "GRAPH_API_BASE_URL")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default server port 8080, got %q", cfg.ServerPort)
	}
	if cfg.GraphAPIBaseURL != "https://graph.facebook.com/v21.0" {
		t.Fatalf("unexpected default graph base URL %q", cfg.GraphAPIBaseURL)
	}
}

func TestLoadConfig_FailsWithoutPin(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setRequiredEnv(t)
	unsetEnvWithCleanup(t, "WHATSAPP_PIN")

	_, err := LoadConfig(t.TempDir())
	if err == nil {
		t.Fatal("expected LoadConfig to fail when WHATSAPP_PIN is unset")
	}
	if !strings.Contains(err.Error(), "WHATSAPP_PIN") {
		t.Fatalf("expected error to name the missing key, got %v", err)
	}
}

func TestLoadConfig_FailsWithoutVerifyToken(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setRequiredEnv(t)
	unsetEnvWithCleanup(t, "WEBHOOK_VERIFY_TOKEN")

	_, err := LoadConfig(t.TempDir())
	if err == nil {
		t.Fatal("expected LoadConfig to fail when WEBHOOK_VERIFY_TOKEN is unset")
	}
}

func TestLoadConfig_OptionalBrokerURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setRequiredEnv(t)
	unsetEnvWithCleanup(t, "RABBITMQ_URL")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RabbitMQURL != "" {
		t.Fatalf("expected empty RabbitMQURL, got %q", cfg.RabbitMQURL)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		}
	})
}
