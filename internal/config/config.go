package config

import (
    "strings"

    "github.com/spf13/viper"
)

type Config struct {
    DatabaseURL     string
    Port            string
    DisplayCurrency string

    Payment PaymentConfig
    Webhook WebhookConfig
}

// PaymentConfig carries aggregator endpoints and credentials.
type PaymentConfig struct {
    MobileBaseURL string
    MobileAPIKey  string
    CardBaseURL   string
    CardAPIKey    string
}

// WebhookConfig carries per-provider callback signing secrets.
type WebhookConfig struct {
    MobileSecret string
    CardSecret   string
}

// Load reads config.yaml from the working directory when present, with
// environment variables taking precedence (PORT, DATABASE_URL, ...).
func Load() Config {
    v := viper.New()
    v.SetConfigName("config")
    v.SetConfigType("yaml")
    v.AddConfigPath(".")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    v.SetDefault("port", "8080")
    v.SetDefault("display.currency", "XOF")

    // Missing config file is fine; env alone is a valid setup.
    _ = v.ReadInConfig()

    return Config{
        DatabaseURL:     v.GetString("database_url"),
        Port:            v.GetString("port"),
        DisplayCurrency: v.GetString("display.currency"),
        Payment: PaymentConfig{
            MobileBaseURL: v.GetString("payment.mobile.base_url"),
            MobileAPIKey:  v.GetString("payment.mobile.api_key"),
            CardBaseURL:   v.GetString("payment.card.base_url"),
            CardAPIKey:    v.GetString("payment.card.api_key"),
        },
        Webhook: WebhookConfig{
            MobileSecret: v.GetString("webhook.mobile.secret"),
            CardSecret:   v.GetString("webhook.card.secret"),
        },
    }
}
