package main

import (
    "context"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "freightmarket/internal/config"
    "freightmarket/internal/db"
    "freightmarket/internal/payment"
    "freightmarket/internal/server"
    "freightmarket/internal/store"
)

func main() {
    log := logrus.New()
    log.SetFormatter(&logrus.JSONFormatter{})

    cfg := config.Load()

    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        log.Fatal("DATABASE_URL not set. Please export DATABASE_URL before running.")
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    pool, err := db.NewPool(ctx, cfg.DatabaseURL)
    if err != nil {
        log.WithError(err).Fatal("failed to connect db")
    }
    defer pool.Close()
    // Verify connectivity proactively
    if err := pool.Ping(ctx); err != nil {
        log.WithError(err).Fatal("database ping failed")
    }

    gatewayCfg := payment.Config{
        MobileBaseURL: cfg.Payment.MobileBaseURL,
        MobileAPIKey:  cfg.Payment.MobileAPIKey,
        CardBaseURL:   cfg.Payment.CardBaseURL,
        CardAPIKey:    cfg.Payment.CardAPIKey,
    }

    h := server.New(server.Deps{
        Rates:           store.NewRates(pool),
        Coupons:         store.NewCoupons(pool),
        Locations:       store.NewLocations(pool),
        Shipments:       store.NewShipments(pool),
        Payments:        store.NewPayments(pool),
        Gateway:         func(name string) (payment.Gateway, error) { return payment.NewByName(name, gatewayCfg) },
        DisplayCurrency: cfg.DisplayCurrency,
        WebhookSecrets: map[string]string{
            "mobile": cfg.Webhook.MobileSecret,
            "card":   cfg.Webhook.CardSecret,
        },
        Log: log,
    })

    srv := &http.Server{
        Addr:              ":" + cfg.Port,
        Handler:           h,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    log.WithField("port", cfg.Port).WithField("display_currency", cfg.DisplayCurrency).Info("api listening")
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.WithError(err).Error("server error")
        os.Exit(1)
    }
}
