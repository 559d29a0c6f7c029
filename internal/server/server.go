package server

import (
    "context"
    "encoding/json"
    "net/http"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "freightmarket/internal/batch"
    "freightmarket/internal/payment"
    "freightmarket/internal/pricing"
    "freightmarket/internal/rate"
    "freightmarket/internal/store"
)

// RateStore is the rate CRUD surface the handlers need.
type RateStore interface {
    rate.Store
    Get(ctx context.Context, id uuid.UUID) (rate.Rate, error)
    Create(ctx context.Context, r rate.Rate) (rate.Rate, error)
    Update(ctx context.Context, id uuid.UUID, p store.RatePatch) (rate.Rate, error)
    Delete(ctx context.Context, id uuid.UUID) error
}

// CouponStore validates and redeems coupon codes.
type CouponStore interface {
    Validate(ctx context.Context, code string) (pricing.Coupon, error)
    IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// ShipmentStore persists resolved batch submissions.
type ShipmentStore interface {
    Create(ctx context.Context, sub batch.Submission) error
}

// PaymentStore records payment attempts and status transitions.
type PaymentStore interface {
    Create(ctx context.Context, p store.Payment) (store.Payment, error)
    GetByReference(ctx context.Context, reference string) (store.Payment, error)
    UpdateStatusByReference(ctx context.Context, reference, status string) error
}

// GatewayFactory resolves a payment provider by name.
type GatewayFactory func(name string) (payment.Gateway, error)

// Deps wires the handlers to their collaborators.
type Deps struct {
    Rates           RateStore
    Coupons         CouponStore
    Locations       rate.LocationDirectory
    Shipments       ShipmentStore
    Payments        PaymentStore
    Gateway         GatewayFactory
    DisplayCurrency string
    WebhookSecrets  map[string]string
    Log             *logrus.Logger
}

type Server struct {
    rates           RateStore
    coupons         CouponStore
    locations       rate.LocationDirectory
    shipments       ShipmentStore
    payments        PaymentStore
    gateway         GatewayFactory
    catalog         *rate.Catalog
    displayCurrency string
    webhookSecrets  map[string]string
    log             *logrus.Logger
}

func New(d Deps) http.Handler {
    if d.Log == nil {
        d.Log = logrus.New()
    }
    if d.DisplayCurrency == "" {
        d.DisplayCurrency = "XOF"
    }
    s := &Server{
        rates:           d.Rates,
        coupons:         d.Coupons,
        locations:       d.Locations,
        shipments:       d.Shipments,
        payments:        d.Payments,
        gateway:         d.Gateway,
        displayCurrency: d.DisplayCurrency,
        webhookSecrets:  d.WebhookSecrets,
        log:             d.Log,
    }
    if d.Rates != nil && d.Locations != nil {
        s.catalog = rate.NewCatalog(d.Rates, d.Locations)
    }

    r := chi.NewRouter()
    // Observability: Request ID and basic logger
    r.Use(requestIDMiddleware)
    r.Use(middleware.Logger)
    r.Get("/healthz", s.handleHealth)
    r.Get("/locations", s.handleListLocations)
    r.Get("/rates", s.handleListRates)
    r.Post("/rates", s.handleCreateRate)
    r.Put("/rates/{id}", s.handleUpdateRate)
    r.Delete("/rates/{id}", s.handleDeleteRate)
    r.Get("/rates/match", s.handleMatchRate)
    r.Post("/quotes", s.handleCreateQuote)
    r.Post("/shipments/batch", s.handleBatchShipments)
    r.Post("/payments", s.handleInitPayment)
    r.Get("/payments/{reference}", s.handleGetPayment)
    r.Post("/webhooks/{provider}", s.handleWebhook)
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
    locs, err := s.locations.List(r.Context())
    if err != nil {
        s.log.WithError(err).Error("list locations")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }
    writeJSON(w, map[string]any{"locations": locs})
}

func writeJSON(w http.ResponseWriter, v any) {
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is
// generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil, nil
    }
    id, err := uuid.Parse(s)
    if err != nil {
        return nil, err
    }
    return &id, nil
}
