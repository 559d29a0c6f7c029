package server

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "freightmarket/internal/currency"
    "freightmarket/internal/payment"
    "freightmarket/internal/store"
)

type paymentRequest struct {
    Amount    float64           `json:"amount"`
    Currency  string            `json:"currency"`
    Provider  string            `json:"provider"`
    Reference string            `json:"reference"`
    Metadata  map[string]string `json:"metadata"`
}

type paymentResponse struct {
    Reference     string `json:"reference"`
    TransactionID string `json:"transaction_id"`
    RedirectURL   string `json:"redirect_url,omitempty"`
    Status        string `json:"status"`
}

func (s *Server) handleInitPayment(w http.ResponseWriter, r *http.Request) {
    var req paymentRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if req.Amount <= 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_amount", "amount must be positive")
        return
    }
    if !currency.Supported(req.Currency) {
        writeErrorJSON(w, http.StatusBadRequest, "unsupported_currency", "unsupported currency "+req.Currency)
        return
    }
    gw, err := s.gateway(req.Provider)
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "unknown_provider", "unknown payment provider")
        return
    }
    reference := strings.TrimSpace(req.Reference)
    if reference == "" {
        reference = uuid.NewString()
    }

    res, err := gw.Initialize(r.Context(), payment.InitRequest{
        Amount:    req.Amount,
        Currency:  req.Currency,
        Reference: reference,
        Metadata:  req.Metadata,
    })
    if err != nil {
        s.log.WithError(err).WithField("provider", req.Provider).Error("initialize payment")
        writeErrorJSON(w, http.StatusBadGateway, "provider_error", "payment provider error")
        return
    }

    status := string(payment.StatusPending)
    if res.Settled {
        status = string(payment.StatusCompleted)
    }
    if _, err := s.payments.Create(r.Context(), store.Payment{
        Reference:     reference,
        Provider:      strings.ToLower(strings.TrimSpace(req.Provider)),
        TransactionID: res.TransactionID,
        Amount:        req.Amount,
        Currency:      req.Currency,
        Status:        status,
    }); err != nil {
        s.log.WithError(err).Error("record payment")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to record payment")
        return
    }

    writeJSON(w, paymentResponse{
        Reference:     reference,
        TransactionID: res.TransactionID,
        RedirectURL:   res.RedirectURL,
        Status:        status,
    })
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
    reference := strings.TrimSpace(chi.URLParam(r, "reference"))
    if reference == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "reference required")
        return
    }
    p, err := s.payments.GetByReference(r.Context(), reference)
    if err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "payment not found")
            return
        }
        s.log.WithError(err).Error("get payment")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }
    writeJSON(w, p)
}

// handleWebhook ingests provider payment callbacks. The raw body is
// HMAC-verified against the provider's configured secret before the payload
// is normalized and applied to the payment row.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
    provider := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "provider")))
    if provider == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "provider required")
        return
    }
    secret, ok := s.webhookSecrets[provider]
    if !ok {
        writeErrorJSON(w, http.StatusNotFound, "unsupported_provider", "unsupported provider")
        return
    }
    if strings.TrimSpace(secret) == "" {
        writeErrorJSON(w, http.StatusUnauthorized, "secret_not_configured", "webhook secret not configured")
        return
    }

    // Read raw body for signature verification
    body, err := io.ReadAll(r.Body)
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "read_error", "read error")
        return
    }
    sigHeader := r.Header.Get("X-Signature")
    sigHeader = strings.TrimSpace(sigHeader)
    sigHeader = strings.TrimPrefix(sigHeader, "sha256=")
    if sigHeader == "" {
        writeErrorJSON(w, http.StatusUnauthorized, "missing_signature", "missing signature")
        return
    }
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(body)
    expected := hex.EncodeToString(mac.Sum(nil))
    provided, err := hex.DecodeString(sigHeader)
    if err != nil {
        writeErrorJSON(w, http.StatusUnauthorized, "invalid_signature_format", "invalid signature format")
        return
    }
    if !hmac.Equal([]byte(expected), []byte(hex.EncodeToString(provided))) {
        writeErrorJSON(w, http.StatusUnauthorized, "signature_mismatch", "signature mismatch")
        return
    }

    event, err := normalizePaymentEvent(body)
    if err != nil {
        if errors.Is(err, ErrMissingReference) {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "reference required")
        } else {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        }
        return
    }

    status := payment.ParseStatus(event.Status)
    if err := s.payments.UpdateStatusByReference(r.Context(), event.Reference, string(status)); err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "payment not found")
            return
        }
        s.log.WithError(err).Error("apply webhook")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }

    writeJSON(w, map[string]string{"reference": event.Reference, "status": string(status)})
}
