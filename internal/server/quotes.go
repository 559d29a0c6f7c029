package server

import (
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"

    "freightmarket/internal/batch"
    "freightmarket/internal/currency"
    "freightmarket/internal/pricing"
    "freightmarket/internal/rate"
)

type quoteRequest struct {
    Amount     float64 `json:"amount"`
    Currency   string  `json:"currency"`
    CouponCode string  `json:"coupon_code"`
}

type quoteResponse struct {
    Quote          pricing.Quote `json:"quote"`
    FormattedTotal string        `json:"formatted_total"`
    CouponError    string        `json:"coupon_error,omitempty"`
}

// handleCreateQuote runs the fixed pricing pipeline. A bad coupon never
// blocks checkout: the quote is computed without the discount and the
// coupon failure is reported alongside it.
func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
    var req quoteRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if !currency.Supported(req.Currency) {
        writeErrorJSON(w, http.StatusBadRequest, "unsupported_currency", "unsupported currency "+req.Currency)
        return
    }

    var coupon *pricing.Coupon
    couponErr := ""
    if code := strings.TrimSpace(req.CouponCode); code != "" {
        c, err := s.coupons.Validate(r.Context(), code)
        switch {
        case err == nil:
            coupon = &c
        case errors.Is(err, pricing.ErrCouponInvalid):
            couponErr = "coupon_invalid"
        default:
            s.log.WithError(err).Error("validate coupon")
            writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
            return
        }
    }

    q, err := pricing.ComputeQuote(req.Amount, req.Currency, coupon)
    if err != nil {
        switch {
        case errors.Is(err, pricing.ErrInvalidAmount):
            writeErrorJSON(w, http.StatusBadRequest, "invalid_amount", "amount must be non-negative")
            return
        case errors.Is(err, pricing.ErrCouponIneligible):
            couponErr = "coupon_ineligible"
            coupon = nil
        default:
            s.log.WithError(err).Error("compute quote")
            writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error")
            return
        }
    }

    if coupon != nil {
        if err := s.coupons.IncrementUsage(r.Context(), coupon.ID); err != nil {
            // The quote stands; losing one usage tick is acceptable.
            s.log.WithError(err).Warn("increment coupon usage")
        }
    }

    writeJSON(w, quoteResponse{
        Quote:          q,
        FormattedTotal: currency.Format(q.Total, q.Currency),
        CouponError:    couponErr,
    })
}

type batchRequest struct {
    RateIDs       []string `json:"rate_ids"`
    DepartureDate string   `json:"departure_date"`
    CargoTypes    []string `json:"cargo_types"`
    PackageCount  int      `json:"package_count"`
    Currency      string   `json:"currency"`
}

type batchFailure struct {
    RateID string `json:"rate_id"`
    Error  string `json:"error"`
}

type batchResponse struct {
    Created  []batch.Submission `json:"created"`
    Failures []batchFailure     `json:"failures,omitempty"`
}

// handleBatchShipments is the multi-select flow: one shipment per selected
// rate, each with its own converted price and transit dates. Persistence is
// fire-all await-all; a failed lane is reported, not rolled back.
func (s *Server) handleBatchShipments(w http.ResponseWriter, r *http.Request) {
    var req batchRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if len(req.RateIDs) < 2 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "batch requires at least 2 rates; use the single-quote flow")
        return
    }
    dep, err := parseDate(req.DepartureDate)
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid departure_date")
        return
    }
    displayCurrency := req.Currency
    if displayCurrency == "" {
        displayCurrency = s.displayCurrency
    }
    if !currency.Supported(displayCurrency) {
        writeErrorJSON(w, http.StatusBadRequest, "unsupported_currency", "unsupported currency "+displayCurrency)
        return
    }

    ctx := r.Context()
    var failures []batchFailure
    var selected []rate.Rate
    for _, raw := range req.RateIDs {
        id, err := uuid.Parse(raw)
        if err != nil {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid rate id "+raw)
            return
        }
        // A rate deleted mid-flow skips that lane, not the whole batch.
        rt, err := s.rates.Get(ctx, id)
        if err != nil {
            s.log.WithError(err).WithField("rate_id", id).Warn("batch rate lookup")
            failures = append(failures, batchFailure{RateID: id.String(), Error: err.Error()})
            continue
        }
        selected = append(selected, rt)
    }

    subs := batch.Expand(selected, batch.Template{
        DepartureDate:   dep,
        CargoTypes:      req.CargoTypes,
        PackageCount:    req.PackageCount,
        DisplayCurrency: displayCurrency,
    })

    created, batchErr := batch.Submit(ctx, subs, s.shipments.Create)
    if batchErr != nil {
        for _, item := range batchErr.Items {
            s.log.WithError(item.Err).WithField("rate_id", item.Submission.RateID).Warn("batch persist")
            failures = append(failures, batchFailure{RateID: item.Submission.RateID.String(), Error: item.Err.Error()})
        }
    }

    writeJSON(w, batchResponse{Created: created, Failures: failures})
}

func parseDate(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if t, err := time.Parse("2006-01-02", s); err == nil {
        return t, nil
    }
    return time.Parse(time.RFC3339, s)
}
