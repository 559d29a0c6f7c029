package server

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "freightmarket/internal/currency"
    "freightmarket/internal/rate"
    "freightmarket/internal/store"
    "freightmarket/internal/transit"
)

func (s *Server) handleListRates(w http.ResponseWriter, r *http.Request) {
    ctx := r.Context()
    fwd, err := parseOptionalUUID(r.URL.Query().Get("forwarder_id"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid forwarder_id")
        return
    }

    var rates []rate.Rate
    if fwd != nil {
        rates, err = s.catalog.ForwarderRates(ctx, *fwd)
    } else {
        rates, err = s.catalog.PlatformRates(ctx)
    }
    if err != nil {
        s.log.WithError(err).Error("list rates")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }
    writeJSON(w, map[string]any{"rates": rates})
}

type rateRequest struct {
    ForwarderID   string  `json:"forwarder_id"`
    Mode          string  `json:"mode"`
    Service       string  `json:"type"`
    OriginID      string  `json:"origin_id"`
    DestinationID string  `json:"destination_id"`
    Price         float64 `json:"price"`
    Currency      string  `json:"currency"`
    Unit          string  `json:"unit"`
    MinDays       int     `json:"min_days"`
    MaxDays       int     `json:"max_days"`
    InsuranceRate float64 `json:"insurance_rate"`
    AutoQuote     bool    `json:"auto_quote"`
}

func (req rateRequest) toRate() (rate.Rate, string) {
    mode, err := rate.ParseMode(req.Mode)
    if err != nil {
        return rate.Rate{}, err.Error()
    }
    svc, err := rate.ParseService(req.Service)
    if err != nil {
        return rate.Rate{}, err.Error()
    }
    if req.Price < 0 {
        return rate.Rate{}, "price must be non-negative"
    }
    if !currency.Supported(req.Currency) {
        return rate.Rate{}, "unsupported currency " + req.Currency
    }
    if req.MinDays < 0 || req.MaxDays < req.MinDays {
        return rate.Rate{}, "transit days must satisfy 0 <= min_days <= max_days"
    }
    if req.InsuranceRate < 0 || req.InsuranceRate > 1 {
        return rate.Rate{}, "insurance_rate must be in [0, 1]"
    }
    unit := rate.Unit(req.Unit)
    if unit == "" {
        if mode == rate.ModeSea {
            unit = rate.UnitCBM
        } else {
            unit = rate.UnitKG
        }
    }
    fwd, err := parseOptionalUUID(req.ForwarderID)
    if err != nil {
        return rate.Rate{}, "invalid forwarder_id"
    }
    origin, err := parseOptionalUUID(req.OriginID)
    if err != nil {
        return rate.Rate{}, "invalid origin_id"
    }
    dest, err := parseOptionalUUID(req.DestinationID)
    if err != nil {
        return rate.Rate{}, "invalid destination_id"
    }
    return rate.Rate{
        ForwarderID:   fwd,
        Mode:          mode,
        Service:       svc,
        OriginID:      origin,
        DestinationID: dest,
        Price:         req.Price,
        Currency:      req.Currency,
        Unit:          unit,
        MinDays:       req.MinDays,
        MaxDays:       req.MaxDays,
        InsuranceRate: req.InsuranceRate,
        AutoQuote:     req.AutoQuote,
    }, ""
}

func (s *Server) handleCreateRate(w http.ResponseWriter, r *http.Request) {
    var req rateRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    newRate, msg := req.toRate()
    if msg != "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", msg)
        return
    }
    created, err := s.rates.Create(r.Context(), newRate)
    if err != nil {
        s.log.WithError(err).Error("create rate")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to create rate")
        return
    }
    writeJSON(w, created)
}

type ratePatchRequest struct {
    Price         *float64 `json:"price"`
    Currency      *string  `json:"currency"`
    MinDays       *int     `json:"min_days"`
    MaxDays       *int     `json:"max_days"`
    InsuranceRate *float64 `json:"insurance_rate"`
    AutoQuote     *bool    `json:"auto_quote"`
}

func (s *Server) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid rate id")
        return
    }
    var req ratePatchRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if req.Price != nil && *req.Price < 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "price must be non-negative")
        return
    }
    if req.Currency != nil && !currency.Supported(*req.Currency) {
        writeErrorJSON(w, http.StatusBadRequest, "unsupported_currency", "unsupported currency "+*req.Currency)
        return
    }
    if req.InsuranceRate != nil && (*req.InsuranceRate < 0 || *req.InsuranceRate > 1) {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "insurance_rate must be in [0, 1]")
        return
    }
    // Patching one transit bound must still leave min_days <= max_days on
    // the resulting row, so the missing bound is read from the stored rate.
    if req.MinDays != nil || req.MaxDays != nil {
        minDays, maxDays := req.MinDays, req.MaxDays
        if minDays == nil || maxDays == nil {
            current, err := s.rates.Get(r.Context(), id)
            if err != nil {
                if errors.Is(err, store.ErrNotFound) {
                    writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rate not found")
                    return
                }
                s.log.WithError(err).Error("update rate")
                writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to update rate")
                return
            }
            if minDays == nil {
                minDays = &current.MinDays
            }
            if maxDays == nil {
                maxDays = &current.MaxDays
            }
        }
        if *minDays < 0 || *maxDays < *minDays {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "transit days must satisfy 0 <= min_days <= max_days")
            return
        }
    }
    updated, err := s.rates.Update(r.Context(), id, store.RatePatch{
        Price:         req.Price,
        Currency:      req.Currency,
        MinDays:       req.MinDays,
        MaxDays:       req.MaxDays,
        InsuranceRate: req.InsuranceRate,
        AutoQuote:     req.AutoQuote,
    })
    if err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rate not found")
            return
        }
        s.log.WithError(err).Error("update rate")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to update rate")
        return
    }
    writeJSON(w, updated)
}

func (s *Server) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid rate id")
        return
    }
    if err := s.rates.Delete(r.Context(), id); err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rate not found")
            return
        }
        s.log.WithError(err).Error("delete rate")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to delete rate")
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

type matchResponse struct {
    Rate            rate.Rate `json:"rate"`
    TransitDuration string    `json:"transit_duration"`
    FormattedPrice  string    `json:"formatted_price"`
}

// handleMatchRate runs the specificity matcher over the forwarder's rates
// when forwarder_id is given, falling back to the platform defaults when
// the forwarder has no applicable rate. Only auto-quotable rates are
// eligible here; the rest require manual forwarder approval.
func (s *Server) handleMatchRate(w http.ResponseWriter, r *http.Request) {
    ctx := r.Context()
    qp := r.URL.Query()

    mode, err := rate.ParseMode(qp.Get("mode"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
        return
    }
    q := rate.Query{Mode: mode}

    var opts []rate.MatchOption
    if anyService(qp.Get("any_type")) {
        opts = append(opts, rate.AnyService())
    } else {
        svc, err := rate.ParseService(qp.Get("type"))
        if err != nil {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
            return
        }
        q.Service = svc
    }

    if q.OriginID, err = parseOptionalUUID(qp.Get("origin_id")); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid origin_id")
        return
    }
    if q.DestinationID, err = parseOptionalUUID(qp.Get("destination_id")); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid destination_id")
        return
    }
    if wq := qp.Get("weight"); wq != "" {
        var n json.Number = json.Number(wq)
        if f, err := n.Float64(); err == nil {
            q.Weight = f
        }
    }
    fwd, err := parseOptionalUUID(qp.Get("forwarder_id"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid forwarder_id")
        return
    }

    best, err := s.matchAcrossSources(ctx, q, fwd, opts)
    if err != nil {
        if errors.Is(err, rate.ErrNoMatchingRate) {
            writeErrorJSON(w, http.StatusNotFound, "no_matching_rate", "no automatic quote available")
            return
        }
        s.log.WithError(err).Error("match rate")
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }

    price, cur := best.Price, best.Currency
    if dc := qp.Get("display_currency"); dc != "" {
        converted, err := currency.ConvertStrict(best.Price, best.Currency, dc)
        if err != nil {
            writeErrorJSON(w, http.StatusBadRequest, "unsupported_currency", "unsupported currency "+dc)
            return
        }
        price, cur = converted, dc
    }

    writeJSON(w, matchResponse{
        Rate:            *best,
        TransitDuration: transit.FormatDuration(best.MinDays, best.MaxDays),
        FormattedPrice:  currency.Format(price, cur),
    })
}

func (s *Server) matchAcrossSources(ctx context.Context, q rate.Query, fwd *uuid.UUID, opts []rate.MatchOption) (*rate.Rate, error) {
    if fwd != nil {
        candidates, err := s.catalog.ForwarderRates(ctx, *fwd)
        if err != nil {
            return nil, err
        }
        if best, err := rate.Match(q, autoQuotable(candidates), opts...); err == nil {
            return best, nil
        } else if !errors.Is(err, rate.ErrNoMatchingRate) {
            return nil, err
        }
    }
    candidates, err := s.catalog.PlatformRates(ctx)
    if err != nil {
        return nil, err
    }
    return rate.Match(q, autoQuotable(candidates), opts...)
}

// autoQuotable filters out rates requiring manual forwarder approval.
func autoQuotable(rs []rate.Rate) []rate.Rate {
    out := make([]rate.Rate, 0, len(rs))
    for _, r := range rs {
        if r.AutoQuote {
            out = append(out, r)
        }
    }
    return out
}

func anyService(v string) bool {
    return v == "1" || v == "true"
}
