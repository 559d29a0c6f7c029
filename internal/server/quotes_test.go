package server

import (
    "bytes"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightmarket/internal/pricing"
    "freightmarket/internal/rate"
)

func postJSON(e *testEnv, path string, body map[string]any) *httptest.ResponseRecorder {
    b, _ := json.Marshal(body)
    req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
    req.Header.Set("Content-Type", "application/json")
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    return rr
}

func TestCreateQuoteNoCoupon(t *testing.T) {
    e := newTestEnv()
    rr := postJSON(e, "/quotes", map[string]any{"amount": 100000, "currency": "XOF"})
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res quoteResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, 1000.0, res.Quote.Fees)
    assert.Equal(t, 18180.0, res.Quote.VAT)
    assert.Equal(t, 119180.0, res.Quote.Total)
    assert.Equal(t, "119 180 FCFA", res.FormattedTotal)
    assert.Empty(t, res.CouponError)
}

func TestCreateQuoteWithCoupon(t *testing.T) {
    e := newTestEnv()
    c := pricing.Coupon{ID: uuid.New(), Code: "WELCOME10", DiscountType: pricing.DiscountPercentage, DiscountValue: 10, Active: true}
    e.coupons.coupons["WELCOME10"] = c

    rr := postJSON(e, "/quotes", map[string]any{"amount": 100000, "currency": "XOF", "coupon_code": "WELCOME10"})
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res quoteResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, 10000.0, res.Quote.Discount)
    assert.Equal(t, 107262.0, res.Quote.Total)
    require.Len(t, e.coupons.incremented, 1)
    assert.Equal(t, c.ID, e.coupons.incremented[0])
}

func TestCreateQuoteUnknownCouponDoesNotBlockCheckout(t *testing.T) {
    e := newTestEnv()
    rr := postJSON(e, "/quotes", map[string]any{"amount": 100000, "currency": "XOF", "coupon_code": "NOPE"})
    require.Equal(t, http.StatusOK, rr.Code)

    var res quoteResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, "coupon_invalid", res.CouponError)
    assert.Equal(t, 119180.0, res.Quote.Total)
    assert.Empty(t, e.coupons.incremented)
}

func TestCreateQuoteCouponBelowFloor(t *testing.T) {
    e := newTestEnv()
    e.coupons.coupons["BIG"] = pricing.Coupon{ID: uuid.New(), Code: "BIG", DiscountType: pricing.DiscountPercentage, DiscountValue: 10, MinOrderAmount: 10000, Active: true}

    rr := postJSON(e, "/quotes", map[string]any{"amount": 5000, "currency": "XOF", "coupon_code": "BIG"})
    require.Equal(t, http.StatusOK, rr.Code)

    var res quoteResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, "coupon_ineligible", res.CouponError)
    assert.Equal(t, 0.0, res.Quote.Discount)
    assert.Equal(t, 5959.0, res.Quote.Total)
    assert.Empty(t, e.coupons.incremented, "ineligible coupons are not redeemed")
}

func TestCreateQuoteNegativeAmount(t *testing.T) {
    e := newTestEnv()
    rr := postJSON(e, "/quotes", map[string]any{"amount": -100, "currency": "XOF"})
    assert.Equal(t, http.StatusBadRequest, rr.Code)
    assert.Contains(t, rr.Body.String(), "invalid_amount")
}

func TestBatchShipments(t *testing.T) {
    e := newTestEnv()
    a := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 100000, Currency: "XOF", MinDays: 20, MaxDays: 35, AutoQuote: true})
    b := addRate(e, rate.Rate{Mode: rate.ModeAir, Service: rate.ServiceExpress, Price: 250, Currency: "USD", MinDays: 3, MaxDays: 7, AutoQuote: true})

    rr := postJSON(e, "/shipments/batch", map[string]any{
        "rate_ids":       []string{a.ID.String(), b.ID.String()},
        "departure_date": "2025-01-01",
        "cargo_types":    []string{"containers"},
        "package_count":  2,
        "currency":       "XOF",
    })
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res batchResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    require.Len(t, res.Created, 2)
    assert.Empty(t, res.Failures)
    assert.Len(t, e.shipments.created, 2)
    assert.Equal(t, "20-35 jours", res.Created[0].TransitDuration)
    assert.Equal(t, "XOF", res.Created[1].Currency)
}

func TestBatchShipmentsRejectsSingleRate(t *testing.T) {
    e := newTestEnv()
    a := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 100, Currency: "XOF"})
    rr := postJSON(e, "/shipments/batch", map[string]any{
        "rate_ids":       []string{a.ID.String()},
        "departure_date": "2025-01-01",
    })
    assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBatchShipmentsPartialFailure(t *testing.T) {
    e := newTestEnv()
    a := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 100, Currency: "XOF", MinDays: 1, MaxDays: 2})
    b := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 200, Currency: "XOF", MinDays: 1, MaxDays: 2})
    deleted := uuid.New() // never stored: simulates a rate deleted mid-flow
    e.shipments.failOn = map[uuid.UUID]error{b.ID: errors.New("insert failed")}

    rr := postJSON(e, "/shipments/batch", map[string]any{
        "rate_ids":       []string{a.ID.String(), b.ID.String(), deleted.String()},
        "departure_date": "2025-01-01",
    })
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res batchResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    require.Len(t, res.Created, 1, "successes are kept")
    assert.Equal(t, a.ID, res.Created[0].RateID)
    assert.Len(t, res.Failures, 2)
}
