package server

import (
    "context"
    "bytes"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightmarket/internal/rate"
)

func addRate(e *testEnv, r rate.Rate) rate.Rate {
    r.ID = uuid.New()
    e.rates.rates = append(e.rates.rates, r)
    return r
}

func TestMatchRatePrefersLaneSpecific(t *testing.T) {
    e := newTestEnv()
    dakar, paris := uuid.New(), uuid.New()
    e.locations.locations = []rate.Location{
        {ID: dakar, Name: "Dakar", Status: rate.LocationActive},
        {ID: paris, Name: "Paris", Status: rate.LocationActive},
    }
    addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 500, Currency: "XOF", AutoQuote: true})
    lane := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, OriginID: &dakar, DestinationID: &paris, Price: 650, Currency: "XOF", AutoQuote: true})

    url := "/rates/match?mode=sea&type=standard&origin_id=" + dakar.String() + "&destination_id=" + paris.String()
    req := httptest.NewRequest(http.MethodGet, url, nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res matchResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, lane.ID, res.Rate.ID)
    assert.Equal(t, 650.0, res.Rate.Price)
    assert.Equal(t, "Dakar", res.Rate.OriginName)
}

func TestMatchRateSkipsManualRates(t *testing.T) {
    e := newTestEnv()
    addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 500, Currency: "XOF", AutoQuote: false})

    req := httptest.NewRequest(http.MethodGet, "/rates/match?mode=sea&type=standard", nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    assert.Equal(t, http.StatusNotFound, rr.Code)
    assert.Contains(t, rr.Body.String(), "no_matching_rate")
}

func TestMatchRateForwarderFallsBackToPlatform(t *testing.T) {
    e := newTestEnv()
    fwd := uuid.New()
    platform := addRate(e, rate.Rate{Mode: rate.ModeAir, Service: rate.ServiceExpress, Price: 900, Currency: "XOF", AutoQuote: true})
    // The forwarder has a sea rate only; the air query must fall back.
    addRate(e, rate.Rate{ForwarderID: &fwd, Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 100, Currency: "XOF", AutoQuote: true})

    url := "/rates/match?mode=air&type=express&forwarder_id=" + fwd.String()
    req := httptest.NewRequest(http.MethodGet, url, nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res matchResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, platform.ID, res.Rate.ID)
}

func TestMatchRateAnyServiceOptIn(t *testing.T) {
    e := newTestEnv()
    addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceExpress, Price: 700, Currency: "XOF", AutoQuote: true})

    // Default: exact service match required, and type is mandatory.
    req := httptest.NewRequest(http.MethodGet, "/rates/match?mode=sea&type=standard", nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    assert.Equal(t, http.StatusNotFound, rr.Code)

    req = httptest.NewRequest(http.MethodGet, "/rates/match?mode=sea&any_type=1", nil)
    rr = httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestCreateRateValidation(t *testing.T) {
    e := newTestEnv()

    post := func(body map[string]any) *httptest.ResponseRecorder {
        b, _ := json.Marshal(body)
        req := httptest.NewRequest(http.MethodPost, "/rates", bytes.NewReader(b))
        req.Header.Set("Content-Type", "application/json")
        rr := httptest.NewRecorder()
        e.handler.ServeHTTP(rr, req)
        return rr
    }

    // Unknown mode is rejected at the boundary, not propagated.
    rr := post(map[string]any{"mode": "road", "type": "standard", "price": 100, "currency": "XOF"})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = post(map[string]any{"mode": "sea", "type": "standard", "price": -5, "currency": "XOF"})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = post(map[string]any{"mode": "sea", "type": "standard", "price": 100, "currency": "BTC"})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = post(map[string]any{"mode": "sea", "type": "standard", "price": 100, "currency": "XOF", "min_days": 10, "max_days": 5})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = post(map[string]any{"mode": "sea", "type": "standard", "price": 100000, "currency": "XOF", "min_days": 20, "max_days": 35, "auto_quote": true})
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var created rate.Rate
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
    assert.Equal(t, rate.UnitCBM, created.Unit, "sea defaults to cbm")
}

func TestUpdateRateTransitBounds(t *testing.T) {
    e := newTestEnv()
    rt := addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 500, Currency: "XOF", MinDays: 2, MaxDays: 5, AutoQuote: true})

    put := func(body map[string]any) *httptest.ResponseRecorder {
        b, _ := json.Marshal(body)
        req := httptest.NewRequest(http.MethodPut, "/rates/"+rt.ID.String(), bytes.NewReader(b))
        req.Header.Set("Content-Type", "application/json")
        rr := httptest.NewRecorder()
        e.handler.ServeHTTP(rr, req)
        return rr
    }

    // Raising only the lower bound past the stored upper bound must fail.
    rr := put(map[string]any{"min_days": 20})
    assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
    assert.Contains(t, rr.Body.String(), "invalid_request")

    rr = put(map[string]any{"max_days": 1})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = put(map[string]any{"min_days": 10, "max_days": 5})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    rr = put(map[string]any{"min_days": -1, "max_days": 5})
    assert.Equal(t, http.StatusBadRequest, rr.Code)

    stored, err := e.rates.Get(context.Background(), rt.ID)
    require.NoError(t, err)
    assert.Equal(t, 2, stored.MinDays)
    assert.Equal(t, 5, stored.MaxDays)

    // A consistent pair, and a single bound that keeps the pair ordered.
    rr = put(map[string]any{"min_days": 3, "max_days": 9})
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    rr = put(map[string]any{"max_days": 12})
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var updated rate.Rate
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
    assert.Equal(t, 3, updated.MinDays)
    assert.Equal(t, 12, updated.MaxDays)
}

func TestMatchRateDisplayCurrency(t *testing.T) {
    e := newTestEnv()
    addRate(e, rate.Rate{Mode: rate.ModeSea, Service: rate.ServiceStandard, Price: 1000, Currency: "USD", AutoQuote: true})

    req := httptest.NewRequest(http.MethodGet, "/rates/match?mode=sea&type=standard&display_currency=EUR", nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

    var res matchResponse
    require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
    assert.Equal(t, "€920", res.FormattedPrice)
    assert.Equal(t, 1000.0, res.Rate.Price, "stored price stays in its own currency")

    req = httptest.NewRequest(http.MethodGet, "/rates/match?mode=sea&type=standard&display_currency=BTC", nil)
    rr = httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    assert.Equal(t, http.StatusBadRequest, rr.Code)
    assert.Contains(t, rr.Body.String(), "unsupported_currency")
}

func TestDeleteRateNotFound(t *testing.T) {
    e := newTestEnv()
    req := httptest.NewRequest(http.MethodDelete, "/rates/"+uuid.NewString(), nil)
    rr := httptest.NewRecorder()
    e.handler.ServeHTTP(rr, req)
    assert.Equal(t, http.StatusNotFound, rr.Code)
}
