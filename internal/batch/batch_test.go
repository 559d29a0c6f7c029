package batch

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightmarket/internal/currency"
    "freightmarket/internal/rate"
    "freightmarket/internal/transit"
)

func laneRate(price float64, cur string, minDays, maxDays int) rate.Rate {
    return rate.Rate{
        ID:       uuid.New(),
        Mode:     rate.ModeSea,
        Service:  rate.ServiceStandard,
        Price:    price,
        Currency: cur,
        Unit:     rate.UnitCBM,
        MinDays:  minDays,
        MaxDays:  maxDays,
    }
}

func TestExpandOnePerRateOrderPreserving(t *testing.T) {
    a := laneRate(100000, "XOF", 7, 14)
    b := laneRate(250, "USD", 20, 30)
    tmpl := Template{
        DepartureDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
        CargoTypes:      []string{"containers", "vehicles"},
        PackageCount:    3,
        DisplayCurrency: "XOF",
    }

    subs := Expand([]rate.Rate{a, b}, tmpl)
    require.Len(t, subs, 2)
    assert.Equal(t, a.ID, subs[0].RateID)
    assert.Equal(t, b.ID, subs[1].RateID)
}

func TestExpandBatchIndependence(t *testing.T) {
    a := laneRate(100000, "XOF", 7, 14)
    b := laneRate(250, "USD", 20, 30)
    dep := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
    tmpl := Template{DepartureDate: dep, DisplayCurrency: "XOF", PackageCount: 2}

    subs := Expand([]rate.Rate{a, b}, tmpl)
    require.Len(t, subs, 2)

    // Each submission equals what single-lane computation would produce.
    assert.Equal(t, currency.Convert(a.Price, "XOF", "XOF"), subs[0].Price)
    assert.Equal(t, currency.Convert(b.Price, "USD", "XOF"), subs[1].Price)
    assert.Equal(t, transit.EstimateArrival(dep, a.MaxDays), subs[0].ArrivalEstimated)
    assert.Equal(t, transit.EstimateArrival(dep, b.MaxDays), subs[1].ArrivalEstimated)
    assert.Equal(t, "7-14 jours", subs[0].TransitDuration)
    assert.Equal(t, "20-30 jours", subs[1].TransitDuration)

    // Shared fields echo through unchanged.
    for _, s := range subs {
        assert.Equal(t, dep, s.DepartureDate)
        assert.Equal(t, 2, s.PackageCount)
        assert.Equal(t, "XOF", s.Currency)
    }
}

func TestExpandKeepsRateCurrencyWithoutDisplayCurrency(t *testing.T) {
    b := laneRate(250, "USD", 20, 30)
    subs := Expand([]rate.Rate{b}, Template{DepartureDate: time.Now()})
    require.Len(t, subs, 1)
    assert.Equal(t, 250.0, subs[0].Price)
    assert.Equal(t, "USD", subs[0].Currency)
}

func TestSubmitAllSucceed(t *testing.T) {
    subs := Expand([]rate.Rate{laneRate(100, "XOF", 1, 2), laneRate(200, "XOF", 3, 4)}, Template{DepartureDate: time.Now()})

    var mu sync.Mutex
    var persisted []uuid.UUID
    ok, batchErr := Submit(context.Background(), subs, func(ctx context.Context, s Submission) error {
        mu.Lock()
        defer mu.Unlock()
        persisted = append(persisted, s.RateID)
        return nil
    })
    require.Nil(t, batchErr)
    assert.Len(t, ok, 2)
    assert.Len(t, persisted, 2)
}

func TestSubmitPartialFailure(t *testing.T) {
    bad := laneRate(999, "XOF", 1, 2)
    subs := Expand([]rate.Rate{laneRate(100, "XOF", 1, 2), bad, laneRate(200, "XOF", 3, 4)}, Template{DepartureDate: time.Now()})

    boom := errors.New("rate deleted mid-flow")
    ok, batchErr := Submit(context.Background(), subs, func(ctx context.Context, s Submission) error {
        if s.RateID == bad.ID {
            return boom
        }
        return nil
    })
    require.NotNil(t, batchErr)
    assert.Len(t, ok, 2, "successes are kept, not rolled back")
    require.Len(t, batchErr.Items, 1)
    assert.Equal(t, bad.ID, batchErr.Items[0].Submission.RateID)
    assert.True(t, errors.Is(batchErr.Items[0].Err, boom))
}

func TestSubmitEmpty(t *testing.T) {
    ok, batchErr := Submit(context.Background(), nil, func(ctx context.Context, s Submission) error {
        t.Fatal("persist must not be called")
        return nil
    })
    assert.Nil(t, batchErr)
    assert.Empty(t, ok)
}
