package batch

import (
    "context"
    "fmt"
    "time"

    "github.com/google/uuid"
    "golang.org/x/sync/errgroup"

    "freightmarket/internal/currency"
    "freightmarket/internal/rate"
    "freightmarket/internal/transit"
)

// Template carries the fields shared by every lane in a multi-select flow.
type Template struct {
    DepartureDate   time.Time `json:"departure_date"`
    CargoTypes      []string  `json:"cargo_types"`
    PackageCount    int       `json:"package_count"`
    DisplayCurrency string    `json:"display_currency"`
}

// Submission is one fully resolved shipment row, ready to persist.
type Submission struct {
    RateID           uuid.UUID    `json:"rate_id"`
    ForwarderID      *uuid.UUID   `json:"forwarder_id,omitempty"`
    OriginID         *uuid.UUID   `json:"origin_id,omitempty"`
    DestinationID    *uuid.UUID   `json:"destination_id,omitempty"`
    Origin           string       `json:"origin,omitempty"`
    Destination      string       `json:"destination,omitempty"`
    Mode             rate.Mode    `json:"mode"`
    Service          rate.Service `json:"type"`
    Price            float64      `json:"price"`
    Currency         string       `json:"currency"`
    DepartureDate    time.Time    `json:"departure_date"`
    ArrivalEstimated time.Time    `json:"arrival_estimated_date"`
    TransitDuration  string       `json:"transit_duration"`
    CargoTypes       []string     `json:"cargo_types"`
    PackageCount     int          `json:"package_count"`
}

// Expand resolves one submission per selected rate, order-preserving. Each
// lane gets its own price conversion and its own transit dates; the shared
// template fields are echoed through verbatim.
func Expand(rates []rate.Rate, tmpl Template) []Submission {
    subs := make([]Submission, 0, len(rates))
    for _, r := range rates {
        price := r.Price
        cur := r.Currency
        if tmpl.DisplayCurrency != "" {
            price = currency.Convert(r.Price, r.Currency, tmpl.DisplayCurrency)
            cur = tmpl.DisplayCurrency
        }
        arrival := transit.EstimateArrival(tmpl.DepartureDate, r.MaxDays)
        subs = append(subs, Submission{
            RateID:           r.ID,
            ForwarderID:      r.ForwarderID,
            OriginID:         r.OriginID,
            DestinationID:    r.DestinationID,
            Origin:           r.OriginName,
            Destination:      r.DestName,
            Mode:             r.Mode,
            Service:          r.Service,
            Price:            price,
            Currency:         cur,
            DepartureDate:    tmpl.DepartureDate,
            ArrivalEstimated: arrival,
            TransitDuration:  transit.Label(r.MinDays, r.MaxDays, tmpl.DepartureDate, arrival),
            CargoTypes:       tmpl.CargoTypes,
            PackageCount:     tmpl.PackageCount,
        })
    }
    return subs
}

// ItemError pairs one failed submission with its cause.
type ItemError struct {
    Submission Submission
    Err        error
}

// Error reports a partial batch failure. Successes are not rolled back.
type Error struct {
    Items []ItemError
}

func (e *Error) Error() string {
    return fmt.Sprintf("batch: %d submission(s) failed", len(e.Items))
}

// PersistFunc persists a single submission.
type PersistFunc func(ctx context.Context, sub Submission) error

// Submit persists all submissions concurrently, fire-all await-all, with no
// ordering guarantee between items. Each item's outcome is collected
// independently; a partial failure returns the persisted subset together
// with an *Error listing the failed items.
func Submit(ctx context.Context, subs []Submission, persist PersistFunc) ([]Submission, *Error) {
    results := make([]error, len(subs))
    g, gctx := errgroup.WithContext(ctx)
    for i := range subs {
        i := i
        g.Go(func() error {
            results[i] = persist(gctx, subs[i])
            return nil
        })
    }
    _ = g.Wait()

    var ok []Submission
    var failed []ItemError
    for i, err := range results {
        if err != nil {
            failed = append(failed, ItemError{Submission: subs[i], Err: err})
            continue
        }
        ok = append(ok, subs[i])
    }
    if len(failed) > 0 {
        return ok, &Error{Items: failed}
    }
    return ok, nil
}
