package store

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "freightmarket/internal/rate"
)

const rateColumns = `
    id, forwarder_id, mode, service_type, origin_id, destination_id,
    price, currency, unit, min_days, max_days, insurance_rate, auto_quote, created_at`

// Rates is the postgres-backed rate store.
type Rates struct {
    db *pgxpool.Pool
}

func NewRates(db *pgxpool.Pool) *Rates { return &Rates{db: db} }

// ListByForwarder returns the forwarder's rates in insertion order.
func (s *Rates) ListByForwarder(ctx context.Context, forwarderID uuid.UUID) ([]rate.Rate, error) {
    rows, err := s.db.Query(ctx, `
        SELECT `+rateColumns+`
        FROM rates
        WHERE forwarder_id = $1
        ORDER BY created_at, id
    `, forwarderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanRates(rows)
}

// ListGlobal returns the platform default rates in insertion order.
func (s *Rates) ListGlobal(ctx context.Context) ([]rate.Rate, error) {
    rows, err := s.db.Query(ctx, `
        SELECT `+rateColumns+`
        FROM rates
        WHERE forwarder_id IS NULL
        ORDER BY created_at, id
    `)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanRates(rows)
}

// Get fetches one rate by id.
func (s *Rates) Get(ctx context.Context, id uuid.UUID) (rate.Rate, error) {
    row := s.db.QueryRow(ctx, `
        SELECT `+rateColumns+`
        FROM rates
        WHERE id = $1
    `, id)
    r, err := scanRate(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return rate.Rate{}, ErrNotFound
    }
    return r, err
}

// Create inserts a new rate and returns it with id and timestamp set.
func (s *Rates) Create(ctx context.Context, r rate.Rate) (rate.Rate, error) {
    if r.ID == uuid.Nil {
        r.ID = uuid.New()
    }
    r.CreatedAt = time.Now().UTC()
    _, err := s.db.Exec(ctx, `
        INSERT INTO rates (
            id, forwarder_id, mode, service_type, origin_id, destination_id,
            price, currency, unit, min_days, max_days, insurance_rate, auto_quote, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, r.ID, r.ForwarderID, r.Mode, r.Service, r.OriginID, r.DestinationID,
        r.Price, r.Currency, r.Unit, r.MinDays, r.MaxDays, r.InsuranceRate, r.AutoQuote, r.CreatedAt)
    if err != nil {
        return rate.Rate{}, err
    }
    return r, nil
}

// RatePatch holds the updatable fields; nil means keep the current value.
// Updates mutate in place, rates are never versioned.
type RatePatch struct {
    Price         *float64
    Currency      *string
    MinDays       *int
    MaxDays       *int
    InsuranceRate *float64
    AutoQuote     *bool
}

// Update applies a partial update and returns the resulting row.
func (s *Rates) Update(ctx context.Context, id uuid.UUID, p RatePatch) (rate.Rate, error) {
    row := s.db.QueryRow(ctx, `
        UPDATE rates SET
            price          = COALESCE($2, price),
            currency       = COALESCE($3, currency),
            min_days       = COALESCE($4, min_days),
            max_days       = COALESCE($5, max_days),
            insurance_rate = COALESCE($6, insurance_rate),
            auto_quote     = COALESCE($7, auto_quote)
        WHERE id = $1
        RETURNING `+rateColumns+`
    `, id, p.Price, p.Currency, p.MinDays, p.MaxDays, p.InsuranceRate, p.AutoQuote)
    r, err := scanRate(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return rate.Rate{}, ErrNotFound
    }
    return r, err
}

// Delete removes a rate explicitly.
func (s *Rates) Delete(ctx context.Context, id uuid.UUID) error {
    tag, err := s.db.Exec(ctx, `DELETE FROM rates WHERE id = $1`, id)
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return ErrNotFound
    }
    return nil
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanRate(row rowScanner) (rate.Rate, error) {
    var r rate.Rate
    err := row.Scan(
        &r.ID, &r.ForwarderID, &r.Mode, &r.Service, &r.OriginID, &r.DestinationID,
        &r.Price, &r.Currency, &r.Unit, &r.MinDays, &r.MaxDays, &r.InsuranceRate, &r.AutoQuote, &r.CreatedAt,
    )
    return r, err
}

func scanRates(rows pgx.Rows) ([]rate.Rate, error) {
    var out []rate.Rate
    for rows.Next() {
        r, err := scanRate(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, r)
    }
    return out, rows.Err()
}
