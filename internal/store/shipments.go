package store

import (
    "context"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgxpool"

    "freightmarket/internal/batch"
)

// Shipments persists resolved batch submissions. Each submission is an
// independent insert; the batch layer owns the fan-out and partial-failure
// reporting.
type Shipments struct {
    db *pgxpool.Pool
}

func NewShipments(db *pgxpool.Pool) *Shipments { return &Shipments{db: db} }

func (s *Shipments) Create(ctx context.Context, sub batch.Submission) error {
    _, err := s.db.Exec(ctx, `
        INSERT INTO shipments (
            id, rate_id, forwarder_id, origin_id, destination_id,
            mode, service_type, price, currency,
            departure_date, arrival_estimated_date, transit_duration,
            cargo_types, package_count, status, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9,
            $10, $11, $12,
            $13, $14, 'pending', $15
        )
    `,
        uuid.New(),
        sub.RateID,
        sub.ForwarderID,
        sub.OriginID,
        sub.DestinationID,
        sub.Mode,
        sub.Service,
        sub.Price,
        sub.Currency,
        sub.DepartureDate,
        sub.ArrivalEstimated,
        sub.TransitDuration,
        sub.CargoTypes,
        sub.PackageCount,
        time.Now().UTC(),
    )
    return err
}
