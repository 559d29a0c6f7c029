package store

import (
    "context"

    "github.com/jackc/pgx/v5/pgxpool"

    "freightmarket/internal/rate"
)

// Locations is the postgres-backed location directory. Only active entries
// are returned; inactive locations are never eligible for matching.
type Locations struct {
    db *pgxpool.Pool
}

func NewLocations(db *pgxpool.Pool) *Locations { return &Locations{db: db} }

func (s *Locations) List(ctx context.Context) ([]rate.Location, error) {
    rows, err := s.db.Query(ctx, `
        SELECT id, name, kind, status
        FROM locations
        WHERE status = $1
        ORDER BY name
    `, rate.LocationActive)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []rate.Location
    for rows.Next() {
        var l rate.Location
        if err := rows.Scan(&l.ID, &l.Name, &l.Kind, &l.Status); err != nil {
            return nil, err
        }
        out = append(out, l)
    }
    return out, rows.Err()
}
