package store

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
)

// Payment is one initialized payment attempt.
type Payment struct {
    ID            uuid.UUID `json:"id"`
    Reference     string    `json:"reference"`
    Provider      string    `json:"provider"`
    TransactionID string    `json:"transaction_id,omitempty"`
    Amount        float64   `json:"amount"`
    Currency      string    `json:"currency"`
    Status        string    `json:"status"`
    CreatedAt     time.Time `json:"created_at"`
    UpdatedAt     time.Time `json:"updated_at"`
}

// Payments records payment attempts and their status transitions.
type Payments struct {
    db *pgxpool.Pool
}

func NewPayments(db *pgxpool.Pool) *Payments { return &Payments{db: db} }

func (s *Payments) Create(ctx context.Context, p Payment) (Payment, error) {
    if p.ID == uuid.Nil {
        p.ID = uuid.New()
    }
    now := time.Now().UTC()
    p.CreatedAt = now
    p.UpdatedAt = now
    _, err := s.db.Exec(ctx, `
        INSERT INTO payments (
            id, reference, provider, transaction_id, amount, currency, status, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
    `, p.ID, p.Reference, p.Provider, p.TransactionID, p.Amount, p.Currency, p.Status, now)
    if err != nil {
        return Payment{}, err
    }
    return p, nil
}

func (s *Payments) GetByReference(ctx context.Context, reference string) (Payment, error) {
    var p Payment
    err := s.db.QueryRow(ctx, `
        SELECT id, reference, provider, transaction_id, amount, currency, status, created_at, updated_at
        FROM payments
        WHERE reference = $1
    `, reference).Scan(
        &p.ID, &p.Reference, &p.Provider, &p.TransactionID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
    )
    if errors.Is(err, pgx.ErrNoRows) {
        return Payment{}, ErrNotFound
    }
    return p, err
}

// UpdateStatusByReference applies a webhook or verify outcome.
func (s *Payments) UpdateStatusByReference(ctx context.Context, reference, status string) error {
    tag, err := s.db.Exec(ctx, `
        UPDATE payments SET status = $2, updated_at = $3 WHERE reference = $1
    `, reference, status, time.Now().UTC())
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return ErrNotFound
    }
    return nil
}
