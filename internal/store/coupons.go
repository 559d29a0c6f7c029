package store

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "freightmarket/internal/pricing"
)

// Coupons is the postgres-backed coupon store.
type Coupons struct {
    db *pgxpool.Pool
}

func NewCoupons(db *pgxpool.Pool) *Coupons { return &Coupons{db: db} }

// Validate looks a coupon up by code and checks its lifecycle constraints.
// Unknown, inactive, expired, or exhausted coupons all map to
// pricing.ErrCouponInvalid.
func (s *Coupons) Validate(ctx context.Context, code string) (pricing.Coupon, error) {
    var c pricing.Coupon
    err := s.db.QueryRow(ctx, `
        SELECT id, code, discount_type, discount_value, min_order_amount,
               usage_count, max_usage, valid_from, valid_to, active
        FROM coupons
        WHERE lower(code) = lower($1)
    `, strings.TrimSpace(code)).Scan(
        &c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount,
        &c.UsageCount, &c.MaxUsage, &c.ValidFrom, &c.ValidTo, &c.Active,
    )
    if err != nil {
        if errors.Is(err, pgx.ErrNoRows) {
            return pricing.Coupon{}, pricing.ErrCouponInvalid
        }
        return pricing.Coupon{}, err
    }
    if err := c.Redeemable(time.Now().UTC()); err != nil {
        return pricing.Coupon{}, err
    }
    return c, nil
}

// IncrementUsage bumps the redemption counter after a successful
// application.
func (s *Coupons) IncrementUsage(ctx context.Context, id uuid.UUID) error {
    tag, err := s.db.Exec(ctx, `
        UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1
    `, id)
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return ErrNotFound
    }
    return nil
}
