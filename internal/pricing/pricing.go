package pricing

import (
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
)

// Platform-wide constants. The fee applies to the discounted base, VAT to
// the fee-inclusive subtotal; the order is a user-facing contract.
const (
    TransactionFeeRate = 0.01
    VATRate            = 0.18
)

var (
    feeRate = decimal.NewFromFloat(TransactionFeeRate)
    vatRate = decimal.NewFromFloat(VATRate)
)

var (
    // ErrInvalidAmount means the base amount is negative; the computation
    // aborts before any fee or VAT is touched.
    ErrInvalidAmount = errors.New("invalid base amount")
    // ErrCouponIneligible means the order is below the coupon's minimum;
    // the quote is still computed without the discount.
    ErrCouponIneligible = errors.New("coupon minimum order amount not met")
    // ErrCouponInvalid means the coupon does not exist, is expired, or is
    // exhausted. Checkout continues without a discount.
    ErrCouponInvalid = errors.New("invalid coupon")
)

// DiscountType selects how a coupon's value is interpreted.
type DiscountType string

const (
    DiscountPercentage DiscountType = "percentage"
    DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount descriptor.
type Coupon struct {
    ID             uuid.UUID    `json:"id"`
    Code           string       `json:"code"`
    DiscountType   DiscountType `json:"discount_type"`
    DiscountValue  float64      `json:"discount_value"`
    MinOrderAmount float64      `json:"min_order_amount"`
    UsageCount     int          `json:"usage_count"`
    MaxUsage       int          `json:"max_usage"`
    ValidFrom      *time.Time   `json:"valid_from,omitempty"`
    ValidTo        *time.Time   `json:"valid_to,omitempty"`
    Active         bool         `json:"active"`
}

// Redeemable checks the coupon's lifecycle constraints at the given instant.
func (c Coupon) Redeemable(now time.Time) error {
    if !c.Active {
        return ErrCouponInvalid
    }
    if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
        return ErrCouponInvalid
    }
    if c.ValidTo != nil && now.After(*c.ValidTo) {
        return ErrCouponInvalid
    }
    if c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage {
        return ErrCouponInvalid
    }
    return nil
}

// Quote is the computed payable breakdown, displayed to the end user in
// exactly this order: base, discount, fees, VAT, total.
type Quote struct {
    BaseAmount float64 `json:"base_amount"`
    Discount   float64 `json:"discount"`
    Fees       float64 `json:"fees"`
    VAT        float64 `json:"vat"`
    Total      float64 `json:"total"`
    Currency   string  `json:"currency"`
}

// ComputeQuote runs the fixed pricing pipeline: discount, then the 1%
// transaction fee on the discounted base, then 18% VAT on the subtotal,
// then rounding the total to the nearest whole currency unit.
//
// When the coupon's minimum order floor is not met, the quote is computed
// on the full base and returned together with ErrCouponIneligible so the
// caller decides whether to surface it.
func ComputeQuote(baseAmount float64, currency string, coupon *Coupon) (Quote, error) {
    if baseAmount < 0 {
        return Quote{}, ErrInvalidAmount
    }

    base := decimal.NewFromFloat(baseAmount)
    discount := decimal.Zero
    var couponErr error
    if coupon != nil {
        if baseAmount < coupon.MinOrderAmount {
            couponErr = ErrCouponIneligible
        } else {
            discount = rawDiscount(base, *coupon)
            if discount.GreaterThan(base) {
                discount = base
            }
        }
    }

    discounted := base.Sub(discount)
    if discounted.IsNegative() {
        discounted = decimal.Zero
    }
    fees := discounted.Mul(feeRate)
    subtotal := discounted.Add(fees)
    vat := subtotal.Mul(vatRate)
    total := subtotal.Add(vat).Round(0)

    return Quote{
        BaseAmount: baseAmount,
        Discount:   discount.InexactFloat64(),
        Fees:       fees.InexactFloat64(),
        VAT:        vat.InexactFloat64(),
        Total:      total.InexactFloat64(),
        Currency:   currency,
    }, couponErr
}

func rawDiscount(base decimal.Decimal, c Coupon) decimal.Decimal {
    value := decimal.NewFromFloat(c.DiscountValue)
    switch c.DiscountType {
    case DiscountPercentage:
        return base.Mul(value).Div(decimal.NewFromInt(100))
    case DiscountFixed:
        return value
    default:
        return decimal.Zero
    }
}
