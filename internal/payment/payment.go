package payment

import (
    "context"
    "errors"
    "strings"
)

// Status of a payment attempt as reported by a provider.
type Status string

const (
    StatusPending   Status = "pending"
    StatusCompleted Status = "completed"
    StatusFailed    Status = "failed"
)

// ErrUnknownProvider is returned by NewByName for unconfigured names.
var ErrUnknownProvider = errors.New("unknown payment provider")

// ParseStatus maps the status vocabulary used across providers onto the
// three canonical states. Anything unrecognized is still pending.
func ParseStatus(s string) Status {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "completed", "success", "paid":
        return StatusCompleted
    case "failed", "cancelled", "canceled":
        return StatusFailed
    default:
        return StatusPending
    }
}

// InitRequest describes the amount to collect and the caller's reference.
type InitRequest struct {
    Amount    float64
    Currency  string
    Reference string
    Metadata  map[string]string
}

// InitResult is the provider's answer. Redirect-based providers return a
// RedirectURL the caller must send the user to; wallet and cash settle
// synchronously and report Settled true with no redirect.
type InitResult struct {
    TransactionID string
    RedirectURL   string
    Settled       bool
}

// Gateway is the shared contract for all named payment providers.
type Gateway interface {
    Initialize(ctx context.Context, req InitRequest) (InitResult, error)
    Verify(ctx context.Context, transactionID string) (Status, error)
}

// Config carries the aggregator endpoints and credentials.
type Config struct {
    MobileBaseURL string
    MobileAPIKey  string
    CardBaseURL   string
    CardAPIKey    string
}

// NewByName returns a Gateway by provider name. Wallet and cash bypass the
// redirect flow entirely.
func NewByName(name string, cfg Config) (Gateway, error) {
    switch strings.ToLower(strings.TrimSpace(name)) {
    case "wallet":
        return NewWallet(), nil
    case "cash":
        return NewCash(), nil
    case "mobile":
        return NewAggregator("mobile", cfg.MobileBaseURL, cfg.MobileAPIKey), nil
    case "card":
        return NewAggregator("card", cfg.CardBaseURL, cfg.CardAPIKey), nil
    default:
        return nil, ErrUnknownProvider
    }
}
