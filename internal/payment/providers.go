package payment

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/google/uuid"
)

// Wallet settles against the buyer's internal balance, synchronously.
type Wallet struct{}

func NewWallet() *Wallet { return &Wallet{} }

func (w *Wallet) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
    return InitResult{TransactionID: "wal_" + uuid.NewString(), Settled: true}, nil
}

func (w *Wallet) Verify(ctx context.Context, transactionID string) (Status, error) {
    return StatusCompleted, nil
}

// Cash marks the shipment payable on delivery; nothing to collect online.
type Cash struct{}

func NewCash() *Cash { return &Cash{} }

func (c *Cash) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
    return InitResult{TransactionID: "csh_" + uuid.NewString(), Settled: true}, nil
}

func (c *Cash) Verify(ctx context.Context, transactionID string) (Status, error) {
    return StatusCompleted, nil
}

// Aggregator talks to a redirect-based provider (mobile money or card
// processors) over its JSON HTTP API.
type Aggregator struct {
    name    string
    baseURL string
    apiKey  string
    client  *http.Client
}

func NewAggregator(name, baseURL, apiKey string) *Aggregator {
    return &Aggregator{
        name:    name,
        baseURL: baseURL,
        apiKey:  apiKey,
        client:  &http.Client{Timeout: 15 * time.Second},
    }
}

type aggregatorInitResponse struct {
    Token       string `json:"token"`
    RedirectURL string `json:"redirect_url"`
    LaunchURL   string `json:"launch_url"`
}

func (a *Aggregator) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
    payload := map[string]any{
        "amount":    req.Amount,
        "currency":  req.Currency,
        "reference": req.Reference,
        "metadata":  req.Metadata,
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return InitResult{}, err
    }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/checkout", bytes.NewReader(body))
    if err != nil {
        return InitResult{}, err
    }
    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

    resp, err := a.client.Do(httpReq)
    if err != nil {
        return InitResult{}, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
        return InitResult{}, fmt.Errorf("%s checkout returned %d", a.name, resp.StatusCode)
    }
    var out aggregatorInitResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return InitResult{}, err
    }
    redirect := out.RedirectURL
    if redirect == "" {
        redirect = out.LaunchURL
    }
    return InitResult{TransactionID: out.Token, RedirectURL: redirect}, nil
}

type aggregatorStatusResponse struct {
    Status string `json:"status"`
}

func (a *Aggregator) Verify(ctx context.Context, transactionID string) (Status, error) {
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/checkout/"+transactionID, nil)
    if err != nil {
        return "", err
    }
    httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

    resp, err := a.client.Do(httpReq)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return "", fmt.Errorf("%s status returned %d", a.name, resp.StatusCode)
    }
    var out aggregatorStatusResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", err
    }
    return ParseStatus(out.Status), nil
}
