package server

import (
    "encoding/json"
    "errors"
    "strings"
)

// PaymentEvent is a provider callback reduced to the fields the payment
// store needs.
type PaymentEvent struct {
    Reference string
    Status    string
    Raw       json.RawMessage
}

// ErrMissingReference is returned when a payload carries no payment
// reference.
var ErrMissingReference = errors.New("missing payment reference")

// normalizePaymentEvent extracts common fields from diverse provider
// payloads. Providers disagree on key names, so a list of candidates is
// tried for each field.
func normalizePaymentEvent(body []byte) (PaymentEvent, error) {
    var payload map[string]any
    if err := json.Unmarshal(body, &payload); err != nil {
        return PaymentEvent{}, err
    }
    ref := getString(payload, []string{"reference", "ref_command", "custom_data.reference", "invoice.reference", "token"})
    ref = strings.TrimSpace(ref)
    if ref == "" {
        return PaymentEvent{}, ErrMissingReference
    }

    status := getString(payload, []string{"status", "payment_status", "invoice.status", "event"})

    return PaymentEvent{
        Reference: ref,
        Status:    status,
        Raw:       json.RawMessage(body),
    }, nil
}

// getString returns the first non-empty string from the candidate keys.
// Supports dot-path navigation for nested maps.
func getString(m map[string]any, keys []string) string {
    for _, k := range keys {
        if v := getPath(m, k); v != nil {
            if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
                return s
            }
        }
    }
    return ""
}

// getPath navigates a dot-separated key into nested maps.
func getPath(m map[string]any, path string) any {
    parts := strings.Split(path, ".")
    var cur any = m
    for _, p := range parts {
        mm, ok := cur.(map[string]any)
        if !ok {
            return nil
        }
        v, ok := mm[p]
        if !ok {
            return nil
        }
        cur = v
    }
    return cur
}
