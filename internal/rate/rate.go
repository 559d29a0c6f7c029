package rate

import (
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
)

// Mode is the transport mode of a lane.
type Mode string

const (
    ModeSea Mode = "sea"
    ModeAir Mode = "air"
)

// ParseMode rejects anything outside the closed {sea, air} set.
func ParseMode(s string) (Mode, error) {
    switch Mode(strings.ToLower(strings.TrimSpace(s))) {
    case ModeSea:
        return ModeSea, nil
    case ModeAir:
        return ModeAir, nil
    default:
        return "", fmt.Errorf("invalid transport mode %q", s)
    }
}

// Service is the service level of a rate.
type Service string

const (
    ServiceStandard Service = "standard"
    ServiceExpress  Service = "express"
)

// ParseService rejects anything outside the closed {standard, express} set.
func ParseService(s string) (Service, error) {
    switch Service(strings.ToLower(strings.TrimSpace(s))) {
    case ServiceStandard:
        return ServiceStandard, nil
    case ServiceExpress:
        return ServiceExpress, nil
    default:
        return "", fmt.Errorf("invalid service type %q", s)
    }
}

// Unit is the pricing unit: cbm for sea freight, kg for air, by convention.
type Unit string

const (
    UnitCBM Unit = "cbm"
    UnitKG  Unit = "kg"
)

// Rate is a priced offer for a transport lane. A nil ForwarderID marks a
// platform default; nil OriginID/DestinationID mark that side as global.
type Rate struct {
    ID            uuid.UUID  `json:"id"`
    ForwarderID   *uuid.UUID `json:"forwarder_id,omitempty"`
    Mode          Mode       `json:"mode"`
    Service       Service    `json:"type"`
    OriginID      *uuid.UUID `json:"origin_id,omitempty"`
    DestinationID *uuid.UUID `json:"destination_id,omitempty"`
    OriginName    string     `json:"origin_name,omitempty"`
    DestName      string     `json:"destination_name,omitempty"`
    Price         float64    `json:"price"`
    Currency      string     `json:"currency"`
    Unit          Unit       `json:"unit"`
    MinDays       int        `json:"min_days"`
    MaxDays       int        `json:"max_days"`
    InsuranceRate float64    `json:"insurance_rate"`
    AutoQuote     bool       `json:"auto_quote"`
    CreatedAt     time.Time  `json:"created_at"`
}

// Global reports whether the rate applies to any lane.
func (r Rate) Global() bool {
    return r.OriginID == nil && r.DestinationID == nil
}

// Query describes what the caller is shipping. Weight is a selection hint
// only and never multiplies the price.
type Query struct {
    Mode          Mode
    Service       Service
    OriginID      *uuid.UUID
    DestinationID *uuid.UUID
    Weight        float64
}

// Location is a bookable origin or destination. Only active locations are
// eligible for matching.
type Location struct {
    ID     uuid.UUID `json:"id"`
    Name   string    `json:"name"`
    Kind   string    `json:"type"`
    Status string    `json:"status"`
}

const LocationActive = "active"
