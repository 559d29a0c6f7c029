package rate

import (
    "context"

    "github.com/google/uuid"
)

// Store lists persisted rates. Catalog only reads; CRUD lives with the
// storage layer.
type Store interface {
    ListByForwarder(ctx context.Context, forwarderID uuid.UUID) ([]Rate, error)
    ListGlobal(ctx context.Context) ([]Rate, error)
}

// LocationDirectory lists bookable locations.
type LocationDirectory interface {
    List(ctx context.Context) ([]Location, error)
}

// Catalog is a read-only view over the two rate sources, with origin and
// destination display names joined on.
type Catalog struct {
    rates     Store
    locations LocationDirectory
}

func NewCatalog(rates Store, locations LocationDirectory) *Catalog {
    return &Catalog{rates: rates, locations: locations}
}

// ForwarderRates returns the rates scoped to one forwarder, in insertion
// order.
func (c *Catalog) ForwarderRates(ctx context.Context, forwarderID uuid.UUID) ([]Rate, error) {
    rs, err := c.rates.ListByForwarder(ctx, forwarderID)
    if err != nil {
        return nil, err
    }
    return c.withNames(ctx, rs)
}

// PlatformRates returns the platform default rates, in insertion order.
func (c *Catalog) PlatformRates(ctx context.Context) ([]Rate, error) {
    rs, err := c.rates.ListGlobal(ctx)
    if err != nil {
        return nil, err
    }
    return c.withNames(ctx, rs)
}

func (c *Catalog) withNames(ctx context.Context, rs []Rate) ([]Rate, error) {
    locs, err := c.locations.List(ctx)
    if err != nil {
        return nil, err
    }
    names := make(map[uuid.UUID]string, len(locs))
    for _, l := range locs {
        if l.Status == LocationActive {
            names[l.ID] = l.Name
        }
    }
    for i := range rs {
        if rs[i].OriginID != nil {
            rs[i].OriginName = names[*rs[i].OriginID]
        }
        if rs[i].DestinationID != nil {
            rs[i].DestName = names[*rs[i].DestinationID]
        }
    }
    return rs, nil
}
