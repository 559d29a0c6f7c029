package rate

import "errors"

// ErrNoMatchingRate means no candidate survived filtering. Callers treat it
// as "no automatic quote available", not a failure.
var ErrNoMatchingRate = errors.New("no matching rate")

type matchConfig struct {
    anyService bool
}

// MatchOption adjusts matching behavior.
type MatchOption func(*matchConfig)

// AnyService relaxes the exact service-level requirement. The default is a
// hard equality check; callers must opt in deliberately.
func AnyService() MatchOption {
    return func(c *matchConfig) { c.anyService = true }
}

// Match selects the single best rate for the query using specificity
// scoring: an exact-lane rate (score 2) beats a half-specific rate (score 1)
// beats a fully global rate (score 0), regardless of price. A rate naming an
// origin or destination that does not match the query is excluded outright.
// Among the max-score survivors the lowest price wins; equal prices resolve
// to the most recently created candidate (latest in catalog order).
func Match(q Query, candidates []Rate, opts ...MatchOption) (*Rate, error) {
    var cfg matchConfig
    for _, opt := range opts {
        opt(&cfg)
    }

    bestIdx := -1
    bestScore := -1
    for i, c := range candidates {
        if c.Mode != q.Mode {
            continue
        }
        if !cfg.anyService && c.Service != q.Service {
            continue
        }
        score, ok := specificity(q, c)
        if !ok {
            continue
        }
        if bestIdx < 0 ||
            score > bestScore ||
            (score == bestScore && c.Price < candidates[bestIdx].Price) ||
            (score == bestScore && c.Price == candidates[bestIdx].Price) {
            bestIdx = i
            bestScore = score
        }
    }
    if bestIdx < 0 {
        return nil, ErrNoMatchingRate
    }
    r := candidates[bestIdx]
    return &r, nil
}

// specificity scores how precisely the rate's lane matches the query. The
// second return is false when the rate names a side that contradicts the
// query: wrong-lane rates get no partial credit.
func specificity(q Query, r Rate) (int, bool) {
    score := 0
    if r.OriginID != nil {
        if q.OriginID == nil || *r.OriginID != *q.OriginID {
            return 0, false
        }
        score++
    }
    if r.DestinationID != nil {
        if q.DestinationID == nil || *r.DestinationID != *q.DestinationID {
            return 0, false
        }
        score++
    }
    return score, true
}
