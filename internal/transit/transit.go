package transit

import (
    "fmt"
    "time"
)

// EstimateArrival adds the worst-case transit time to the departure date.
// Plain calendar addition: no business days, no timezone conversion.
// Negative day counts are treated as zero so arrival never precedes
// departure.
func EstimateArrival(departure time.Time, maxTransitDays int) time.Time {
    if maxTransitDays < 0 {
        maxTransitDays = 0
    }
    return departure.AddDate(0, 0, maxTransitDays)
}

// FormatDuration renders a transit window as "{min}-{max} jours".
func FormatDuration(minDays, maxDays int) string {
    return fmt.Sprintf("%d-%d jours", minDays, maxDays)
}

// DurationBetween renders the elapsed whole days between two dates.
func DurationBetween(departure, arrival time.Time) string {
    days := int(arrival.Sub(departure).Hours() / 24)
    if days < 0 {
        days = 0
    }
    return fmt.Sprintf("%d jours", days)
}

// Label picks the best available rendering: the rate's min/max window when
// known, the elapsed days between explicit dates otherwise, else empty.
func Label(minDays, maxDays int, departure, arrival time.Time) string {
    if minDays > 0 || maxDays > 0 {
        return FormatDuration(minDays, maxDays)
    }
    if !departure.IsZero() && !arrival.IsZero() {
        return DurationBetween(departure, arrival)
    }
    return ""
}
