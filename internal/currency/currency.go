package currency

import (
    "errors"
    "fmt"
    "math"
    "strings"
)

// ErrUnsupportedCurrency is returned by ConvertStrict for codes absent from
// the exchange table.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// rates holds units of each currency per 1 USD (pivot).
var rates = map[string]float64{
    "USD": 1,
    "EUR": 0.92,
    "GBP": 0.79,
    "CNY": 7.21,
    "CAD": 1.36,
    "MAD": 10.05,
    "XOF": 603.50,
}

var symbols = map[string]string{
    "USD": "$",
    "EUR": "€",
    "GBP": "£",
    "CNY": "¥",
    "CAD": "$",
    "MAD": "MAD",
    "XOF": "FCFA",
}

// symbolAfter lists currencies rendered with the symbol after the amount.
var symbolAfter = map[string]bool{
    "XOF": true,
    "MAD": true,
}

// Supported reports whether code is present in the exchange table.
func Supported(code string) bool {
    _, ok := rates[code]
    return ok
}

// Convert converts amount from one currency to another through the USD pivot.
// Codes absent from the table are treated as rate 1.0, which preserves the
// legacy behavior; use ConvertStrict to get an error instead.
func Convert(amount float64, from, to string) float64 {
    if from == to {
        return amount
    }
    fromRate, ok := rates[from]
    if !ok {
        fromRate = 1
    }
    toRate, ok := rates[to]
    if !ok {
        toRate = 1
    }
    return amount / fromRate * toRate
}

// ConvertStrict is Convert with unknown codes rejected.
func ConvertStrict(amount float64, from, to string) (float64, error) {
    if from == to {
        return amount, nil
    }
    if !Supported(from) {
        return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
    }
    if !Supported(to) {
        return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
    }
    return Convert(amount, from, to), nil
}

// Format renders amount for display: rounded to whole units, thousands
// grouped with spaces, currency symbol before the number except for the
// symbol-after set (XOF, MAD).
func Format(amount float64, code string) string {
    sym, ok := symbols[code]
    if !ok {
        sym = code
    }
    n := groupThousands(int64(math.Round(amount)))
    if symbolAfter[code] {
        return n + " " + sym
    }
    return sym + n
}

func groupThousands(v int64) string {
    neg := v < 0
    if neg {
        v = -v
    }
    s := fmt.Sprintf("%d", v)
    var groups []string
    for len(s) > 3 {
        groups = append([]string{s[len(s)-3:]}, groups...)
        s = s[:len(s)-3]
    }
    groups = append([]string{s}, groups...)
    out := strings.Join(groups, " ")
    if neg {
        return "-" + out
    }
    return out
}
