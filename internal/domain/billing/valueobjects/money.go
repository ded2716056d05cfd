package valueobjects

import "fmt"

type Money struct {
	amountInCents int64
	currency      string
}

func NewMoney(amountInCents int64, currency string) Money {
	if currency == "" {
		currency = "USD"
	}
	return Money{
		amountInCents: amountInCents,
		currency:      currency,
	}
}

func (m Money) AmountInCents() int64 {
	return m.amountInCents
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) AmountInUnits() float64 {
	return float64(m.amountInCents) / 100.0
}

func (m Money) Equals(other Money) bool {
	return m.amountInCents == other.amountInCents && m.currency == other.currency
}

func (m Money) IsPositive() bool {
	return m.amountInCents > 0
}

func (m Money) IsZero() bool {
	return m.amountInCents == 0
}

// CurrencySymbol returns the display symbol for the currency, falling back to
// the currency code itself.
func (m Money) CurrencySymbol() string {
	switch m.currency {
	case "USD", "COP":
		return "$"
	case "EUR":
		return "€"
	default:
		return m.currency
	}
}

// Formatted renders the amount for user-facing surfaces: "Gratis" for zero,
// otherwise symbol plus whole units.
func (m Money) Formatted() string {
	if m.IsZero() {
		return "Gratis"
	}
	return fmt.Sprintf("%s%d", m.CurrencySymbol(), m.amountInCents/100)
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.AmountInUnits(), m.currency)
}
