package valueobjects

import "testing"

func TestNewMoneyDefaultsCurrency(t *testing.T) {
	m := NewMoney(500, "")
	if m.Currency() != "USD" {
		t.Errorf("Currency() = %s, want USD", m.Currency())
	}
	if m.AmountInCents() != 500 {
		t.Errorf("AmountInCents() = %d, want 500", m.AmountInCents())
	}
	if m.AmountInUnits() != 5.0 {
		t.Errorf("AmountInUnits() = %f, want 5.0", m.AmountInUnits())
	}
}

func TestMoneyFormatted(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     string
	}{
		{"free plan label", 0, "USD", "Gratis"},
		{"whole dollars", 1000, "USD", "$10"},
		{"euro symbol", 2500, "EUR", "€25"},
		{"cop uses dollar sign", 5000000, "COP", "$50000"},
		{"unknown currency falls back to code", 300, "GBP", "GBP3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMoney(tt.cents, tt.currency)
			if got := m.Formatted(); got != tt.want {
				t.Errorf("Formatted() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoneyEquals(t *testing.T) {
	a := NewMoney(1000, "USD")
	b := NewMoney(1000, "USD")
	c := NewMoney(1000, "EUR")
	d := NewMoney(2000, "USD")

	if !a.Equals(b) {
		t.Errorf("equal amounts and currencies should be equal")
	}
	if a.Equals(c) {
		t.Errorf("different currencies should not be equal")
	}
	if a.Equals(d) {
		t.Errorf("different amounts should not be equal")
	}
}

func TestMoneyPredicates(t *testing.T) {
	if !NewMoney(0, "USD").IsZero() {
		t.Errorf("zero amount should be zero")
	}
	if !NewMoney(1, "USD").IsPositive() {
		t.Errorf("positive amount should be positive")
	}
	if NewMoney(0, "USD").IsPositive() {
		t.Errorf("zero amount should not be positive")
	}
}
