package billing

import (
	"fmt"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
)

// FeatureAutoRenewal gates the monthly reset sweep: only subscriptions on a
// plan carrying this flag are renewed automatically.
const FeatureAutoRenewal = "auto_renewal"

var validCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"COP": true,
	"GBP": true,
	"CNY": true,
}

// Plan is a quota tier in the catalog. Plans are immutable at rest once
// referenced: price and feature edits never retroactively alter existing
// subscriptions, and a referenced plan cannot be deleted.
type Plan struct {
	id             uint
	name           string
	description    string
	messageLimit   int
	price          vo.Money
	active         bool
	features       map[string]bool
	paymentLinkURL string
	sortOrder      int
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

func NewPlan(name, description string, messageLimit int, price vo.Money) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("plan name too long (max 100 characters)")
	}
	if messageLimit <= 0 {
		return nil, fmt.Errorf("monthly message limit must be positive")
	}
	if price.AmountInCents() < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if !validCurrencies[price.Currency()] {
		return nil, fmt.Errorf("invalid currency code: %s", price.Currency())
	}

	now := time.Now().UTC()
	return &Plan{
		name:         name,
		description:  description,
		messageLimit: messageLimit,
		price:        price,
		active:       true,
		features:     make(map[string]bool),
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructPlan reconstructs a plan from persistence.
func ReconstructPlan(
	id uint,
	name, description string,
	messageLimit int,
	price vo.Money,
	active bool,
	features map[string]bool,
	paymentLinkURL string,
	sortOrder int,
	version int,
	createdAt, updatedAt time.Time,
) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if messageLimit <= 0 {
		return nil, fmt.Errorf("monthly message limit must be positive")
	}
	if features == nil {
		features = make(map[string]bool)
	}

	return &Plan{
		id:             id,
		name:           name,
		description:    description,
		messageLimit:   messageLimit,
		price:          price,
		active:         active,
		features:       features,
		paymentLinkURL: paymentLinkURL,
		sortOrder:      sortOrder,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (p *Plan) ID() uint {
	return p.id
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) Description() string {
	return p.description
}

// MessageLimit returns the monthly message quota granted by this plan.
func (p *Plan) MessageLimit() int {
	return p.messageLimit
}

func (p *Plan) Price() vo.Money {
	return p.price
}

func (p *Plan) IsActive() bool {
	return p.active
}

func (p *Plan) Features() map[string]bool {
	return p.features
}

func (p *Plan) PaymentLinkURL() string {
	return p.paymentLinkURL
}

func (p *Plan) SortOrder() int {
	return p.sortOrder
}

func (p *Plan) Version() int {
	return p.version
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the plan ID (only for persistence layer use)
func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) IsFree() bool {
	return p.price.IsZero()
}

func (p *Plan) IsPaid() bool {
	return p.price.IsPositive()
}

// FeatureEnabled reports whether the named feature flag is set.
func (p *Plan) FeatureEnabled(name string) bool {
	return p.features[name]
}

// AutoRenewable reports whether subscriptions on this plan are renewed by the
// monthly reset sweep.
func (p *Plan) AutoRenewable() bool {
	return p.FeatureEnabled(FeatureAutoRenewal)
}

// SetFeature sets a feature flag. Existing subscriptions keep their granted
// quota; feature edits only affect future evaluations.
func (p *Plan) SetFeature(name string, enabled bool) {
	p.features[name] = enabled
	p.touch()
}

// UpdatePrice changes the plan price for future transactions. Amounts already
// charged on open transactions are unaffected.
func (p *Plan) UpdatePrice(price vo.Money) error {
	if price.AmountInCents() < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if !validCurrencies[price.Currency()] {
		return fmt.Errorf("invalid currency code: %s", price.Currency())
	}
	p.price = price
	p.touch()
	return nil
}

func (p *Plan) UpdateDescription(description string) {
	p.description = description
	p.touch()
}

func (p *Plan) SetPaymentLinkURL(url string) {
	p.paymentLinkURL = url
	p.touch()
}

func (p *Plan) Activate() {
	if p.active {
		return
	}
	p.active = true
	p.touch()
}

func (p *Plan) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.touch()
}

func (p *Plan) touch() {
	p.updatedAt = time.Now().UTC()
	p.version++
}
