package valueobjects

type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeUpgrade  TransactionType = "upgrade"
)

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeRefund, TransactionTypeUpgrade:
		return true
	default:
		return false
	}
}
