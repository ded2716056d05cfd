package billing

import (
	"errors"
	"fmt"
)

var (
	ErrPlanNotFound            = errors.New("billing plan not found")
	ErrPlanInactive            = errors.New("billing plan inactive")
	ErrPlanNameExists          = errors.New("billing plan name already exists")
	ErrPlanInUse               = errors.New("billing plan is referenced and cannot be deleted")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrSubscriptionExists      = errors.New("account already has a subscription")
	ErrSubscriptionInactive    = errors.New("subscription inactive")
	ErrQuotaExceeded           = errors.New("message quota exceeded")
	ErrInvalidUpgrade          = errors.New("upgrade target must have a higher quota than the current plan")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrDuplicateSettlement     = errors.New("transaction already settled")
	ErrDuplicateConsumption    = errors.New("message already consumed quota")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
