// Package notification bridges billing lifecycle events to outbound channels.
package notification

import (
	"context"
	"fmt"

	"mensajio/internal/shared/logger"
)

// AccountDirectory resolves account contact information.
// Billing only knows account ids; the owning system supplies addresses.
type AccountDirectory interface {
	EmailForAccount(ctx context.Context, accountID uint) (string, error)
}

// StaticDirectory routes every account to one configured address. Worker
// deployments without an account service use it to land billing alerts in an
// operations mailbox.
type StaticDirectory struct {
	address string
}

func NewStaticDirectory(address string) *StaticDirectory {
	return &StaticDirectory{address: address}
}

func (d *StaticDirectory) EmailForAccount(ctx context.Context, accountID uint) (string, error) {
	if d.address == "" {
		return "", fmt.Errorf("no notification address configured")
	}
	return d.address, nil
}

// EmailSender is the subset of the SMTP service used for billing notifications.
type EmailSender interface {
	SendNearLimitEmail(to string, usagePercent float64, remaining int) error
	SendLimitExceededEmail(to string) error
	SendSuspendedEmail(to string) error
	SendPaymentSuccessEmail(to, transactionID, planName, formattedAmount string) error
	SendPaymentFailureEmail(to, transactionID, reason string) error
}

// EmailNotifier delivers usage and payment notifications over email.
// It implements the application layer UsageNotifier and PaymentNotifier interfaces.
type EmailNotifier struct {
	sender    EmailSender
	directory AccountDirectory
	logger    logger.Interface
}

func NewEmailNotifier(sender EmailSender, directory AccountDirectory, log logger.Interface) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		directory: directory,
		logger:    log,
	}
}

func (n *EmailNotifier) NotifyNearLimit(ctx context.Context, accountID uint, usagePercent float64, remaining int) error {
	to, err := n.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	if err := n.sender.SendNearLimitEmail(to, usagePercent, remaining); err != nil {
		return fmt.Errorf("failed to send near limit notification: %w", err)
	}

	n.logger.Infow("near limit notification sent",
		"account_id", accountID,
		"usage_percent", usagePercent,
		"remaining", remaining,
	)
	return nil
}

func (n *EmailNotifier) NotifyLimitExceeded(ctx context.Context, accountID uint) error {
	to, err := n.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	if err := n.sender.SendLimitExceededEmail(to); err != nil {
		return fmt.Errorf("failed to send limit exceeded notification: %w", err)
	}

	n.logger.Infow("limit exceeded notification sent", "account_id", accountID)
	return nil
}

func (n *EmailNotifier) NotifySuspended(ctx context.Context, accountID uint) error {
	to, err := n.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	if err := n.sender.SendSuspendedEmail(to); err != nil {
		return fmt.Errorf("failed to send suspension notification: %w", err)
	}

	n.logger.Infow("suspension notification sent", "account_id", accountID)
	return nil
}

func (n *EmailNotifier) NotifyPaymentSuccess(ctx context.Context, accountID uint, transactionID, planName, formattedAmount string) error {
	to, err := n.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	if err := n.sender.SendPaymentSuccessEmail(to, transactionID, planName, formattedAmount); err != nil {
		return fmt.Errorf("failed to send payment success notification: %w", err)
	}

	n.logger.Infow("payment success notification sent",
		"account_id", accountID,
		"transaction_id", transactionID,
	)
	return nil
}

func (n *EmailNotifier) NotifyPaymentFailure(ctx context.Context, accountID uint, transactionID, reason string) error {
	to, err := n.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	if err := n.sender.SendPaymentFailureEmail(to, transactionID, reason); err != nil {
		return fmt.Errorf("failed to send payment failure notification: %w", err)
	}

	n.logger.Infow("payment failure notification sent",
		"account_id", accountID,
		"transaction_id", transactionID,
	)
	return nil
}

func (n *EmailNotifier) resolve(ctx context.Context, accountID uint) (string, error) {
	to, err := n.directory.EmailForAccount(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve email for account %d: %w", accountID, err)
	}
	return to, nil
}
