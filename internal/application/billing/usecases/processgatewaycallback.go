package usecases

import (
	"context"
	"fmt"
	"strings"

	"mensajio/internal/shared/logger"
)

// ProcessGatewayCallbackCommand is one settlement delivery from the payment
// gateway, already signature-verified by the transport layer.
type ProcessGatewayCallbackCommand struct {
	TransactionID string
	Status        string
	Payload       map[string]interface{}
}

// ProcessGatewayCallbackUseCase routes a gateway callback to the success or
// failure path based on the normalized gateway status.
type ProcessGatewayCallbackUseCase struct {
	successUC *ProcessSuccessfulPaymentUseCase
	failureUC *ProcessFailedPaymentUseCase
	logger    logger.Interface
}

func NewProcessGatewayCallbackUseCase(
	successUC *ProcessSuccessfulPaymentUseCase,
	failureUC *ProcessFailedPaymentUseCase,
	logger logger.Interface,
) *ProcessGatewayCallbackUseCase {
	return &ProcessGatewayCallbackUseCase{
		successUC: successUC,
		failureUC: failureUC,
		logger:    logger,
	}
}

func (uc *ProcessGatewayCallbackUseCase) Execute(ctx context.Context, cmd ProcessGatewayCallbackCommand) error {
	if cmd.TransactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}

	switch strings.ToLower(cmd.Status) {
	case "approved", "success":
		return uc.successUC.Execute(ctx, ProcessSuccessfulPaymentCommand{
			TransactionID:   cmd.TransactionID,
			GatewayResponse: cmd.Payload,
		})
	case "declined", "failed", "error", "voided":
		reason := callbackFailureReason(cmd.Payload, cmd.Status)
		return uc.failureUC.Execute(ctx, ProcessFailedPaymentCommand{
			TransactionID: cmd.TransactionID,
			Reason:        reason,
		})
	default:
		// Intermediate gateway states leave the transaction pending; the
		// gateway will deliver a terminal status later.
		uc.logger.Infow("ignoring non-terminal gateway status",
			"transaction_id", cmd.TransactionID,
			"status", cmd.Status)
		return nil
	}
}

func callbackFailureReason(payload map[string]interface{}, status string) string {
	if payload != nil {
		if reason, ok := payload["status_message"].(string); ok && reason != "" {
			return reason
		}
	}
	return fmt.Sprintf("gateway reported %s", status)
}
