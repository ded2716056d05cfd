package mappers

import (
	"fmt"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
)

// TransactionMapper handles the conversion between domain entities and persistence models
type TransactionMapper interface {
	ToEntity(model *models.TransactionModel) (*billing.Transaction, error)
	ToModel(entity *billing.Transaction) (*models.TransactionModel, error)
	ToEntities(models []*models.TransactionModel) ([]*billing.Transaction, error)
}

type transactionMapper struct{}

// NewTransactionMapper creates a new transaction mapper
func NewTransactionMapper() TransactionMapper {
	return &transactionMapper{}
}

func (m *transactionMapper) ToEntity(model *models.TransactionModel) (*billing.Transaction, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.TransactionStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status: %s", model.Status)
	}

	gatewayResponse, err := unmarshalMetadata(model.GatewayResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal gateway response: %w", err)
	}

	metadata, err := unmarshalMetadata(model.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
	}

	amount := vo.NewMoney(model.AmountCents, model.Currency)

	entity, err := billing.ReconstructTransaction(
		model.ID,
		model.TransactionID,
		model.AccountID,
		model.PlanID,
		vo.TransactionType(model.TransactionType),
		status,
		amount,
		model.Gateway,
		gatewayResponse,
		model.ProcessedAt,
		metadata,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transaction entity: %w", err)
	}

	return entity, nil
}

func (m *transactionMapper) ToModel(entity *billing.Transaction) (*models.TransactionModel, error) {
	if entity == nil {
		return nil, nil
	}

	gatewayResponseJSON, err := marshalMetadata(entity.GatewayResponse())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway response: %w", err)
	}

	metadataJSON, err := marshalMetadata(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	model := &models.TransactionModel{
		ID:              entity.ID(),
		TransactionID:   entity.TransactionID(),
		AccountID:       entity.AccountID(),
		PlanID:          entity.PlanID(),
		TransactionType: entity.Type().String(),
		Status:          entity.Status().String(),
		AmountCents:     entity.Amount().AmountInCents(),
		Currency:        entity.Amount().Currency(),
		Gateway:         entity.Gateway(),
		GatewayResponse: gatewayResponseJSON,
		ProcessedAt:     entity.ProcessedAt(),
		Metadata:        metadataJSON,
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}

	return model, nil
}

func (m *transactionMapper) ToEntities(transactionModels []*models.TransactionModel) ([]*billing.Transaction, error) {
	entities := make([]*billing.Transaction, 0, len(transactionModels))

	for i, model := range transactionModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map transaction model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}
