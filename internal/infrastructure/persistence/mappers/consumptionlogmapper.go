package mappers

import (
	"fmt"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
)

// ConsumptionLogMapper handles the conversion between domain entities and persistence models
type ConsumptionLogMapper interface {
	ToEntity(model *models.ConsumptionLogModel) (*billing.ConsumptionRecord, error)
	ToModel(entity *billing.ConsumptionRecord) (*models.ConsumptionLogModel, error)
	ToEntities(models []*models.ConsumptionLogModel) ([]*billing.ConsumptionRecord, error)
}

type consumptionLogMapper struct{}

// NewConsumptionLogMapper creates a new consumption log mapper
func NewConsumptionLogMapper() ConsumptionLogMapper {
	return &consumptionLogMapper{}
}

func (m *consumptionLogMapper) ToEntity(model *models.ConsumptionLogModel) (*billing.ConsumptionRecord, error) {
	if model == nil {
		return nil, nil
	}

	metadata, err := unmarshalMetadata(model.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal consumption metadata: %w", err)
	}

	entity, err := billing.ReconstructConsumptionRecord(
		model.ID,
		model.AccountID,
		model.MessageID,
		model.ConversationID,
		vo.MessageKind(model.MessageKind),
		vo.ConsumptionSource(model.Source),
		model.ConsumptionDate,
		model.RemainingAfter,
		metadata,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct consumption record: %w", err)
	}

	return entity, nil
}

func (m *consumptionLogMapper) ToModel(entity *billing.ConsumptionRecord) (*models.ConsumptionLogModel, error) {
	if entity == nil {
		return nil, nil
	}

	metadataJSON, err := marshalMetadata(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal consumption metadata: %w", err)
	}

	model := &models.ConsumptionLogModel{
		ID:              entity.ID(),
		AccountID:       entity.AccountID(),
		MessageID:       entity.MessageID(),
		ConversationID:  entity.ConversationID(),
		MessageKind:     entity.MessageKind().String(),
		Source:          entity.Source().String(),
		ConsumptionDate: entity.ConsumptionDate(),
		RemainingAfter:  entity.RemainingAfter(),
		Metadata:        metadataJSON,
		CreatedAt:       entity.CreatedAt(),
	}

	return model, nil
}

func (m *consumptionLogMapper) ToEntities(logModels []*models.ConsumptionLogModel) ([]*billing.ConsumptionRecord, error) {
	entities := make([]*billing.ConsumptionRecord, 0, len(logModels))

	for i, model := range logModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map consumption model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}
