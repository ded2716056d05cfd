package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
)

// SubscriptionMapper handles the conversion between domain entities and persistence models
type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*billing.Subscription, error)
	ToModel(entity *billing.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*billing.Subscription, error)
}

type subscriptionMapper struct{}

// NewSubscriptionMapper creates a new subscription mapper
func NewSubscriptionMapper() SubscriptionMapper {
	return &subscriptionMapper{}
}

func (m *subscriptionMapper) ToEntity(model *models.SubscriptionModel) (*billing.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	metadata, err := unmarshalMetadata(model.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription metadata: %w", err)
	}

	entity, err := billing.ReconstructSubscription(
		model.ID,
		model.AccountID,
		model.PlanID,
		vo.SubscriptionStatus(model.Status),
		model.PeriodStart,
		model.PeriodEnd,
		model.MessagesLimit,
		model.MessagesUsed,
		model.LastResetAt,
		metadata,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

func (m *subscriptionMapper) ToModel(entity *billing.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	metadataJSON, err := marshalMetadata(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscription metadata: %w", err)
	}

	model := &models.SubscriptionModel{
		ID:            entity.ID(),
		AccountID:     entity.AccountID(),
		PlanID:        entity.PlanID(),
		Status:        entity.Status().String(),
		PeriodStart:   entity.PeriodStart(),
		PeriodEnd:     entity.PeriodEnd(),
		MessagesLimit: entity.MessagesLimit(),
		MessagesUsed:  entity.MessagesUsed(),
		LastResetAt:   entity.LastResetAt(),
		Metadata:      metadataJSON,
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}

	return model, nil
}

func (m *subscriptionMapper) ToEntities(subscriptionModels []*models.SubscriptionModel) ([]*billing.Subscription, error) {
	entities := make([]*billing.Subscription, 0, len(subscriptionModels))

	for i, model := range subscriptionModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map subscription model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}

func unmarshalMetadata(raw datatypes.JSON) (map[string]interface{}, error) {
	metadata := make(map[string]interface{})
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, err
		}
	}
	return metadata, nil
}

func marshalMetadata(metadata map[string]interface{}) (datatypes.JSON, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return data, nil
}
