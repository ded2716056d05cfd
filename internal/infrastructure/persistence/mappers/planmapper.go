package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
)

// PlanMapper handles the conversion between domain entities and persistence models
type PlanMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.PlanModel) (*billing.Plan, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *billing.Plan) (*models.PlanModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.PlanModel) ([]*billing.Plan, error)
}

type planMapper struct{}

// NewPlanMapper creates a new plan mapper
func NewPlanMapper() PlanMapper {
	return &planMapper{}
}

func (m *planMapper) ToEntity(model *models.PlanModel) (*billing.Plan, error) {
	if model == nil {
		return nil, nil
	}

	features := make(map[string]bool)
	if len(model.Features) > 0 {
		if err := json.Unmarshal(model.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
		}
	}

	price := vo.NewMoney(model.PriceCents, model.Currency)

	entity, err := billing.ReconstructPlan(
		model.ID,
		model.Name,
		model.Description,
		model.MessageLimit,
		price,
		model.Active,
		features,
		model.PaymentLinkURL,
		model.SortOrder,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}

	return entity, nil
}

func (m *planMapper) ToModel(entity *billing.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	var featuresJSON datatypes.JSON
	if features := entity.Features(); len(features) > 0 {
		data, err := json.Marshal(features)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan features: %w", err)
		}
		featuresJSON = data
	}

	model := &models.PlanModel{
		ID:             entity.ID(),
		Name:           entity.Name(),
		Description:    entity.Description(),
		MessageLimit:   entity.MessageLimit(),
		PriceCents:     entity.Price().AmountInCents(),
		Currency:       entity.Price().Currency(),
		Active:         entity.IsActive(),
		Features:       featuresJSON,
		PaymentLinkURL: entity.PaymentLinkURL(),
		SortOrder:      entity.SortOrder(),
		Version:        entity.Version(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}

	return model, nil
}

func (m *planMapper) ToEntities(planModels []*models.PlanModel) ([]*billing.Plan, error) {
	entities := make([]*billing.Plan, 0, len(planModels))

	for i, model := range planModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map plan model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}
