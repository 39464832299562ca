package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"github.com/hrmax/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConceptRepository implements ConceptRepository using GORM
type GormConceptRepository struct {
	db *gorm.DB
}

// NewGormConceptRepository creates a new GormConceptRepository
func NewGormConceptRepository(db *gorm.DB) *GormConceptRepository {
	return &GormConceptRepository{db: db}
}

// FindByIDForTenant finds a concept by ID for a specific tenant
func (r *GormConceptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.Concept, error) {
	var model models.ConceptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCodeForTenant finds a concept by catalog code for a tenant
func (r *GormConceptRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*payroll.Concept, error) {
	var model models.ConceptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns the tenant's whole catalog, active or not
func (r *GormConceptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error) {
	var conceptModels []models.ConceptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, code ASC").
		Find(&conceptModels).Error; err != nil {
		return nil, err
	}
	concepts := make([]payroll.Concept, len(conceptModels))
	for i, model := range conceptModels {
		concepts[i] = *model.ToDomain()
	}
	return concepts, nil
}

// FindActiveForTenant returns the active catalog in resolver order
func (r *GormConceptRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error) {
	var conceptModels []models.ConceptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("sort_order ASC, code ASC").
		Find(&conceptModels).Error; err != nil {
		return nil, err
	}
	concepts := make([]payroll.Concept, len(conceptModels))
	for i, model := range conceptModels {
		concepts[i] = *model.ToDomain()
	}
	return concepts, nil
}

// Save creates or updates a concept
func (r *GormConceptRepository) Save(ctx context.Context, concept *payroll.Concept) error {
	model := models.ConceptModelFromDomain(concept)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a concept for a tenant
func (r *GormConceptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ConceptModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
