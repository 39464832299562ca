package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIncidentRepository implements IncidentRepository using GORM
type GormIncidentRepository struct {
	db *gorm.DB
}

// NewGormIncidentRepository creates a new GormIncidentRepository
func NewGormIncidentRepository(db *gorm.DB) *GormIncidentRepository {
	return &GormIncidentRepository{db: db}
}

// FindForPeriod returns every incident of a period for a tenant
func (r *GormIncidentRepository) FindForPeriod(ctx context.Context, tenantID, periodID uuid.UUID) ([]payroll.Incident, error) {
	var incidentModels []models.IncidentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period_id = ?", tenantID, periodID).
		Order("created_at ASC").
		Find(&incidentModels).Error; err != nil {
		return nil, err
	}
	incidents := make([]payroll.Incident, len(incidentModels))
	for i, model := range incidentModels {
		incidents[i] = *model.ToDomain()
	}
	return incidents, nil
}

// FindForEmployee returns one employee's incidents within a period
func (r *GormIncidentRepository) FindForEmployee(ctx context.Context, tenantID, periodID, employeeID uuid.UUID) ([]payroll.Incident, error) {
	var incidentModels []models.IncidentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period_id = ? AND employee_id = ?", tenantID, periodID, employeeID).
		Order("created_at ASC").
		Find(&incidentModels).Error; err != nil {
		return nil, err
	}
	incidents := make([]payroll.Incident, len(incidentModels))
	for i, model := range incidentModels {
		incidents[i] = *model.ToDomain()
	}
	return incidents, nil
}

// Save creates or updates an incident for a tenant
func (r *GormIncidentRepository) Save(ctx context.Context, tenantID uuid.UUID, incident *payroll.Incident) error {
	var model models.IncidentModel
	model.FromDomain(tenantID, incident)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteForPeriod removes every incident of a period, e.g. when a period
// is reopened and recaptured
func (r *GormIncidentRepository) DeleteForPeriod(ctx context.Context, tenantID, periodID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.IncidentModel{}, "tenant_id = ? AND period_id = ?", tenantID, periodID).Error
}
