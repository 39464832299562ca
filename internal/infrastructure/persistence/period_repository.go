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

// GormPeriodRepository implements PeriodRepository using GORM
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a new GormPeriodRepository
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByIDForTenant finds a period by ID for a specific tenant
func (r *GormPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.Period, error) {
	var model models.PayrollPeriodModel
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

// FindAllForTenant returns a tenant's periods for a fiscal year
func (r *GormPeriodRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, year int) ([]payroll.Period, error) {
	var periodModels []models.PayrollPeriodModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND year = ?", tenantID, year).
		Order("frequency ASC, number ASC").
		Find(&periodModels).Error; err != nil {
		return nil, err
	}
	periods := make([]payroll.Period, len(periodModels))
	for i, model := range periodModels {
		periods[i] = *model.ToDomain()
	}
	return periods, nil
}

// Save creates or updates a period for a tenant
func (r *GormPeriodRepository) Save(ctx context.Context, tenantID uuid.UUID, period *payroll.Period) error {
	var model models.PayrollPeriodModel
	model.FromDomain(tenantID, period)
	return r.db.WithContext(ctx).Save(&model).Error
}
