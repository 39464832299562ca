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

// GormEmployeeRepository implements EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindByIDForTenant finds an employee by ID for a specific tenant
func (r *GormEmployeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.Employee, error) {
	var model models.EmployeeModel
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

// FindByNumberForTenant finds an employee by employee number for a tenant
func (r *GormEmployeeRepository) FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, number string) (*payroll.Employee, error) {
	var model models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForTenant returns every active employee of a tenant
func (r *GormEmployeeRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]payroll.Employee, error) {
	var employeeModels []models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, payroll.EmployeeActive).
		Order("employee_number ASC").
		Find(&employeeModels).Error; err != nil {
		return nil, err
	}
	employees := make([]payroll.Employee, len(employeeModels))
	for i, model := range employeeModels {
		employees[i] = *model.ToDomain()
	}
	return employees, nil
}

// Save creates or updates an employee for a tenant
func (r *GormEmployeeRepository) Save(ctx context.Context, tenantID uuid.UUID, employee *payroll.Employee) error {
	var model models.EmployeeModel
	model.FromDomain(tenantID, employee)
	return r.db.WithContext(ctx).Save(&model).Error
}
