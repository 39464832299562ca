package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"github.com/hrmax/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPayrollRunRepository implements PayrollRunRepository using GORM
type GormPayrollRunRepository struct {
	db *gorm.DB
}

// NewGormPayrollRunRepository creates a new GormPayrollRunRepository
func NewGormPayrollRunRepository(db *gorm.DB) *GormPayrollRunRepository {
	return &GormPayrollRunRepository{db: db}
}

// FindByIDForTenant finds a run by ID for a specific tenant
func (r *GormPayrollRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.PayrollRun, error) {
	var model models.PayrollRunModel
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

// FindAllForTenant returns the tenant's runs, newest first, optionally
// filtered by period
func (r *GormPayrollRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, periodID *uuid.UUID) ([]payroll.PayrollRun, error) {
	var runModels []models.PayrollRunModel
	query := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).
		Where("tenant_id = ?", tenantID)
	if periodID != nil {
		query = query.Where("period_id = ?", *periodID)
	}
	if err := query.Order("created_at DESC").Find(&runModels).Error; err != nil {
		return nil, err
	}
	runs := make([]payroll.PayrollRun, len(runModels))
	for i, model := range runModels {
		runs[i] = *model.ToDomain()
	}
	return runs, nil
}

// Save creates or updates a run. Terminal transitions bump the aggregate
// version, so updates past version 1 are guarded against concurrent
// writers.
func (r *GormPayrollRunRepository) Save(ctx context.Context, run *payroll.PayrollRun) error {
	model := models.PayrollRunModelFromDomain(run)
	if model.Version <= 1 {
		return r.db.WithContext(ctx).Save(model).Error
	}
	result := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).
			Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return r.db.WithContext(ctx).Create(model).Error
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SavePayslips persists a run's payslips in one transaction
func (r *GormPayrollRunRepository) SavePayslips(ctx context.Context, payslips []*payroll.Payslip) error {
	if len(payslips) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, slip := range payslips {
			model := models.PayslipModelFromDomain(slip)
			if err := tx.Save(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindPayslipsForRun returns every payslip of a run
func (r *GormPayrollRunRepository) FindPayslipsForRun(ctx context.Context, tenantID, runID uuid.UUID) ([]payroll.Payslip, error) {
	var slipModels []models.PayslipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND run_id = ?", tenantID, runID).
		Order("created_at ASC").
		Find(&slipModels).Error; err != nil {
		return nil, err
	}
	slips := make([]payroll.Payslip, len(slipModels))
	for i, model := range slipModels {
		slips[i] = *model.ToDomain()
	}
	return slips, nil
}

// FindPayslipForEmployee returns one employee's payslip inside a run
func (r *GormPayrollRunRepository) FindPayslipForEmployee(ctx context.Context, tenantID, runID, employeeID uuid.UUID) (*payroll.Payslip, error) {
	var model models.PayslipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND run_id = ? AND employee_id = ?", tenantID, runID, employeeID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// NextRunNumber generates the next run number for a tenant and fiscal year
func (r *GormPayrollRunRepository) NextRunNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).
		Where("tenant_id = ? AND run_number LIKE ?", tenantID, fmt.Sprintf("NOM-%d-%%", year)).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("NOM-%d-%03d", year, count+1), nil
}
