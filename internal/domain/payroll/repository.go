package payroll

import (
	"context"

	"github.com/google/uuid"
)

// ConceptRepository persists the tenant concept catalogs.
type ConceptRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Concept, error)
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*Concept, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Concept, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Concept, error)
	Save(ctx context.Context, concept *Concept) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// EmployeeRepository provides the employee inputs the engine reads. Full
// HR lifecycle (contracts, documents, history) lives elsewhere.
type EmployeeRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error)
	FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, number string) (*Employee, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Employee, error)
	Save(ctx context.Context, tenantID uuid.UUID, employee *Employee) error
}

// PeriodRepository persists payroll periods.
type PeriodRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Period, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, year int) ([]Period, error)
	Save(ctx context.Context, tenantID uuid.UUID, period *Period) error
}

// IncidentRepository persists attendance/pay incidents per period.
type IncidentRepository interface {
	FindForPeriod(ctx context.Context, tenantID, periodID uuid.UUID) ([]Incident, error)
	FindForEmployee(ctx context.Context, tenantID, periodID, employeeID uuid.UUID) ([]Incident, error)
	Save(ctx context.Context, tenantID uuid.UUID, incident *Incident) error
	DeleteForPeriod(ctx context.Context, tenantID, periodID uuid.UUID) error
}

// PayrollRunRepository persists batch runs and their payslips.
type PayrollRunRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRun, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, periodID *uuid.UUID) ([]PayrollRun, error)
	Save(ctx context.Context, run *PayrollRun) error
	SavePayslips(ctx context.Context, payslips []*Payslip) error
	FindPayslipsForRun(ctx context.Context, tenantID, runID uuid.UUID) ([]Payslip, error)
	FindPayslipForEmployee(ctx context.Context, tenantID, runID, employeeID uuid.UUID) (*Payslip, error)
	NextRunNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error)
}
