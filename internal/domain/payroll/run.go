package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RunStatus is the lifecycle state of a batch payroll run.
type RunStatus string

const (
	RunPending           RunStatus = "pendiente"
	RunProcessing        RunStatus = "procesando"
	RunCompleted         RunStatus = "completada"
	RunCompletedWithErrs RunStatus = "completada_con_errores"
	RunFailed            RunStatus = "fallida"
	RunCancelled         RunStatus = "cancelada"
)

// RunError records one employee whose calculation failed inside a batch.
// The batch itself carries on; per-employee isolation is the contract.
type RunError struct {
	EmployeeID uuid.UUID `json:"employeeId"`
	Kind       ErrorKind `json:"kind"`
	Concept    string    `json:"concept,omitempty"`
	Message    string    `json:"message"`
}

// PayrollRun is the aggregate root for one batch execution of the engine
// over a period. Totals are accumulated as payslips come in and frozen
// when the run completes.
type PayrollRun struct {
	shared.TenantAggregateRoot
	RunNumber string
	PeriodID  uuid.UUID
	Status    RunStatus

	TotalEmployees int
	Succeeded      int
	Failed         int

	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetPay     decimal.Decimal

	Errors      []RunError
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewPayrollRun creates a pending run for a tenant and period
func NewPayrollRun(tenantID, periodID uuid.UUID, runNumber string, totalEmployees int) *PayrollRun {
	return &PayrollRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RunNumber:           runNumber,
		PeriodID:            periodID,
		Status:              RunPending,
		TotalEmployees:      totalEmployees,
	}
}

// Start transitions the run to processing
func (r *PayrollRun) Start() error {
	if r.Status != RunPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Status = RunProcessing
	r.StartedAt = &now
	return nil
}

// RecordSuccess folds one successful payslip into the run totals
func (r *PayrollRun) RecordSuccess(result *Result) {
	r.Succeeded++
	r.TotalEarnings = r.TotalEarnings.Add(result.TotalEarnings)
	r.TotalDeductions = r.TotalDeductions.Add(result.TotalDeductions)
	r.TotalNetPay = r.TotalNetPay.Add(result.NetPay)
}

// RecordFailure registers one failed employee without aborting the run
func (r *PayrollRun) RecordFailure(employeeID uuid.UUID, err error) {
	r.Failed++
	runErr := RunError{EmployeeID: employeeID, Message: err.Error()}
	if calcErr, ok := err.(*CalculationError); ok {
		runErr.Kind = calcErr.Kind
		runErr.Concept = calcErr.Concept
	}
	r.Errors = append(r.Errors, runErr)
}

// Complete closes the run, deriving the final status from the error count
func (r *PayrollRun) Complete() error {
	if r.Status != RunProcessing {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.CompletedAt = &now
	switch {
	case r.Succeeded == 0 && r.Failed > 0:
		r.Status = RunFailed
	case r.Failed > 0:
		r.Status = RunCompletedWithErrs
	default:
		r.Status = RunCompleted
	}
	r.IncrementVersion()
	return nil
}

// Cancel aborts a run that has not completed yet
func (r *PayrollRun) Cancel() error {
	if r.Status != RunPending && r.Status != RunProcessing {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Status = RunCancelled
	r.CompletedAt = &now
	r.IncrementVersion()
	return nil
}

// IsTerminal reports whether the run reached a final state
func (r *PayrollRun) IsTerminal() bool {
	switch r.Status {
	case RunCompleted, RunCompletedWithErrs, RunFailed, RunCancelled:
		return true
	}
	return false
}

// Payslip is the persisted outcome of one employee's calculation inside a
// run. Line detail and the audit trail are stored as documents; reporting
// reads the denormalized totals.
type Payslip struct {
	shared.TenantAggregateRoot
	RunID      uuid.UUID
	EmployeeID uuid.UUID
	PeriodID   uuid.UUID

	Earnings      []EarningLine
	Deductions    []DeductionLine
	OtherPayments []OtherPaymentLine

	TotalEarnings      decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalOtherPayments decimal.Decimal
	TaxableBase        decimal.Decimal
	NetPay             decimal.Decimal

	Trail []TrailEntry
}

// NewPayslip builds a payslip from an engine result
func NewPayslip(tenantID, runID uuid.UUID, result *Result) *Payslip {
	return &Payslip{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RunID:               runID,
		EmployeeID:          result.EmployeeID,
		PeriodID:            result.PeriodID,
		Earnings:            result.Earnings,
		Deductions:          result.Deductions,
		OtherPayments:       result.OtherPayments,
		TotalEarnings:       result.TotalEarnings,
		TotalDeductions:     result.TotalDeductions,
		TotalOtherPayments:  result.TotalOtherPayments,
		TaxableBase:         result.TaxableBase,
		NetPay:              result.NetPay,
		Trail:               result.Trail,
	}
}
