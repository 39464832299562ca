package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("payroll.models")

// ConceptModel is the persistence model for a catalog concept.
type ConceptModel struct {
	ID               uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_concept_tenant_code,priority:1"`
	Code             string                   `gorm:"type:varchar(20);not null;uniqueIndex:idx_concept_tenant_code,priority:2"`
	Name             string                   `gorm:"type:varchar(200);not null"`
	Kind             payroll.ConceptKind      `gorm:"type:varchar(20);not null;index"`
	Category         payroll.ConceptCategory  `gorm:"type:varchar(30);not null"`
	Formula          string                   `gorm:"type:text;not null"`
	ExemptionFormula string                   `gorm:"type:text"`
	AnnualCapFormula string                   `gorm:"type:text"`
	TaxableForISR    bool                     `gorm:"not null;default:false"`
	IntegratesSBC    bool                     `gorm:"not null;default:false"`
	LegalBasis       string                   `gorm:"type:varchar(500)"`
	Active           bool                     `gorm:"not null;default:true;index"`
	SortOrder        int                      `gorm:"not null;default:0"`
	CreatedAt        time.Time                `gorm:"not null"`
	UpdatedAt        time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConceptModel) TableName() string {
	return "payroll_concepts"
}

// ToDomain converts the persistence model to a domain Concept.
func (m *ConceptModel) ToDomain() *payroll.Concept {
	return &payroll.Concept{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Code:             m.Code,
		Name:             m.Name,
		Kind:             m.Kind,
		Category:         m.Category,
		FormulaSrc:       m.Formula,
		ExemptionFormula: m.ExemptionFormula,
		AnnualCapFormula: m.AnnualCapFormula,
		TaxableForISR:    m.TaxableForISR,
		IntegratesSBC:    m.IntegratesSBC,
		LegalBasis:       m.LegalBasis,
		Active:           m.Active,
		SortOrder:        m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain Concept.
func (m *ConceptModel) FromDomain(c *payroll.Concept) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.Code = c.Code
	m.Name = c.Name
	m.Kind = c.Kind
	m.Category = c.Category
	m.Formula = c.FormulaSrc
	m.ExemptionFormula = c.ExemptionFormula
	m.AnnualCapFormula = c.AnnualCapFormula
	m.TaxableForISR = c.TaxableForISR
	m.IntegratesSBC = c.IntegratesSBC
	m.LegalBasis = c.LegalBasis
	m.Active = c.Active
	m.SortOrder = c.SortOrder
}

// ConceptModelFromDomain creates a new persistence model from a domain Concept.
func ConceptModelFromDomain(c *payroll.Concept) *ConceptModel {
	m := &ConceptModel{}
	m.FromDomain(c)
	return m
}

// EmployeeModel is the persistence model for the payroll view of an employee.
type EmployeeModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_employee_tenant_number,priority:1"`
	EmployeeNumber string                 `gorm:"type:varchar(20);not null;uniqueIndex:idx_employee_tenant_number,priority:2"`
	Name           string                 `gorm:"type:varchar(200);not null"`
	DailySalary    decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	SBCDaily       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	HireDate       time.Time              `gorm:"not null"`
	Status         payroll.EmployeeStatus `gorm:"type:varchar(20);not null;default:'activo';index"`
	CreatedAt      time.Time              `gorm:"not null"`
	UpdatedAt      time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "payroll_employees"
}

// ToDomain converts the persistence model to a domain Employee.
func (m *EmployeeModel) ToDomain() *payroll.Employee {
	return &payroll.Employee{
		ID:             m.ID,
		EmployeeNumber: m.EmployeeNumber,
		Name:           m.Name,
		DailySalary:    m.DailySalary,
		SBCDaily:       m.SBCDaily,
		HireDate:       m.HireDate,
		Status:         m.Status,
	}
}

// FromDomain populates the persistence model from a domain Employee.
func (m *EmployeeModel) FromDomain(tenantID uuid.UUID, e *payroll.Employee) {
	m.ID = e.ID
	m.TenantID = tenantID
	m.EmployeeNumber = e.EmployeeNumber
	m.Name = e.Name
	m.DailySalary = e.DailySalary
	m.SBCDaily = e.SBCDaily
	m.HireDate = e.HireDate
	m.Status = e.Status
}

// PayrollPeriodModel is the persistence model for a payroll period.
type PayrollPeriodModel struct {
	ID         uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_period_tenant_key,priority:1"`
	Frequency  payroll.PayFrequency `gorm:"type:varchar(20);not null;uniqueIndex:idx_period_tenant_key,priority:2"`
	Year       int                  `gorm:"not null;uniqueIndex:idx_period_tenant_key,priority:3;index"`
	Month      int                  `gorm:"not null"`
	Number     int                  `gorm:"not null;uniqueIndex:idx_period_tenant_key,priority:4"`
	StartDate  time.Time            `gorm:"not null"`
	EndDate    time.Time            `gorm:"not null"`
	PeriodDays int                  `gorm:"not null"`
	WorkedDays int                  `gorm:"not null"`
	CreatedAt  time.Time            `gorm:"not null"`
	UpdatedAt  time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayrollPeriodModel) TableName() string {
	return "payroll_periods"
}

// ToDomain converts the persistence model to a domain Period.
func (m *PayrollPeriodModel) ToDomain() *payroll.Period {
	return &payroll.Period{
		ID:         m.ID,
		Frequency:  m.Frequency,
		Year:       m.Year,
		Month:      m.Month,
		Number:     m.Number,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		PeriodDays: m.PeriodDays,
		WorkedDays: m.WorkedDays,
	}
}

// FromDomain populates the persistence model from a domain Period.
func (m *PayrollPeriodModel) FromDomain(tenantID uuid.UUID, p *payroll.Period) {
	m.ID = p.ID
	m.TenantID = tenantID
	m.Frequency = p.Frequency
	m.Year = p.Year
	m.Month = p.Month
	m.Number = p.Number
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.PeriodDays = p.PeriodDays
	m.WorkedDays = p.WorkedDays
}

// IncidentModel is the persistence model for an attendance/pay incident.
type IncidentModel struct {
	ID         uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID            `gorm:"type:uuid;not null;index"`
	PeriodID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type       payroll.IncidentType `gorm:"type:varchar(30);not null"`
	Quantity   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	DataJSON   string               `gorm:"column:data;type:jsonb"`
	CreatedAt  time.Time            `gorm:"not null"`
	UpdatedAt  time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IncidentModel) TableName() string {
	return "payroll_incidents"
}

// ToDomain converts the persistence model to a domain Incident.
func (m *IncidentModel) ToDomain() *payroll.Incident {
	incident := &payroll.Incident{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		PeriodID:   m.PeriodID,
		Type:       m.Type,
		Quantity:   m.Quantity,
	}

	if m.DataJSON != "" && m.DataJSON != "null" {
		var data payroll.IncidentData
		if err := json.Unmarshal([]byte(m.DataJSON), &data); err != nil {
			modelLogger.Warn("failed to parse incident data JSON",
				zap.String("incident_id", m.ID.String()),
				zap.Error(err))
		} else {
			incident.Data = &data
		}
	}

	return incident
}

// FromDomain populates the persistence model from a domain Incident.
func (m *IncidentModel) FromDomain(tenantID uuid.UUID, i *payroll.Incident) {
	m.ID = i.ID
	m.TenantID = tenantID
	m.EmployeeID = i.EmployeeID
	m.PeriodID = i.PeriodID
	m.Type = i.Type
	m.Quantity = i.Quantity

	if i.Data != nil {
		if jsonBytes, err := json.Marshal(i.Data); err == nil {
			m.DataJSON = string(jsonBytes)
		}
	} else {
		m.DataJSON = ""
	}
}

// PayrollRunModel is the persistence model for the PayrollRun aggregate root.
type PayrollRunModel struct {
	AggregateModel
	// TenantID lives on the model, not the embedded base, so it can join
	// the composite unique index: run numbers repeat across tenants.
	TenantID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_run_tenant_number,priority:1"`
	RunNumber       string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_run_tenant_number,priority:2"`
	PeriodID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status          payroll.RunStatus `gorm:"type:varchar(30);not null;default:'pendiente';index"`
	TotalEmployees  int               `gorm:"not null;default:0"`
	Succeeded       int               `gorm:"not null;default:0"`
	Failed          int               `gorm:"not null;default:0"`
	TotalEarnings   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDeductions decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TotalNetPay     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ErrorsJSON      string            `gorm:"column:errors;type:jsonb;default:'[]'"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// TableName returns the table name for GORM
func (PayrollRunModel) TableName() string {
	return "payroll_runs"
}

// ToDomain converts the persistence model to a domain PayrollRun.
func (m *PayrollRunModel) ToDomain() *payroll.PayrollRun {
	run := &payroll.PayrollRun{
		RunNumber:       m.RunNumber,
		PeriodID:        m.PeriodID,
		Status:          m.Status,
		TotalEmployees:  m.TotalEmployees,
		Succeeded:       m.Succeeded,
		Failed:          m.Failed,
		TotalEarnings:   m.TotalEarnings,
		TotalDeductions: m.TotalDeductions,
		TotalNetPay:     m.TotalNetPay,
		Errors:          make([]payroll.RunError, 0),
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
	}
	m.PopulateAggregateRoot(&run.BaseAggregateRoot)
	run.TenantID = m.TenantID

	if m.ErrorsJSON != "" && m.ErrorsJSON != "[]" {
		var runErrors []payroll.RunError
		if err := json.Unmarshal([]byte(m.ErrorsJSON), &runErrors); err != nil {
			modelLogger.Warn("failed to parse run errors JSON",
				zap.String("run_number", m.RunNumber),
				zap.Error(err))
		} else {
			run.Errors = runErrors
		}
	}

	return run
}

// FromDomain populates the persistence model from a domain PayrollRun.
func (m *PayrollRunModel) FromDomain(r *payroll.PayrollRun) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.TenantID = r.TenantID
	m.RunNumber = r.RunNumber
	m.PeriodID = r.PeriodID
	m.Status = r.Status
	m.TotalEmployees = r.TotalEmployees
	m.Succeeded = r.Succeeded
	m.Failed = r.Failed
	m.TotalEarnings = r.TotalEarnings
	m.TotalDeductions = r.TotalDeductions
	m.TotalNetPay = r.TotalNetPay
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt

	if len(r.Errors) > 0 {
		if jsonBytes, err := json.Marshal(r.Errors); err == nil {
			m.ErrorsJSON = string(jsonBytes)
		} else {
			m.ErrorsJSON = "[]"
		}
	} else {
		m.ErrorsJSON = "[]"
	}
}

// PayrollRunModelFromDomain creates a new persistence model from a domain PayrollRun.
func PayrollRunModelFromDomain(r *payroll.PayrollRun) *PayrollRunModel {
	m := &PayrollRunModel{}
	m.FromDomain(r)
	return m
}

// PayslipModel is the persistence model for the Payslip aggregate root.
// Line detail and the audit trail are stored as documents; the totals are
// denormalized columns for reporting.
type PayslipModel struct {
	TenantAggregateModel
	RunID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payslip_run_employee,priority:1"`
	EmployeeID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payslip_run_employee,priority:2"`
	PeriodID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EarningsJSON       string          `gorm:"column:earnings;type:jsonb;default:'[]'"`
	DeductionsJSON     string          `gorm:"column:deductions;type:jsonb;default:'[]'"`
	OtherPaymentsJSON  string          `gorm:"column:other_payments;type:jsonb;default:'[]'"`
	TotalEarnings      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalDeductions    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalOtherPayments decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxableBase        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetPay             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TrailJSON          string          `gorm:"column:trail;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (PayslipModel) TableName() string {
	return "payroll_payslips"
}

// ToDomain converts the persistence model to a domain Payslip.
func (m *PayslipModel) ToDomain() *payroll.Payslip {
	slip := &payroll.Payslip{
		RunID:              m.RunID,
		EmployeeID:         m.EmployeeID,
		PeriodID:           m.PeriodID,
		Earnings:           make([]payroll.EarningLine, 0),
		Deductions:         make([]payroll.DeductionLine, 0),
		OtherPayments:      make([]payroll.OtherPaymentLine, 0),
		TotalEarnings:      m.TotalEarnings,
		TotalDeductions:    m.TotalDeductions,
		TotalOtherPayments: m.TotalOtherPayments,
		TaxableBase:        m.TaxableBase,
		NetPay:             m.NetPay,
		Trail:              make([]payroll.TrailEntry, 0),
	}
	m.PopulateTenantAggregateRoot(&slip.TenantAggregateRoot)

	unmarshalLines(m.EarningsJSON, &slip.Earnings, "earnings", m.ID)
	unmarshalLines(m.DeductionsJSON, &slip.Deductions, "deductions", m.ID)
	unmarshalLines(m.OtherPaymentsJSON, &slip.OtherPayments, "other_payments", m.ID)
	unmarshalLines(m.TrailJSON, &slip.Trail, "trail", m.ID)

	return slip
}

// unmarshalLines decodes one jsonb document column of a payslip
func unmarshalLines(raw string, dst any, column string, payslipID uuid.UUID) {
	if raw == "" || raw == "[]" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		modelLogger.Warn("failed to parse payslip JSON column",
			zap.String("payslip_id", payslipID.String()),
			zap.String("column", column),
			zap.Error(err))
	}
}

// FromDomain populates the persistence model from a domain Payslip.
func (m *PayslipModel) FromDomain(p *payroll.Payslip) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.RunID = p.RunID
	m.EmployeeID = p.EmployeeID
	m.PeriodID = p.PeriodID
	m.TotalEarnings = p.TotalEarnings
	m.TotalDeductions = p.TotalDeductions
	m.TotalOtherPayments = p.TotalOtherPayments
	m.TaxableBase = p.TaxableBase
	m.NetPay = p.NetPay
	m.EarningsJSON = marshalLines(p.Earnings)
	m.DeductionsJSON = marshalLines(p.Deductions)
	m.OtherPaymentsJSON = marshalLines(p.OtherPayments)
	m.TrailJSON = marshalLines(p.Trail)
}

// marshalLines encodes one document column of a payslip
func marshalLines(src any) string {
	jsonBytes, err := json.Marshal(src)
	if err != nil || string(jsonBytes) == "null" {
		return "[]"
	}
	return string(jsonBytes)
}

// PayslipModelFromDomain creates a new persistence model from a domain Payslip.
func PayslipModelFromDomain(p *payroll.Payslip) *PayslipModel {
	m := &PayslipModel{}
	m.FromDomain(p)
	return m
}
