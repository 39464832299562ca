package payroll

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarningLine is one percepción of the payslip. Gravado plus Exento
// always equals Monto; Exento is zero when the concept declares no
// exemption limit.
type EarningLine struct {
	Code    string          `json:"codigo"`
	Name    string          `json:"nombre"`
	Amount  decimal.Decimal `json:"monto"`
	Taxable decimal.Decimal `json:"gravado"`
	Exempt  decimal.Decimal `json:"exento"`
}

// DeductionLine is one deducción of the payslip.
type DeductionLine struct {
	Code   string          `json:"codigo"`
	Name   string          `json:"nombre"`
	Amount decimal.Decimal `json:"monto"`
}

// OtherPaymentLine is one supplementary payment (e.g. subsidio al empleo
// entregado).
type OtherPaymentLine struct {
	Code   string          `json:"codigo"`
	Name   string          `json:"nombre"`
	Amount decimal.Decimal `json:"monto"`
}

// Result is the outcome of one (employee, period) calculation. It is
// created once by the calculator and never mutated afterwards;
// persistence and reporting are external collaborators.
type Result struct {
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
