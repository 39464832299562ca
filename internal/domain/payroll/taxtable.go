package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ISRBracket is one row of the progressive income-tax tariff (LISR art. 96).
// An empty UpperLimit marks the open-ended top bracket.
type ISRBracket struct {
	LowerLimit decimal.Decimal
	UpperLimit decimal.Decimal // zero value means no upper bound
	FixedQuota decimal.Decimal
	Rate       decimal.Decimal // marginal rate over the excess, e.g. 0.1088
}

// SubsidyBracket is one row of the employment-subsidy table. The credit is
// monotonically non-increasing as income grows; incomes above the last
// bracket receive no subsidy.
type SubsidyBracket struct {
	UpperLimit decimal.Decimal
	Credit     decimal.Decimal
}

// IMSSRamo identifies a worker-contribution branch of the social-security
// quota (LSS).
type IMSSRamo string

const (
	RamoEnfermedadMaternidad IMSSRamo = "enfermedad_maternidad"
	RamoInvalidezVida        IMSSRamo = "invalidez_vida"
	RamoCesantiaVejez        IMSSRamo = "cesantia_vejez"
)

// IMSSWorkerRates holds the worker-side quota rates for the three ramos
// withheld from net pay. The Enfermedad y Maternidad rate applies only to
// the portion of the SBC exceeding three daily UMA; the other two apply to
// the full SBC for the period.
type IMSSWorkerRates struct {
	ExcedenteTresUMA decimal.Decimal // Enfermedad y Maternidad, over 3×UMA
	InvalidezVida    decimal.Decimal
	CesantiaVejez    decimal.Decimal
}

// FiscalYear bundles every UMA-indexed legal parameter for one year.
// Brackets and rates are data, not code: supporting a new fiscal year only
// means registering a new FiscalYear value.
type FiscalYear struct {
	Year        int
	UMADaily    decimal.Decimal
	UMAMonthly  decimal.Decimal
	UMAAnnual   decimal.Decimal
	MinimumWage decimal.Decimal

	// ISRTariff and SubsidyTable are keyed by pay frequency; amounts in
	// the official tables are already prorated per frequency.
	ISRTariff    map[PayFrequency][]ISRBracket
	SubsidyTable map[PayFrequency][]SubsidyBracket

	IMSSRates IMSSWorkerRates

	// SBCCapUMA is the contribution ceiling in daily UMA units (LSS art. 28).
	SBCCapUMA decimal.Decimal
}

// ISRTax locates the tariff bracket containing baseGravable and returns
// fixed quota + (base − bracket floor) × marginal rate. The result is not
// rounded; final rounding happens once at the end of formula evaluation.
func (fy *FiscalYear) ISRTax(baseGravable decimal.Decimal, freq PayFrequency) (decimal.Decimal, error) {
	if baseGravable.IsNegative() {
		return decimal.Zero, NewInvalidTaxBaseError(
			fmt.Sprintf("ISR base cannot be negative, got %s", baseGravable.StringFixed(2)))
	}
	tariff, ok := fy.ISRTariff[freq]
	if !ok {
		return decimal.Zero, NewInvalidTaxBaseError(
			fmt.Sprintf("no ISR tariff for frequency %q in fiscal year %d", freq, fy.Year))
	}
	// Bases under the first bracket floor (a fully exempt payroll) owe nothing.
	if len(tariff) > 0 && baseGravable.LessThan(tariff[0].LowerLimit) {
		return decimal.Zero, nil
	}
	for _, b := range tariff {
		if baseGravable.GreaterThanOrEqual(b.LowerLimit) &&
			(b.UpperLimit.IsZero() || baseGravable.LessThanOrEqual(b.UpperLimit)) {
			excess := baseGravable.Sub(b.LowerLimit)
			return b.FixedQuota.Add(excess.Mul(b.Rate)), nil
		}
	}
	return decimal.Zero, NewInvalidTaxBaseError(
		fmt.Sprintf("ISR base %s falls outside the %d tariff", baseGravable.StringFixed(2), fy.Year))
}

// EmploymentSubsidy returns the subsidy credit for the given taxable base.
// Bases above the last bracket ceiling earn no subsidy.
func (fy *FiscalYear) EmploymentSubsidy(baseGravable decimal.Decimal, freq PayFrequency) (decimal.Decimal, error) {
	if baseGravable.IsNegative() {
		return decimal.Zero, NewInvalidTaxBaseError(
			fmt.Sprintf("subsidy base cannot be negative, got %s", baseGravable.StringFixed(2)))
	}
	table, ok := fy.SubsidyTable[freq]
	if !ok {
		return decimal.Zero, NewInvalidTaxBaseError(
			fmt.Sprintf("no subsidy table for frequency %q in fiscal year %d", freq, fy.Year))
	}
	for _, b := range table {
		if baseGravable.LessThanOrEqual(b.UpperLimit) {
			return b.Credit, nil
		}
	}
	return decimal.Zero, nil
}

// IMSSWorkerQuota computes the worker's contribution for one ramo over the
// period. The SBC is capped at the statutory ceiling before applying rates.
// The employer's share is out of scope for net pay.
func (fy *FiscalYear) IMSSWorkerQuota(sbcDaily decimal.Decimal, periodDays decimal.Decimal, ramo IMSSRamo) (decimal.Decimal, error) {
	if sbcDaily.IsNegative() {
		return decimal.Zero, NewInvalidTaxBaseError(
			fmt.Sprintf("SBC cannot be negative, got %s", sbcDaily.StringFixed(2)))
	}
	if periodDays.IsNegative() {
		return decimal.Zero, NewInvalidTaxBaseError("period days cannot be negative")
	}

	cap := fy.UMADaily.Mul(fy.SBCCapUMA)
	if sbcDaily.GreaterThan(cap) {
		sbcDaily = cap
	}

	switch ramo {
	case RamoEnfermedadMaternidad:
		threshold := fy.UMADaily.Mul(decimal.NewFromInt(3))
		if sbcDaily.LessThanOrEqual(threshold) {
			return decimal.Zero, nil
		}
		excess := sbcDaily.Sub(threshold)
		return excess.Mul(fy.IMSSRates.ExcedenteTresUMA).Mul(periodDays), nil
	case RamoInvalidezVida:
		return sbcDaily.Mul(fy.IMSSRates.InvalidezVida).Mul(periodDays), nil
	case RamoCesantiaVejez:
		return sbcDaily.Mul(fy.IMSSRates.CesantiaVejez).Mul(periodDays), nil
	}
	return decimal.Zero, NewInvalidTaxBaseError(fmt.Sprintf("unknown IMSS ramo %q", ramo))
}

// IMSSWorkerTotal sums the three worker ramos for the period
func (fy *FiscalYear) IMSSWorkerTotal(sbcDaily decimal.Decimal, periodDays decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ramo := range []IMSSRamo{RamoEnfermedadMaternidad, RamoInvalidezVida, RamoCesantiaVejez} {
		quota, err := fy.IMSSWorkerQuota(sbcDaily, periodDays, ramo)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(quota)
	}
	return total, nil
}
