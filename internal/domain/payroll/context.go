package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Variable names exposed to catalog formulas. Lookup is case-sensitive
// and exact.
const (
	VarDailySalary   = "SALARIO_DIARIO"
	VarHourlySalary  = "SALARIO_HORA"
	VarPeriodSalary  = "SALARIO_PERIODO"
	VarWorkedDays    = "DIAS_LABORALES"
	VarPeriodDays    = "DIAS_PERIODO"
	VarUMADaily      = "UMA_DIARIA"
	VarUMAMonthly    = "UMA_MENSUAL"
	VarUMAAnnual     = "UMA_ANUAL"
	VarMinimumWage   = "SALARIO_MINIMO"
	VarSBCDaily      = "SBC_DIARIO"
	VarSBCPeriod     = "SBC_PERIODO"
	VarSeniority     = "ANIOS_ANTIGUEDAD"
	VarDoubleHours   = "HORAS_EXTRA_DOBLES"
	VarTripleHours   = "HORAS_EXTRA_TRIPLES"
	VarAbsentDays    = "DIAS_AUSENTES"
	VarSundaysWorked = "DOMINGOS_TRABAJADOS"
	VarVoucherAmount = "MONTO_VALES_DESPENSA"
	VarDisabilityDays = "DIAS_INCAPACIDAD"
	VarUnpaidDays     = "DIAS_PERMISO_SIN_GOCE"
	VarVacationDays   = "DIAS_VACACIONES"
	VarHolidaysWorked = "DIAS_FESTIVOS_LABORADOS"

	// Derived variables folded in by the orchestrator after the earnings
	// phase. Earnings formulas must not reference them.
	VarTaxableBase    = "BASE_GRAVABLE"
	VarTotalEarnings  = "TOTAL_PERCEPCIONES"

	// VarLineAmount is only visible to exemption-limit formulas and holds
	// the monto of the line being split into gravado/exento.
	VarLineAmount = "MONTO"
)

// hoursPerWorkday is the statutory standard shift used to derive the
// hourly salary from the daily salary.
var hoursPerWorkday = decimal.NewFromInt(8)

// Context is an immutable mapping from variable name to numeric value.
// It is built fresh per calculation and extended by copy, never mutated
// in place, so concurrent calculations can safely share ancestors.
type Context struct {
	vars map[string]decimal.Decimal
}

// NewContext creates an empty variable context
func NewContext() *Context {
	return &Context{vars: map[string]decimal.Decimal{}}
}

// Get returns the value of a variable and whether it is defined
func (c *Context) Get(name string) (decimal.Decimal, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// With returns a new context extended with one variable. The receiver is
// left untouched.
func (c *Context) With(name string, value decimal.Decimal) *Context {
	next := make(map[string]decimal.Decimal, len(c.vars)+1)
	for k, v := range c.vars {
		next[k] = v
	}
	next[name] = value
	return &Context{vars: next}
}

// WithAll returns a new context extended with every entry of vars
func (c *Context) WithAll(vars map[string]decimal.Decimal) *Context {
	next := make(map[string]decimal.Decimal, len(c.vars)+len(vars))
	for k, v := range c.vars {
		next[k] = v
	}
	for k, v := range vars {
		next[k] = v
	}
	return &Context{vars: next}
}

// Names returns the defined variable names in sorted order
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.vars))
	for k := range c.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined variables
func (c *Context) Len() int {
	return len(c.vars)
}

// BuildContext turns an Employee and a Period into the initial variable
// context, using the fiscal-year data matching the period. It is a pure
// function of its inputs.
//
// Fails with a MISSING_INPUT error when the daily salary, the SBC, or the
// period day counts are absent or non-positive.
func BuildContext(employee Employee, period Period, fy *FiscalYear) (*Context, error) {
	if !employee.DailySalary.IsPositive() {
		return nil, NewMissingInputError("salarioDiario")
	}
	if !employee.SBCDaily.IsPositive() {
		return nil, NewMissingInputError("salarioDiarioIntegrado")
	}
	if period.PeriodDays <= 0 {
		return nil, NewMissingInputError("diasPeriodo")
	}
	if period.WorkedDays <= 0 {
		return nil, NewMissingInputError("diasLaborales")
	}
	if !period.Frequency.IsValid() {
		return nil, NewMissingInputError("frecuencia")
	}
	if fy == nil {
		return nil, NewMissingInputError("anio")
	}

	workedDays := decimal.NewFromInt(int64(period.WorkedDays))
	periodDays := decimal.NewFromInt(int64(period.PeriodDays))
	seniority := decimal.NewFromInt(int64(employee.SeniorityYears(period.EndDate)))

	vars := map[string]decimal.Decimal{
		VarDailySalary:  employee.DailySalary,
		VarHourlySalary: employee.DailySalary.Div(hoursPerWorkday),
		VarPeriodSalary: employee.DailySalary.Mul(workedDays),
		VarWorkedDays:   workedDays,
		VarPeriodDays:   periodDays,
		VarUMADaily:     fy.UMADaily,
		VarUMAMonthly:   fy.UMAMonthly,
		VarUMAAnnual:    fy.UMAAnnual,
		VarMinimumWage:  fy.MinimumWage,
		VarSBCDaily:     employee.SBCDaily,
		VarSBCPeriod:    employee.SBCDaily.Mul(periodDays),
		VarSeniority:    seniority,

		// Incident variables default to zero so catalog formulas resolve
		// even when the period has no incidents.
		VarDoubleHours:    decimal.Zero,
		VarTripleHours:    decimal.Zero,
		VarAbsentDays:     decimal.Zero,
		VarSundaysWorked:  decimal.Zero,
		VarVoucherAmount:  decimal.Zero,
		VarDisabilityDays: decimal.Zero,
		VarUnpaidDays:     decimal.Zero,
		VarVacationDays:   decimal.Zero,
		VarHolidaysWorked: decimal.Zero,
	}

	return NewContext().WithAll(vars), nil
}
