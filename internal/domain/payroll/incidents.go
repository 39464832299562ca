package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// incidentVariable describes how one incident type maps into the
// variable context. Dispatch is a flat table, not a type hierarchy.
type incidentMapping struct {
	apply func(acc map[string]decimal.Decimal, inc Incident)
}

var incidentMappings = map[IncidentType]incidentMapping{
	IncidentOvertime: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		if inc.Data != nil {
			acc[VarDoubleHours] = acc[VarDoubleHours].Add(inc.Data.DoubleHours)
			acc[VarTripleHours] = acc[VarTripleHours].Add(inc.Data.TripleHours)
			return
		}
		// No structured sub-data: the quantity counts as double hours,
		// the conservative reading under LFT art. 66.
		acc[VarDoubleHours] = acc[VarDoubleHours].Add(inc.Quantity)
	}},
	IncidentAbsence: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarAbsentDays] = acc[VarAbsentDays].Add(inc.Quantity)
	}},
	IncidentSundayPremium: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarSundaysWorked] = acc[VarSundaysWorked].Add(inc.Quantity)
	}},
	IncidentGroceryVoucher: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarVoucherAmount] = acc[VarVoucherAmount].Add(inc.Quantity)
	}},
	IncidentDisability: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarDisabilityDays] = acc[VarDisabilityDays].Add(inc.Quantity)
	}},
	IncidentUnpaidPermit: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarUnpaidDays] = acc[VarUnpaidDays].Add(inc.Quantity)
	}},
	IncidentVacation: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarVacationDays] = acc[VarVacationDays].Add(inc.Quantity)
	}},
	IncidentHolidayWorked: {apply: func(acc map[string]decimal.Decimal, inc Incident) {
		acc[VarHolidaysWorked] = acc[VarHolidaysWorked].Add(inc.Quantity)
	}},
}

// ApplyIncidents folds the incident list into the variable context and
// returns the extended context. Incidents of the same type are summed.
//
// An unrecognized incident type is never fatal: it is logged as a warning
// in the audit trail and contributes a zero-valued variable, so one
// malformed incident cannot block payroll for the employee.
func ApplyIncidents(ctx *Context, incidents []Incident, trail *TrailRecorder) *Context {
	if len(incidents) == 0 {
		return ctx
	}

	acc := map[string]decimal.Decimal{
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

	for _, inc := range incidents {
		mapping, ok := incidentMappings[inc.Type]
		if !ok {
			name := unknownIncidentVariable(inc.Type)
			if _, defined := acc[name]; !defined {
				acc[name] = decimal.Zero
			}
			trail.Warn(PhaseIncidents, fmt.Sprintf(
				"incidencia de tipo desconocido %q ignorada (variable %s = 0)", inc.Type, name))
			continue
		}
		mapping.apply(acc, inc)
	}

	return ctx.WithAll(acc)
}

// unknownIncidentVariable derives a zero-valued variable name from an
// unrecognized incident type so downstream formulas referencing it still
// resolve.
func unknownIncidentVariable(t IncidentType) string {
	name := strings.ToUpper(string(t))
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isIdentPart(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 || !isIdentStart(b.String()[0]) {
		return "INCIDENCIA_DESCONOCIDA"
	}
	return b.String()
}
