package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayFrequency identifies how often a payroll period recurs.
type PayFrequency string

const (
	FrequencyWeekly   PayFrequency = "semanal"
	FrequencyBiweekly PayFrequency = "quincenal"
	FrequencyMonthly  PayFrequency = "mensual"
)

// IsValid returns true if the frequency is one of the supported values
func (f PayFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the string representation
func (f PayFrequency) String() string {
	return string(f)
}

// DefaultPeriodDays returns the statutory paid days for the frequency
func (f PayFrequency) DefaultPeriodDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 15
	case FrequencyMonthly:
		return 30
	}
	return 0
}

// EmployeeStatus represents the employment status of an employee
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "activo"
	EmployeeInactive EmployeeStatus = "inactivo"
)

// Employee is the immutable employee input to a single calculation.
// Ownership of the record (CRUD, history) belongs to the HR module; the
// engine only reads the fields that drive pay.
type Employee struct {
	ID             uuid.UUID
	EmployeeNumber string
	Name           string
	DailySalary    decimal.Decimal // salario diario
	SBCDaily       decimal.Decimal // salario diario integrado (base de cotización)
	HireDate       time.Time
	Status         EmployeeStatus
}

// SeniorityYears returns completed years of service at the given date,
// or zero when no hire date was supplied.
func (e Employee) SeniorityYears(at time.Time) int {
	if e.HireDate.IsZero() || at.Before(e.HireDate) {
		return 0
	}
	years := at.Year() - e.HireDate.Year()
	anniversary := e.HireDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

// Period is the immutable payroll period input.
type Period struct {
	ID         uuid.UUID
	Frequency  PayFrequency
	Year       int // fiscal year, selects UMA and tax tables
	Month      int
	Number     int // period number within the year
	StartDate  time.Time
	EndDate    time.Time
	PeriodDays int // calendar/paid days in the period
	WorkedDays int // scheduled paid days; absences discount via incidents
}

// IncidentType enumerates the attendance/pay events the engine understands.
type IncidentType string

const (
	IncidentOvertime        IncidentType = "horas_extra"
	IncidentAbsence         IncidentType = "falta"
	IncidentSundayPremium   IncidentType = "prima_dominical"
	IncidentGroceryVoucher  IncidentType = "vales_despensa"
	IncidentDisability      IncidentType = "incapacidad"
	IncidentUnpaidPermit    IncidentType = "permiso_sin_goce"
	IncidentVacation        IncidentType = "vacaciones"
	IncidentHolidayWorked   IncidentType = "dia_festivo_laborado"
)

// IncidentData carries structured sub-fields for incident types that need
// more than a single quantity.
type IncidentData struct {
	DoubleHours decimal.Decimal `json:"horasDobles"`
	TripleHours decimal.Decimal `json:"horasTriples"`
}

// Incident is a single attendance/pay event for one employee in one period.
// The engine tolerates an empty incident list and never fails an entire
// calculation because of one malformed incident.
type Incident struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	PeriodID   uuid.UUID
	Type       IncidentType
	Quantity   decimal.Decimal
	Data       *IncidentData
}
