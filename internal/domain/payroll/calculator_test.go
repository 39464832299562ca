package payroll

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(buildSnapshot(t, DefaultConcepts(uuid.New())))
}

func findEarning(t *testing.T, result *Result, code string) EarningLine {
	t.Helper()
	for _, line := range result.Earnings {
		if line.Code == code {
			return line
		}
	}
	t.Fatalf("earning %s not found in result", code)
	return EarningLine{}
}

func findDeduction(result *Result, code string) (DeductionLine, bool) {
	for _, line := range result.Deductions {
		if line.Code == code {
			return line, true
		}
	}
	return DeductionLine{}, false
}

func TestCalculateBiweeklySalaryOnly(t *testing.T) {
	calc := defaultCalculator(t)
	result, err := calc.Calculate(testEmployee(), testPeriod(), nil)
	require.NoError(t, err)

	// Salario 600 × 15 días, quincena de 2025.
	sueldo := findEarning(t, result, "P001")
	assert.Equal(t, "9000.00", sueldo.Amount.StringFixed(2))
	assert.Equal(t, "9000.00", sueldo.Taxable.StringFixed(2))
	assert.True(t, sueldo.Exempt.IsZero())

	// Sin incidencias, las demás percepciones valen cero y no aparecen.
	require.Len(t, result.Earnings, 1)

	isr, ok := findDeduction(result, "D001")
	require.True(t, ok)
	assert.Equal(t, "1099.34", isr.Amount.StringFixed(2))

	imss, ok := findDeduction(result, "D002")
	require.True(t, ok)
	assert.Equal(t, "202.16", imss.Amount.StringFixed(2))

	require.Len(t, result.Deductions, 2)
	assert.Empty(t, result.OtherPayments, "base above the subsidy ceiling earns none")

	assert.Equal(t, "9000.00", result.TotalEarnings.StringFixed(2))
	assert.Equal(t, "9000.00", result.TaxableBase.StringFixed(2))
	assert.Equal(t, "1301.50", result.TotalDeductions.StringFixed(2))
	assert.Equal(t, "7698.50", result.NetPay.StringFixed(2))
}

func TestCalculateWithIncidents(t *testing.T) {
	calc := defaultCalculator(t)
	incidents := []Incident{
		{Type: IncidentOvertime, Data: &IncidentData{DoubleHours: d("4"), TripleHours: d("2")}},
		{Type: IncidentSundayPremium, Quantity: d("2")},
		{Type: IncidentGroceryVoucher, Quantity: d("500")},
		{Type: IncidentAbsence, Quantity: d("1")},
	}
	result, err := calc.Calculate(testEmployee(), testPeriod(), incidents)
	require.NoError(t, err)

	// Horas extra dobles: 75 × 2 × 4 = 600, exentas al 50% (tope 5 UMA).
	dobles := findEarning(t, result, "P002")
	assert.Equal(t, "600.00", dobles.Amount.StringFixed(2))
	assert.Equal(t, "300.00", dobles.Exempt.StringFixed(2))
	assert.Equal(t, "300.00", dobles.Taxable.StringFixed(2))

	// Horas extra triples: 75 × 3 × 2 = 450, totalmente gravadas.
	triples := findEarning(t, result, "P003")
	assert.Equal(t, "450.00", triples.Amount.StringFixed(2))
	assert.True(t, triples.Exempt.IsZero())

	// Prima dominical: 600 × 0.25 × 2 = 300, exenta hasta 1 UMA por domingo.
	prima := findEarning(t, result, "P004")
	assert.Equal(t, "300.00", prima.Amount.StringFixed(2))
	assert.Equal(t, "226.28", prima.Exempt.StringFixed(2))
	assert.Equal(t, "73.72", prima.Taxable.StringFixed(2))

	// Vales por debajo del tope quedan totalmente exentos.
	vales := findEarning(t, result, "P005")
	assert.Equal(t, "500.00", vales.Amount.StringFixed(2))
	assert.Equal(t, "500.00", vales.Exempt.StringFixed(2))
	assert.True(t, vales.Taxable.IsZero())

	// Un día de falta se descuenta a salario diario.
	falta, ok := findDeduction(result, "D003")
	require.True(t, ok)
	assert.Equal(t, "600.00", falta.Amount.StringFixed(2))

	assert.Equal(t, "10850.00", result.TotalEarnings.StringFixed(2))
	assert.Equal(t, "9823.72", result.TaxableBase.StringFixed(2))

	// El ISR del resultado coincide con la tarifa aplicada a la base gravable.
	fy := fiscalYear2025()
	expectedISR, err := fy.ISRTax(result.TaxableBase, FrequencyBiweekly)
	require.NoError(t, err)
	isr, ok := findDeduction(result, "D001")
	require.True(t, ok)
	assert.True(t, isr.Amount.Equal(expectedISR.Round(2)),
		"ISR %s != tarifa %s", isr.Amount, expectedISR.Round(2))

	expectedNet := result.TotalEarnings.Sub(result.TotalDeductions)
	assert.True(t, result.NetPay.Equal(expectedNet))
}

func TestCalculateMonthlyLowEarnerReceivesSubsidy(t *testing.T) {
	calc := defaultCalculator(t)
	employee := testEmployee()
	employee.DailySalary = d("220")
	employee.SBCDaily = d("230")

	period := testPeriod()
	period.Frequency = FrequencyMonthly
	period.PeriodDays = 30
	period.WorkedDays = 30

	result, err := calc.Calculate(employee, period, nil)
	require.NoError(t, err)

	// Base 6,600: el subsidio mensual 2025 (474.64) supera el ISR de la
	// tarifa, así que no se retiene ISR y el excedente se entrega.
	_, hasISR := findDeduction(result, "D001")
	assert.False(t, hasISR, "subsidy above the tariff must cancel the ISR line")

	require.Len(t, result.OtherPayments, 1)
	assert.Equal(t, "O001", result.OtherPayments[0].Code)
	assert.Equal(t, "73.66", result.OtherPayments[0].Amount.StringFixed(2))
	assert.Equal(t, "73.66", result.TotalOtherPayments.StringFixed(2))

	// SBC 230 < 3 UMA: sin cuota excedente, sólo IV y CEAV.
	imss, ok := findDeduction(result, "D002")
	require.True(t, ok)
	assert.Equal(t, "120.75", imss.Amount.StringFixed(2))

	assert.Equal(t, "6600.00", result.TotalEarnings.StringFixed(2))
	assert.Equal(t, "6479.25", result.NetPay.StringFixed(2))
}

func TestCalculateFiscalYear2024(t *testing.T) {
	calc := defaultCalculator(t)
	period := testPeriod()
	period.Year = 2024

	result, err := calc.Calculate(testEmployee(), period, nil)
	require.NoError(t, err)

	// Misma tarifa ISR, pero UMA 2024: el excedente EyM crece porque el
	// umbral de 3 UMA es más bajo.
	imss, ok := findDeduction(result, "D002")
	require.True(t, ok)
	fy := fiscalYear2024()
	expected, err := fy.IMSSWorkerTotal(d("690"), d("15"))
	require.NoError(t, err)
	assert.True(t, imss.Amount.Equal(expected.Round(2)))
}

func TestCalculateErrors(t *testing.T) {
	t.Run("unknown fiscal year", func(t *testing.T) {
		calc := defaultCalculator(t)
		period := testPeriod()
		period.Year = 2019
		_, err := calc.Calculate(testEmployee(), period, nil)
		assertCalcKind(t, err, ErrKindMissingInput)
	})

	t.Run("missing salary carries the partial trail", func(t *testing.T) {
		calc := defaultCalculator(t)
		employee := testEmployee()
		employee.DailySalary = decimal.Zero
		_, err := calc.Calculate(employee, testPeriod(), nil)
		assertCalcKind(t, err, ErrKindMissingInput)
	})

	t.Run("formula referencing an undefined variable names the concept", func(t *testing.T) {
		concepts := DefaultConcepts(uuid.New())
		concepts = append(concepts, Concept{
			Code: "P990", Name: "Bono mal configurado", Kind: KindEarning,
			Category: CategoryBonus, FormulaSrc: "BONO_TRIMESTRAL * 2",
			TaxableForISR: true, Active: true,
		})
		calc := NewCalculator(buildSnapshot(t, concepts))

		_, err := calc.Calculate(testEmployee(), testPeriod(), nil)
		assertCalcKind(t, err, ErrKindUnknownVariable)

		var calcErr *CalculationError
		require.ErrorAs(t, err, &calcErr)
		assert.Equal(t, "P990", calcErr.Concept)
		assert.NotEmpty(t, calcErr.Trail, "partial trail must travel with the error")
	})

	t.Run("division by zero in a catalog formula", func(t *testing.T) {
		concepts := DefaultConcepts(uuid.New())
		concepts = append(concepts, Concept{
			Code: "D990", Name: "Prorrateo inválido", Kind: KindDeduction,
			Category: CategoryOther, FormulaSrc: "100 / HORAS_EXTRA_DOBLES", Active: true,
		})
		calc := NewCalculator(buildSnapshot(t, concepts))

		_, err := calc.Calculate(testEmployee(), testPeriod(), nil)
		assertCalcKind(t, err, ErrKindDivisionByZero)

		var calcErr *CalculationError
		require.ErrorAs(t, err, &calcErr)
		assert.Equal(t, "D990", calcErr.Concept)
	})
}

func TestCalculateNetNeverNegative(t *testing.T) {
	concepts := DefaultConcepts(uuid.New())
	concepts = append(concepts, Concept{
		Code: "D995", Name: "Embargo", Kind: KindDeduction,
		Category: CategoryDiscount, FormulaSrc: "SALARIO_PERIODO * 2", Active: true,
	})
	calc := NewCalculator(buildSnapshot(t, concepts))

	result, err := calc.Calculate(testEmployee(), testPeriod(), nil)
	require.NoError(t, err)
	assert.True(t, result.NetPay.IsZero())

	var warned bool
	for _, entry := range result.Trail {
		if entry.Warning && entry.Phase == PhaseTotals {
			warned = true
		}
	}
	assert.True(t, warned, "clamping the net must leave a warning in the trail")
}

func TestCalculateAuditTrail(t *testing.T) {
	calc := defaultCalculator(t)
	result, err := calc.Calculate(testEmployee(), testPeriod(), []Incident{
		{Type: IncidentSundayPremium, Quantity: d("1")},
	})
	require.NoError(t, err)

	phases := make([]string, 0, len(result.Trail))
	for _, entry := range result.Trail {
		if !entry.Warning {
			phases = append(phases, entry.Phase)
		}
	}
	assert.Equal(t, []string{
		PhaseContextBuild,
		PhaseIncidents,
		PhaseEarnings,
		PhaseTaxableBase,
		PhaseStatutory,
		PhaseOtherDeduction,
		PhaseTotals,
	}, phases, "one entry per phase, in pipeline order")

	for _, entry := range result.Trail {
		assert.False(t, entry.Timestamp.IsZero())
	}
}

func TestCalculateProperties(t *testing.T) {
	calc := defaultCalculator(t)
	incidents := []Incident{
		{Type: IncidentOvertime, Data: &IncidentData{DoubleHours: d("6"), TripleHours: d("1")}},
		{Type: IncidentGroceryVoucher, Quantity: d("800")},
		{Type: IncidentSundayPremium, Quantity: d("1")},
	}

	t.Run("gravado plus exento equals monto on every line", func(t *testing.T) {
		result, err := calc.Calculate(testEmployee(), testPeriod(), incidents)
		require.NoError(t, err)
		for _, line := range result.Earnings {
			assert.True(t, line.Taxable.Add(line.Exempt).Equal(line.Amount),
				"line %s: %s + %s != %s", line.Code, line.Taxable, line.Exempt, line.Amount)
			assert.False(t, line.Exempt.IsNegative())
			assert.False(t, line.Taxable.IsNegative())
		}
	})

	t.Run("same inputs give the same result", func(t *testing.T) {
		first, err := calc.Calculate(testEmployee(), testPeriod(), incidents)
		require.NoError(t, err)
		second, err := calc.Calculate(testEmployee(), testPeriod(), incidents)
		require.NoError(t, err)

		assert.True(t, first.NetPay.Equal(second.NetPay))
		assert.True(t, first.TaxableBase.Equal(second.TaxableBase))
		require.Equal(t, len(first.Earnings), len(second.Earnings))
		for i := range first.Earnings {
			assert.True(t, first.Earnings[i].Amount.Equal(second.Earnings[i].Amount))
		}
	})

	t.Run("net pay moves with the salary", func(t *testing.T) {
		low := testEmployee()
		high := testEmployee()
		high.DailySalary = d("900")
		high.SBCDaily = d("1000")

		lowResult, err := calc.Calculate(low, testPeriod(), nil)
		require.NoError(t, err)
		highResult, err := calc.Calculate(high, testPeriod(), nil)
		require.NoError(t, err)
		assert.True(t, highResult.NetPay.GreaterThan(lowResult.NetPay))
	})

	t.Run("totals reconcile with the lines", func(t *testing.T) {
		result, err := calc.Calculate(testEmployee(), testPeriod(), incidents)
		require.NoError(t, err)

		earnings := decimal.Zero
		for _, line := range result.Earnings {
			earnings = earnings.Add(line.Amount)
		}
		deductions := decimal.Zero
		for _, line := range result.Deductions {
			deductions = deductions.Add(line.Amount)
		}
		assert.True(t, result.TotalEarnings.Equal(earnings))
		assert.True(t, result.TotalDeductions.Equal(deductions))
		assert.True(t, result.NetPay.Equal(earnings.Sub(deductions)))
	})
}
