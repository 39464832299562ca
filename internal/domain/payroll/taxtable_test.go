package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISRTax(t *testing.T) {
	fy := fiscalYear2025()

	t.Run("biweekly base in the fifth bracket", func(t *testing.T) {
		// 9,000.00 falls in 7,641.91..15,412.80: 809.25 + (9,000−7,641.91)×21.36%.
		got, err := fy.ISRTax(d("9000"), FrequencyBiweekly)
		require.NoError(t, err)
		assert.Equal(t, "1099.34", got.Round(2).StringFixed(2))
	})

	t.Run("monthly base in the second bracket", func(t *testing.T) {
		got, err := fy.ISRTax(d("5000"), FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, "286.57", got.Round(2).StringFixed(2))
	})

	t.Run("bracket boundary belongs to the lower bracket", func(t *testing.T) {
		atUpper, err := fy.ISRTax(d("746.04"), FrequencyMonthly)
		require.NoError(t, err)
		justAbove, err := fy.ISRTax(d("746.05"), FrequencyMonthly)
		require.NoError(t, err)
		// 746.04×1.92% vs fixed quota 14.32 at the next bracket floor.
		assert.Equal(t, "14.32", atUpper.Round(2).StringFixed(2))
		assert.Equal(t, "14.32", justAbove.Round(2).StringFixed(2))
	})

	t.Run("zero base pays zero tax", func(t *testing.T) {
		got, err := fy.ISRTax(decimal.Zero, FrequencyMonthly)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("top bracket is open ended", func(t *testing.T) {
		got, err := fy.ISRTax(d("500000"), FrequencyMonthly)
		require.NoError(t, err)
		assert.True(t, got.GreaterThan(d("117912.32")))
	})

	t.Run("negative base is rejected", func(t *testing.T) {
		_, err := fy.ISRTax(d("-1"), FrequencyMonthly)
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
	})

	t.Run("unknown frequency is rejected", func(t *testing.T) {
		_, err := fy.ISRTax(d("100"), PayFrequency("decenal"))
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
	})

	t.Run("monotonic over increasing bases", func(t *testing.T) {
		prev := decimal.Zero
		for _, base := range []string{"100", "746.04", "3000", "6332.06", "9000", "15000", "40000", "100000"} {
			got, err := fy.ISRTax(d(base), FrequencyMonthly)
			require.NoError(t, err)
			assert.True(t, got.GreaterThanOrEqual(prev), "tax decreased at base %s", base)
			prev = got
		}
	})
}

func TestEmploymentSubsidy(t *testing.T) {
	t.Run("2025 monthly base under the ceiling earns the full credit", func(t *testing.T) {
		fy := fiscalYear2025()
		got, err := fy.EmploymentSubsidy(d("6600"), FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, "474.64", got.StringFixed(2))
	})

	t.Run("2024 decree values", func(t *testing.T) {
		fy := fiscalYear2024()
		got, err := fy.EmploymentSubsidy(d("9081.00"), FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, "390.12", got.StringFixed(2))
	})

	t.Run("base above the ceiling earns nothing", func(t *testing.T) {
		fy := fiscalYear2025()
		got, err := fy.EmploymentSubsidy(d("10171.01"), FrequencyMonthly)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("biweekly credit prorated over the fiscal month", func(t *testing.T) {
		fy := fiscalYear2025()
		// 474.64 × 15 / 30.4 rounded to cents.
		got, err := fy.EmploymentSubsidy(d("4000"), FrequencyBiweekly)
		require.NoError(t, err)
		assert.Equal(t, "234.20", got.StringFixed(2))
	})

	t.Run("negative base is rejected", func(t *testing.T) {
		fy := fiscalYear2025()
		_, err := fy.EmploymentSubsidy(d("-1"), FrequencyMonthly)
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
	})
}

func TestIMSSWorkerQuota(t *testing.T) {
	fy := fiscalYear2025()
	days := decimal.NewFromInt(15)

	t.Run("enfermedad y maternidad applies only over three UMA", func(t *testing.T) {
		// SBC 690 exceeds 3×113.14=339.42 by 350.58.
		got, err := fy.IMSSWorkerQuota(d("690"), days, RamoEnfermedadMaternidad)
		require.NoError(t, err)
		assert.Equal(t, "21.03", got.Round(2).StringFixed(2))
	})

	t.Run("SBC at or under three UMA pays no excedente", func(t *testing.T) {
		for _, sbc := range []string{"300", "339.42"} {
			got, err := fy.IMSSWorkerQuota(d(sbc), days, RamoEnfermedadMaternidad)
			require.NoError(t, err)
			assert.True(t, got.IsZero(), "SBC %s should pay zero excedente", sbc)
		}
	})

	t.Run("invalidez y vida on the full SBC", func(t *testing.T) {
		got, err := fy.IMSSWorkerQuota(d("690"), days, RamoInvalidezVida)
		require.NoError(t, err)
		assert.Equal(t, "64.69", got.Round(2).StringFixed(2))
	})

	t.Run("cesantía y vejez on the full SBC", func(t *testing.T) {
		got, err := fy.IMSSWorkerQuota(d("690"), days, RamoCesantiaVejez)
		require.NoError(t, err)
		assert.Equal(t, "116.44", got.Round(2).StringFixed(2))
	})

	t.Run("SBC is capped at 25 UMA", func(t *testing.T) {
		capped, err := fy.IMSSWorkerQuota(fy.UMADaily.Mul(d("25")), days, RamoCesantiaVejez)
		require.NoError(t, err)
		above, err := fy.IMSSWorkerQuota(d("5000"), days, RamoCesantiaVejez)
		require.NoError(t, err)
		assert.True(t, capped.Equal(above), "quota above the cap must match the capped SBC")
	})

	t.Run("total sums the three ramos", func(t *testing.T) {
		total, err := fy.IMSSWorkerTotal(d("690"), days)
		require.NoError(t, err)
		assert.Equal(t, "202.16", total.Round(2).StringFixed(2))
	})

	t.Run("negative inputs are rejected", func(t *testing.T) {
		_, err := fy.IMSSWorkerQuota(d("-1"), days, RamoInvalidezVida)
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
		_, err = fy.IMSSWorkerQuota(d("100"), d("-1"), RamoInvalidezVida)
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
	})

	t.Run("unknown ramo is rejected", func(t *testing.T) {
		_, err := fy.IMSSWorkerQuota(d("100"), days, IMSSRamo("retiro"))
		assertCalcKind(t, err, ErrKindInvalidTaxBase)
	})
}

func TestDefaultFiscalYears(t *testing.T) {
	years := DefaultFiscalYears()
	require.Contains(t, years, 2024)
	require.Contains(t, years, 2025)
	assert.Equal(t, "108.57", years[2024].UMADaily.StringFixed(2))
	assert.Equal(t, "113.14", years[2025].UMADaily.StringFixed(2))
	for year, fy := range years {
		assert.Equal(t, year, fy.Year)
		for _, freq := range []PayFrequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly} {
			assert.NotEmpty(t, fy.ISRTariff[freq], "year %d missing %s tariff", year, freq)
			assert.NotEmpty(t, fy.SubsidyTable[freq], "year %d missing %s subsidy table", year, freq)
		}
	}
}
