package payroll

import (
	"github.com/shopspring/decimal"
)

// d parses a literal table value. Panics only on programmer error in the
// static tables below.
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// isrRow builds one tariff bracket; upper == "" marks the open top bracket.
func isrRow(lower, upper, fixed, ratePct string) ISRBracket {
	b := ISRBracket{
		LowerLimit: d(lower),
		FixedQuota: d(fixed),
		Rate:       d(ratePct).Div(d("100")),
	}
	if upper != "" {
		b.UpperLimit = d(upper)
	}
	return b
}

// ISR tariffs published in Anexo 8 of the Resolución Miscelánea Fiscal.
// The monthly tariff has been unchanged since 2022 and applies to fiscal
// years 2024 and 2025 alike.
var (
	isrMonthly = []ISRBracket{
		isrRow("0.01", "746.04", "0.00", "1.92"),
		isrRow("746.05", "6332.05", "14.32", "6.40"),
		isrRow("6332.06", "11128.01", "371.83", "10.88"),
		isrRow("11128.02", "12935.82", "893.63", "16.00"),
		isrRow("12935.83", "15487.71", "1182.88", "17.92"),
		isrRow("15487.72", "31236.49", "1640.18", "21.36"),
		isrRow("31236.50", "49233.00", "5004.12", "23.52"),
		isrRow("49233.01", "93993.90", "9236.89", "30.00"),
		isrRow("93993.91", "125325.20", "22665.17", "32.00"),
		isrRow("125325.21", "375975.61", "32691.18", "34.00"),
		isrRow("375975.62", "", "117912.32", "35.00"),
	}

	isrBiweekly = []ISRBracket{
		isrRow("0.01", "368.10", "0.00", "1.92"),
		isrRow("368.11", "3124.35", "7.05", "6.40"),
		isrRow("3124.36", "5490.75", "183.45", "10.88"),
		isrRow("5490.76", "6382.80", "441.00", "16.00"),
		isrRow("6382.81", "7641.90", "583.65", "17.92"),
		isrRow("7641.91", "15412.80", "809.25", "21.36"),
		isrRow("15412.81", "24292.65", "2469.15", "23.52"),
		isrRow("24292.66", "46378.50", "4557.75", "30.00"),
		isrRow("46378.51", "61838.10", "11183.40", "32.00"),
		isrRow("61838.11", "185514.30", "16130.55", "34.00"),
		isrRow("185514.31", "", "58180.35", "35.00"),
	}

	isrWeekly = []ISRBracket{
		isrRow("0.01", "171.78", "0.00", "1.92"),
		isrRow("171.79", "1458.03", "3.29", "6.40"),
		isrRow("1458.04", "2562.35", "85.61", "10.88"),
		isrRow("2562.36", "2978.64", "205.80", "16.00"),
		isrRow("2978.65", "3566.22", "272.37", "17.92"),
		isrRow("3566.23", "7192.64", "377.65", "21.36"),
		isrRow("7192.65", "11336.57", "1152.27", "23.52"),
		isrRow("11336.58", "21643.30", "2126.95", "30.00"),
		isrRow("21643.31", "28857.78", "5218.92", "32.00"),
		isrRow("28857.79", "86573.34", "7527.59", "34.00"),
		isrRow("86573.35", "", "27150.83", "35.00"),
	}

	isrTariff = map[PayFrequency][]ISRBracket{
		FrequencyWeekly:   isrWeekly,
		FrequencyBiweekly: isrBiweekly,
		FrequencyMonthly:  isrMonthly,
	}
)

// subsidyTable builds the single-bracket subsidy table mandated by the
// employment-subsidy decrees in force since May 2024: a fixed UMA-indexed
// credit for monthly incomes up to the decree ceiling, prorated to the pay
// frequency over the 30.4-day fiscal month.
func subsidyTable(monthlyCeiling, monthlyCredit string) map[PayFrequency][]SubsidyBracket {
	ceiling := d(monthlyCeiling)
	credit := d(monthlyCredit)
	month := d("30.4")
	prorate := func(v decimal.Decimal, days string) decimal.Decimal {
		return v.Mul(d(days)).Div(month).Round(2)
	}
	return map[PayFrequency][]SubsidyBracket{
		FrequencyWeekly: {
			{UpperLimit: prorate(ceiling, "7"), Credit: prorate(credit, "7")},
		},
		FrequencyBiweekly: {
			{UpperLimit: prorate(ceiling, "15"), Credit: prorate(credit, "15")},
		},
		FrequencyMonthly: {
			{UpperLimit: ceiling, Credit: credit},
		},
	}
}

// imssWorkerRates are the LSS worker-side quota rates. Stable across the
// supported years.
var imssWorkerRates = IMSSWorkerRates{
	ExcedenteTresUMA: d("0.0040"),
	InvalidezVida:    d("0.00625"),
	CesantiaVejez:    d("0.01125"),
}

func fiscalYear2024() *FiscalYear {
	return &FiscalYear{
		Year:        2024,
		UMADaily:    d("108.57"),
		UMAMonthly:  d("3300.53"),
		UMAAnnual:   d("39606.36"),
		MinimumWage: d("248.93"),
		ISRTariff:   isrTariff,
		// Decree of 1 May 2024: 11.82% of monthly UMA, ceiling $9,081.00.
		SubsidyTable: subsidyTable("9081.00", "390.12"),
		IMSSRates:    imssWorkerRates,
		SBCCapUMA:    d("25"),
	}
}

func fiscalYear2025() *FiscalYear {
	return &FiscalYear{
		Year:        2025,
		UMADaily:    d("113.14"),
		UMAMonthly:  d("3439.46"),
		UMAAnnual:   d("41273.52"),
		MinimumWage: d("278.80"),
		ISRTariff:   isrTariff,
		// Decree of 31 December 2024: 13.8% of monthly UMA, ceiling $10,171.00.
		SubsidyTable: subsidyTable("10171.00", "474.64"),
		IMSSRates:    imssWorkerRates,
		SBCCapUMA:    d("25"),
	}
}

// DefaultFiscalYears returns the fiscal-year data shipped with the engine,
// keyed by year. The returned map is freshly built on each call; treat it
// as an immutable snapshot for the lifetime of a batch.
func DefaultFiscalYears() map[int]*FiscalYear {
	return map[int]*FiscalYear{
		2024: fiscalYear2024(),
		2025: fiscalYear2025(),
	}
}
